package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when an appointment does not exist.
var ErrNotFound = errors.New("appointment not found")

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists appointment rows. There is deliberately no uniqueness
// constraint on (doctor_id, date, time); see the schema notes.
type Repository struct {
	db DB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("appointments: db required")
	}
	return &Repository{db: db}
}

const appointmentColumns = `id, patient_id, doctor_id, date, time, type, status,
	COALESCE(meet_link, ''), payment_status, COALESCE(payment_id, ''),
	COALESCE(order_id, ''), COALESCE(amount, 0), COALESCE(notes, ''),
	created_at, updated_at`

// Insert writes one appointment row. Payment fields are written together
// with the status so a paid booking is never visible half-written.
func (r *Repository) Insert(ctx context.Context, a *Appointment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO appointments
		    (id, patient_id, doctor_id, date, time, type, status, meet_link,
		     payment_status, payment_id, order_id, amount, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''),
		        $9, NULLIF($10, ''), NULLIF($11, ''), $12, $13, $14, $15)`,
		a.ID, a.PatientID, a.DoctorID, a.Date, a.Time, a.Type, a.Status, a.MeetLink,
		a.PaymentStatus, a.PaymentID, a.OrderID, a.Amount, a.Notes, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("appointments: insert: %w", err)
	}
	return nil
}

// Get loads one appointment.
func (r *Repository) Get(ctx context.Context, id string) (*Appointment, error) {
	var a Appointment
	err := r.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1`, id).Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time,
		&a.Type, &a.Status, &a.MeetLink, &a.PaymentStatus, &a.PaymentID,
		&a.OrderID, &a.Amount, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: get: %w", err)
	}
	return &a, nil
}

// ListByOwner returns appointments where ownerColumn ("patient_id" or
// "doctor_id") matches, newest date first.
func (r *Repository) ListByOwner(ctx context.Context, ownerColumn, ownerID string) ([]Appointment, error) {
	if ownerColumn != "patient_id" && ownerColumn != "doctor_id" {
		return nil, fmt.Errorf("appointments: invalid owner column %q", ownerColumn)
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE `+ownerColumn+` = $1
		ORDER BY date DESC, time DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by %s: %w", ownerColumn, err)
	}
	defer rows.Close()

	out := []Appointment{}
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time,
			&a.Type, &a.Status, &a.MeetLink, &a.PaymentStatus, &a.PaymentID,
			&a.OrderID, &a.Amount, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateDate moves an appointment to a new date and forces the status back
// to upcoming. Only non-terminal rows owned by ownerID are touched; returns
// the updated row, or ErrNotFound when nothing matched.
func (r *Repository) UpdateDate(ctx context.Context, id, ownerColumn, ownerID, newDate string) (*Appointment, error) {
	if ownerColumn != "patient_id" && ownerColumn != "doctor_id" {
		return nil, fmt.Errorf("appointments: invalid owner column %q", ownerColumn)
	}
	var a Appointment
	err := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET date = $3, status = 'upcoming', updated_at = $4
		WHERE id = $1 AND `+ownerColumn+` = $2 AND status IN ('upcoming', 'rescheduled')
		RETURNING `+appointmentColumns, id, ownerID, newDate, time.Now().UTC()).
		Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time,
			&a.Type, &a.Status, &a.MeetLink, &a.PaymentStatus, &a.PaymentID,
			&a.OrderID, &a.Amount, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: update date: %w", err)
	}
	return &a, nil
}

// Transition moves status from one value to another, scoped to the owner.
// Returns the updated row, or ErrNotFound when the row is absent or already
// out of the source status (which makes terminal transitions idempotent for
// callers that treat ErrNotFound as "nothing to do").
func (r *Repository) Transition(ctx context.Context, id, ownerColumn, ownerID string, from, to Status) (*Appointment, error) {
	if ownerColumn != "patient_id" && ownerColumn != "doctor_id" {
		return nil, fmt.Errorf("appointments: invalid owner column %q", ownerColumn)
	}
	var a Appointment
	err := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET status = $4, updated_at = $5
		WHERE id = $1 AND `+ownerColumn+` = $2 AND status = $3
		RETURNING `+appointmentColumns, id, ownerID, from, to, time.Now().UTC()).
		Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time,
			&a.Type, &a.Status, &a.MeetLink, &a.PaymentStatus, &a.PaymentID,
			&a.OrderID, &a.Amount, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: transition to %s: %w", to, err)
	}
	return &a, nil
}
