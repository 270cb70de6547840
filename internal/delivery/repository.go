package delivery

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a delivery does not exist.
var ErrNotFound = errors.New("delivery not found")

// ErrTerminal is returned when advancing a delivered order.
var ErrTerminal = errors.New("delivery already delivered")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create opens a delivery in placed status and writes the first timeline
// event in the same transaction.
func (r *Repository) Create(ctx context.Context, d *Delivery) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	d.Status = StatusPlaced
	d.CreatedAt = now
	d.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO deliveries (id, patient_id, prescription_id, status, eta, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		d.ID, d.PatientID, d.PrescriptionID, d.Status, d.ETA, d.Address, now); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO delivery_events (delivery_id, status, note, occurred_at)
		VALUES ($1, $2, $3, $4)`,
		d.ID, StatusPlaced, "order placed", now); err != nil {
		return err
	}
	return tx.Commit()
}

// Advance moves the delivery to the next pipeline step, appending a timeline
// event, and returns the new status.
func (r *Repository) Advance(ctx context.Context, patientID, id, note string) (Status, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var current Status
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM deliveries
		WHERE id = $1 AND patient_id = $2 FOR UPDATE`, id, patientID).Scan(&current)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	next := current.Next()
	if next == "" {
		return "", ErrTerminal
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE deliveries SET status = $2, updated_at = $3 WHERE id = $1`,
		id, next, now); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO delivery_events (delivery_id, status, note, occurred_at)
		VALUES ($1, $2, $3, $4)`, id, next, note, now); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return next, nil
}

// ListByPatient returns the patient's deliveries with their timelines,
// newest first.
func (r *Repository) ListByPatient(ctx context.Context, patientID string) ([]Delivery, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, patient_id, prescription_id, status, COALESCE(eta, ''),
		       COALESCE(address, ''), created_at, updated_at
		FROM deliveries
		WHERE patient_id = $1
		ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Delivery
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(&d.ID, &d.PatientID, &d.PrescriptionID, &d.Status,
			&d.ETA, &d.Address, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		timeline, err := r.listEvents(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Timeline = timeline
	}
	if out == nil {
		out = []Delivery{}
	}
	return out, nil
}

func (r *Repository) listEvents(ctx context.Context, deliveryID string) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, delivery_id, status, COALESCE(note, ''), occurred_at
		FROM delivery_events
		WHERE delivery_id = $1
		ORDER BY occurred_at ASC`, deliveryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.DeliveryID, &e.Status, &e.Note, &e.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
