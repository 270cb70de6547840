package doctors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a doctor does not exist.
var ErrNotFound = errors.New("doctor not found")

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence for the doctor directory.
type Repository struct {
	db DB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("doctors: db required")
	}
	return &Repository{db: db}
}

const doctorColumns = `id, COALESCE(user_id, ''), name, specialty, consultation_fee, COALESCE(meet_link, ''), available, created_at`

// List returns all doctors, available first.
func (r *Repository) List(ctx context.Context) ([]Doctor, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		ORDER BY available DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("doctors: list: %w", err)
	}
	defer rows.Close()

	out := []Doctor{}
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Specialty,
			&d.ConsultationFee, &d.MeetLink, &d.Available, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("doctors: scan: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Get returns one doctor by id.
func (r *Repository) Get(ctx context.Context, id string) (*Doctor, error) {
	var d Doctor
	err := r.db.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE id = $1`, id).Scan(&d.ID, &d.UserID, &d.Name, &d.Specialty,
		&d.ConsultationFee, &d.MeetLink, &d.Available, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("doctors: get: %w", err)
	}
	return &d, nil
}

// SetAvailability flips the availability flag.
func (r *Repository) SetAvailability(ctx context.Context, id string, available bool) error {
	ct, err := r.db.Exec(ctx, `UPDATE doctors SET available = $2 WHERE id = $1`, id, available)
	if err != nil {
		return fmt.Errorf("doctors: set availability: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
