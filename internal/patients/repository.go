package patients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when no profile exists for the user.
var ErrNotFound = errors.New("patient not found")

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence for patient profiles.
type Repository struct {
	db DB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("patients: db required")
	}
	return &Repository{db: db}
}

// GetByUserID returns the profile owned by the given auth user.
func (r *Repository) GetByUserID(ctx context.Context, userID string) (*Patient, error) {
	var p Patient
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, name, email, COALESCE(phone, ''),
		       COALESCE(date_of_birth, ''), COALESCE(blood_group, ''), created_at
		FROM patients
		WHERE user_id = $1`, userID).Scan(&p.ID, &p.UserID, &p.Name, &p.Email,
		&p.Phone, &p.DateOfBirth, &p.BloodGroup, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patients: get by user: %w", err)
	}
	return &p, nil
}

// EmailFor resolves a user id to a recipient name and email address.
func (r *Repository) EmailFor(ctx context.Context, userID string) (name, email string, err error) {
	p, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return "", "", err
	}
	return p.Name, p.Email, nil
}

// Upsert creates or updates the profile for the user.
func (r *Repository) Upsert(ctx context.Context, p *Patient) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO patients (id, user_id, name, email, phone, date_of_birth, blood_group, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
		    name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone,
		    date_of_birth = EXCLUDED.date_of_birth, blood_group = EXCLUDED.blood_group`,
		p.ID, p.UserID, p.Name, p.Email, p.Phone, p.DateOfBirth, p.BloodGroup, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("patients: upsert: %w", err)
	}
	return nil
}
