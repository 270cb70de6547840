package vitals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Repository struct {
	db DB
}

func NewRepository(db DB) *Repository {
	if db == nil {
		panic("vitals: db required")
	}
	return &Repository{db: db}
}

// Insert records one reading.
func (r *Repository) Insert(ctx context.Context, reading *Reading) error {
	if reading.ID == "" {
		reading.ID = uuid.NewString()
	}
	if reading.RecordedAt.IsZero() {
		reading.RecordedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO vitals
		    (id, patient_id, recorded_at, heart_rate, systolic, diastolic,
		     temperature, spo2, glucose, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''))`,
		reading.ID, reading.PatientID, reading.RecordedAt, reading.HeartRate,
		reading.Systolic, reading.Diastolic, reading.Temperature, reading.SpO2,
		reading.Glucose, reading.Notes)
	if err != nil {
		return fmt.Errorf("vitals: insert: %w", err)
	}
	return nil
}

// ListByPatient returns the patient's readings, newest first.
func (r *Repository) ListByPatient(ctx context.Context, patientID string, limit int) ([]Reading, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, patient_id, recorded_at, heart_rate, systolic, diastolic,
		       temperature, spo2, glucose, COALESCE(notes, '')
		FROM vitals
		WHERE patient_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2`, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("vitals: list: %w", err)
	}
	defer rows.Close()

	out := []Reading{}
	for rows.Next() {
		var v Reading
		if err := rows.Scan(&v.ID, &v.PatientID, &v.RecordedAt, &v.HeartRate,
			&v.Systolic, &v.Diastolic, &v.Temperature, &v.SpO2, &v.Glucose,
			&v.Notes); err != nil {
			return nil, fmt.Errorf("vitals: scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
