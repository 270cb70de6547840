package prescriptions

import (
	"context"
	"encoding/json"
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
		panic("prescriptions: db required")
	}
	return &Repository{db: db}
}

// Insert writes one prescription; medicines are stored as jsonb.
func (r *Repository) Insert(ctx context.Context, p *Prescription) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	medicines, err := json.Marshal(p.Medicines)
	if err != nil {
		return fmt.Errorf("prescriptions: marshal medicines: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO prescriptions
		    (id, patient_id, doctor_id, appointment_id, medicines, instructions, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7)`,
		p.ID, p.PatientID, p.DoctorID, p.AppointmentID, medicines, p.Instructions, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("prescriptions: insert: %w", err)
	}
	return nil
}

// ListByOwner returns prescriptions for one side of the relationship,
// newest first. ownerColumn is "patient_id" or "doctor_id".
func (r *Repository) ListByOwner(ctx context.Context, ownerColumn, ownerID string) ([]Prescription, error) {
	if ownerColumn != "patient_id" && ownerColumn != "doctor_id" {
		return nil, fmt.Errorf("prescriptions: invalid owner column %q", ownerColumn)
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, patient_id, doctor_id, COALESCE(appointment_id, ''),
		       medicines, COALESCE(instructions, ''), created_at
		FROM prescriptions
		WHERE `+ownerColumn+` = $1
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("prescriptions: list: %w", err)
	}
	defer rows.Close()

	out := []Prescription{}
	for rows.Next() {
		var p Prescription
		var medicines []byte
		if err := rows.Scan(&p.ID, &p.PatientID, &p.DoctorID, &p.AppointmentID,
			&medicines, &p.Instructions, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("prescriptions: scan: %w", err)
		}
		if err := json.Unmarshal(medicines, &p.Medicines); err != nil {
			return nil, fmt.Errorf("prescriptions: decode medicines: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
