package notifications

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, false, $6)`,
		n.ID, n.UserID, n.Type, n.Title, n.Body, n.CreatedAt)
	return err
}

func (r *Repository) ListByUser(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, type, title, body, read, created_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if out == nil {
		out = []Notification{}
	}
	return out, rows.Err()
}

// MarkRead flips one notification, scoped to its owner.
func (r *Repository) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET read = true
		WHERE id = $1 AND user_id = $2 AND read = false`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *Repository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET read = true
		WHERE user_id = $1 AND read = false`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repository) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND read = false`, userID).Scan(&n)
	return n, err
}
