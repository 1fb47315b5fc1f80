package notification

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListForStaff(ctx context.Context, staffID uint, unreadOnly bool, limit int32) ([]*Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, staffID uint) error
	MarkAllRead(ctx context.Context, staffID uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}

	return r.db.QueryRowContext(ctx, `
		INSERT INTO notifications (id, staff_id, type, title, body, order_id, read)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		RETURNING created_at
	`, n.ID, n.StaffID, n.Type, n.Title, n.Body, n.OrderID).
		Scan(&n.CreatedAt)
}

func (r *repository) ListForStaff(ctx context.Context, staffID uint, unreadOnly bool, limit int32) ([]*Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT id, staff_id, type, title, body, order_id, read, created_at
		FROM notifications
		WHERE staff_id = $1
	`
	if unreadOnly {
		query += " AND read = FALSE"
	}
	query += " ORDER BY created_at DESC LIMIT $2"

	rows, err := r.db.QueryContext(ctx, query, staffID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.StaffID, &n.Type, &n.Title, &n.Body, &n.OrderID, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (r *repository) MarkRead(ctx context.Context, id uuid.UUID, staffID uint) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET read = TRUE WHERE id = $1 AND staff_id = $2
	`, id, staffID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *repository) MarkAllRead(ctx context.Context, staffID uint) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET read = TRUE WHERE staff_id = $1 AND read = FALSE
	`, staffID)
	return err
}
