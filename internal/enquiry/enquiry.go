package enquiry

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrEnquiryNotFound = errors.New("enquiry not found")

type Status string

const (
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
)

type Enquiry struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     *string    `json:"phone,omitempty"`
	Subject   string     `json:"subject"`
	Message   string     `json:"message"`
	Status    Status     `json:"status"`
	ProductID *uuid.UUID `json:"productId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type Repository interface {
	Create(ctx context.Context, e *Enquiry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Enquiry, error)
	List(ctx context.Context, status *Status, limit, offset int32) ([]*Enquiry, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const enquiryColumns = `id, name, email, phone, subject, message, status, product_id, created_at, updated_at`

func scanEnquiry(row interface{ Scan(...any) error }) (*Enquiry, error) {
	e := &Enquiry{}
	err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Phone, &e.Subject, &e.Message, &e.Status, &e.ProductID, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEnquiryNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *repository) Create(ctx context.Context, e *Enquiry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.Status = StatusOpen
	return r.db.QueryRowContext(ctx, `
		INSERT INTO enquiries (id, name, email, phone, subject, message, status, product_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		e.ID, e.Name, e.Email, e.Phone, e.Subject, e.Message, e.Status, e.ProductID,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Enquiry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+enquiryColumns+` FROM enquiries WHERE id = $1`, id)
	return scanEnquiry(row)
}

func (r *repository) List(ctx context.Context, status *Status, limit, offset int32) ([]*Enquiry, error) {
	query := `SELECT ` + enquiryColumns + ` FROM enquiries`
	args := []any{}
	if status != nil {
		args = append(args, *status)
		query += ` WHERE status = $1`
	}
	args = append(args, limit, offset)
	if status != nil {
		query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Enquiry
	for rows.Next() {
		e, err := scanEnquiry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE enquiries SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEnquiryNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enquiries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEnquiryNotFound
	}
	return nil
}
