package review

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
)

type Review struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"productId"`
	AuthorName string    `json:"authorName"`
	Email      string    `json:"email"`
	Rating     int       `json:"rating"`
	Body       string    `json:"body"`
	Approved   bool      `json:"approved"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Repository interface {
	Create(ctx context.Context, rv *Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)
	ListForProduct(ctx context.Context, productID uuid.UUID, approvedOnly bool) ([]*Review, error)
	ListPending(ctx context.Context, limit, offset int32) ([]*Review, error)
	SetApproved(ctx context.Context, id uuid.UUID, approved bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const reviewColumns = `id, product_id, author_name, email, rating, body, approved, created_at`

func scanReview(row interface{ Scan(...any) error }) (*Review, error) {
	rv := &Review{}
	err := row.Scan(&rv.ID, &rv.ProductID, &rv.AuthorName, &rv.Email, &rv.Rating, &rv.Body, &rv.Approved, &rv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func (r *repository) Create(ctx context.Context, rv *Review) error {
	if rv.Rating < 1 || rv.Rating > 5 {
		return ErrInvalidRating
	}
	if rv.ID == uuid.Nil {
		rv.ID = uuid.New()
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO reviews (id, product_id, author_name, email, rating, body, approved)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		RETURNING created_at`,
		rv.ID, rv.ProductID, rv.AuthorName, rv.Email, rv.Rating, rv.Body,
	).Scan(&rv.CreatedAt)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id)
	return scanReview(row)
}

func (r *repository) ListForProduct(ctx context.Context, productID uuid.UUID, approvedOnly bool) ([]*Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE product_id = $1`
	if approvedOnly {
		query += ` AND approved`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repository) ListPending(ctx context.Context, limit, offset int32) ([]*Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reviewColumns+` FROM reviews
		WHERE NOT approved
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows *sql.Rows) ([]*Review, error) {
	var out []*Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *repository) SetApproved(ctx context.Context, id uuid.UUID, approved bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET approved = $2 WHERE id = $1`, id, approved)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReviewNotFound
	}
	return nil
}
