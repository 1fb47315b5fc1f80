package brand

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrBrandNotFound = errors.New("brand not found")
	ErrSlugExists    = errors.New("brand slug already exists")
)

const pgUniqueViolation = "23505"

type Brand struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	LogoURL   *string   `json:"logoUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Repository interface {
	Create(ctx context.Context, b *Brand) error
	GetByID(ctx context.Context, id uuid.UUID) (*Brand, error)
	List(ctx context.Context) ([]*Brand, error)
	Update(ctx context.Context, b *Brand) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Brand) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO brands (id, name, slug, logo_url)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		b.ID, b.Name, b.Slug, b.LogoURL,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return ErrSlugExists
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Brand, error) {
	b := &Brand{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, slug, logo_url, created_at, updated_at
		FROM brands WHERE id = $1`, id,
	).Scan(&b.ID, &b.Name, &b.Slug, &b.LogoURL, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBrandNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repository) List(ctx context.Context) ([]*Brand, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, slug, logo_url, created_at, updated_at
		FROM brands ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Brand
	for rows.Next() {
		b := &Brand{}
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.LogoURL, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repository) Update(ctx context.Context, b *Brand) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE brands SET name = $2, slug = $3, logo_url = $4, updated_at = NOW()
		WHERE id = $1`,
		b.ID, b.Name, b.Slug, b.LogoURL)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return ErrSlugExists
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBrandNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBrandNotFound
	}
	return nil
}
