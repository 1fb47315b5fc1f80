package media

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrMediaNotFound = errors.New("media not found")

// Asset is an uploaded image or document referenced by URL. Binary storage
// lives with the CDN; only metadata is kept here.
type Asset struct {
	ID        uuid.UUID  `json:"id"`
	URL       string     `json:"url"`
	AltText   string     `json:"altText"`
	Kind      string     `json:"kind"`
	ProductID *uuid.UUID `json:"productId,omitempty"`
	SortOrder int        `json:"sortOrder"`
	CreatedAt time.Time  `json:"createdAt"`
}

type Repository interface {
	Create(ctx context.Context, a *Asset) error
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)
	ListForProduct(ctx context.Context, productID uuid.UUID) ([]*Asset, error)
	Update(ctx context.Context, a *Asset) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const assetColumns = `id, url, alt_text, kind, product_id, sort_order, created_at`

func scanAsset(row interface{ Scan(...any) error }) (*Asset, error) {
	a := &Asset{}
	err := row.Scan(&a.ID, &a.URL, &a.AltText, &a.Kind, &a.ProductID, &a.SortOrder, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMediaNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *repository) Create(ctx context.Context, a *Asset) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Kind == "" {
		a.Kind = "image"
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO media (id, url, alt_text, kind, product_id, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		a.ID, a.URL, a.AltText, a.Kind, a.ProductID, a.SortOrder,
	).Scan(&a.CreatedAt)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Asset, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM media WHERE id = $1`, id)
	return scanAsset(row)
}

func (r *repository) ListForProduct(ctx context.Context, productID uuid.UUID) ([]*Asset, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+assetColumns+` FROM media
		WHERE product_id = $1
		ORDER BY sort_order ASC, created_at ASC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) Update(ctx context.Context, a *Asset) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE media SET url = $2, alt_text = $3, kind = $4, product_id = $5, sort_order = $6
		WHERE id = $1`,
		a.ID, a.URL, a.AltText, a.Kind, a.ProductID, a.SortOrder)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMediaNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMediaNotFound
	}
	return nil
}
