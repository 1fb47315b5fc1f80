package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"doorparts-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, filter *FilterInput, limit, offset int32) ([]*Product, error)
	Count(ctx context.Context, filter *FilterInput) (int64, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const columns = `
	id, sku, name, slug, description, price, stock,
	category_id, brand_id, image_url, active, created_at, updated_at
`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Stock,
		&p.CategoryID, &p.BrandID, &p.ImageURL, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (id, sku, name, slug, description, price, stock, category_id, brand_id, image_url, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at
	`, p.ID, p.SKU, p.Name, p.Slug, p.Description, p.Price, p.Stock,
		p.CategoryID, p.BrandID, p.ImageURL, p.Active).
		Scan(&p.CreatedAt, &p.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation {
		return ErrSKUExists
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM products WHERE slug = $1`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func buildFilter(filter *FilterInput, args []any, argIndex int) (string, []any, int) {
	clause := ""
	if filter == nil {
		return clause, args, argIndex
	}

	if filter.Search != nil && *filter.Search != "" {
		clause += fmt.Sprintf(" AND (name ILIKE $%d OR sku ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}
	if filter.CategoryID != nil {
		clause += fmt.Sprintf(" AND category_id = $%d", argIndex)
		args = append(args, *filter.CategoryID)
		argIndex++
	}
	if filter.BrandID != nil {
		clause += fmt.Sprintf(" AND brand_id = $%d", argIndex)
		args = append(args, *filter.BrandID)
		argIndex++
	}
	if filter.ActiveOnly {
		clause += " AND active = TRUE"
	}

	return clause, args, argIndex
}

func (r *repository) List(ctx context.Context, filter *FilterInput, limit, offset int32) ([]*Product, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "List"))

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + columns + ` FROM products WHERE 1=1`
	args := []any{}
	argIndex := 1

	var where string
	where, args, argIndex = buildFilter(filter, args, argIndex)
	query += where
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) Count(ctx context.Context, filter *FilterInput) (int64, error) {
	query := `SELECT COUNT(*) FROM products WHERE 1=1`
	args := []any{}

	var where string
	where, args, _ = buildFilter(filter, args, 1)
	query += where

	var count int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET sku = $1, name = $2, slug = $3, description = $4, price = $5, stock = $6,
		    category_id = $7, brand_id = $8, image_url = $9, active = $10, updated_at = NOW()
		WHERE id = $11
	`, p.SKU, p.Name, p.Slug, p.Description, p.Price, p.Stock,
		p.CategoryID, p.BrandID, p.ImageURL, p.Active, p.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation {
			return ErrSKUExists
		}
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
