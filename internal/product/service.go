package product

import (
	"context"
	"regexp"
	"strings"

	"doorparts-be/internal/order"

	"github.com/google/uuid"
)

var (
	nonAlnumRegex  = regexp.MustCompile(`[^a-z0-9]+`)
	multiDashRegex = regexp.MustCompile(`-+`)
)

// Slugify turns a product name into a URL-safe slug.
func Slugify(input string) string {
	slug := strings.ToLower(strings.TrimSpace(input))
	slug = nonAlnumRegex.ReplaceAllString(slug, "-")
	slug = multiDashRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

type Service interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, filter *FilterInput, limit, offset int32) ([]*Product, int64, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ItemForOrder satisfies the checkout flow's catalog lookup.
	ItemForOrder(ctx context.Context, productID uuid.UUID) (*order.CatalogItem, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, p *Product) error {
	if p.Price <= 0 {
		return ErrInvalidPrice
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	return s.repo.Create(ctx, p)
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *service) List(ctx context.Context, filter *FilterInput, limit, offset int32) ([]*Product, int64, error) {
	products, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *service) Update(ctx context.Context, p *Product) error {
	if p.Price <= 0 {
		return ErrInvalidPrice
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	return s.repo.Update(ctx, p)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) ItemForOrder(ctx context.Context, productID uuid.UUID) (*order.CatalogItem, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	return &order.CatalogItem{
		Name:      p.Name,
		SKU:       p.SKU,
		UnitPrice: p.Price,
	}, nil
}
