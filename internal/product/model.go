package product

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry. Price is cents.
type Product struct {
	ID          uuid.UUID  `json:"id"`
	SKU         string     `json:"sku"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Price       int64      `json:"price"`
	Stock       int        `json:"stock"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
	BrandID     *uuid.UUID `json:"brandId,omitempty"`
	ImageURL    *string    `json:"imageUrl,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type FilterInput struct {
	Search     *string
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
	ActiveOnly bool
}
