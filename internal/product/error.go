package product

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSKUExists       = errors.New("sku already exists")
	ErrInvalidPrice    = errors.New("price must be positive")

	// -- Constants (External Systems) --
	PgUniqueViolation = "23505"
)
