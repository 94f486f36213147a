// Package store persists the product list behind the catalog.
//
// JSONStore keeps products in a JSON or YAML file (the dados.json layout);
// PostgresStore keeps them in a produtos table. Both hand the pipeline an
// ordered snapshot through List.
package store

import (
	"context"
	"errors"

	"github.com/alnah/go-catalog2pdf/internal/catalog"
)

// Sentinel errors for store operations.
var (
	ErrNotFound     = errors.New("product not found")
	ErrDuplicateID  = catalog.ErrDuplicateID
	ErrDataNotFound = errors.New("data file not found")
	ErrInvalidData  = errors.New("invalid product data")
)

// Reader returns the current product list in catalog order.
type Reader interface {
	List(ctx context.Context) ([]catalog.Product, error)
}

// Store is a product repository with CRUD operations.
type Store interface {
	Reader
	Get(ctx context.Context, id catalog.ID) (catalog.Product, error)
	Create(ctx context.Context, p catalog.Product) error
	Update(ctx context.Context, id catalog.ID, p catalog.Product) error
	// Delete removes the product with id. Removing an absent id is not an error.
	Delete(ctx context.Context, id catalog.ID) error
	Close() error
}

// Compile-time interface checks.
var (
	_ Store = (*JSONStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
