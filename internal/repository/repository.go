package repository

import (
	"context"

	"gudang/internal/model"

	"github.com/shopspring/decimal"
)

// ProductRepository defines the record store operations over the product list.
// Every call reads the backing data from scratch; nothing is cached between calls.
type ProductRepository interface {
	// Load returns the full product list. A missing data file yields an empty list.
	Load(ctx context.Context) ([]model.Product, error)

	// Save replaces the persisted list with products.
	Save(ctx context.Context, products []model.Product) error

	// Add assigns the next free ID, stamps LastModified, appends and saves.
	Add(ctx context.Context, product model.Product) (*model.Product, error)

	// FindAll returns every product in stored order.
	FindAll(ctx context.Context) ([]model.Product, error)

	// Update overwrites the mutable fields of the first product with the given ID.
	// Returns false when no product has that ID.
	Update(ctx context.Context, id int, name string, quantity int, price decimal.Decimal) (bool, error)

	// Delete removes the first product with the given ID.
	// Returns false when no product has that ID.
	Delete(ctx context.Context, id int) (bool, error)

	// SearchByName returns products whose name contains keyword, ignoring case.
	SearchByName(ctx context.Context, keyword string) ([]model.Product, error)

	// FilterByMinPrice returns products priced at or above minPrice.
	FilterByMinPrice(ctx context.Context, minPrice decimal.Decimal) ([]model.Product, error)
}

// ProductMirror defines a secondary copy of the product list kept for reporting.
type ProductMirror interface {
	// EnsureSchema creates the mirror table if it does not exist.
	EnsureSchema(ctx context.Context) error

	// Export replaces the mirrored rows with products.
	Export(ctx context.Context, products []model.Product) (int64, error)

	// List returns the mirrored rows ordered by ID.
	List(ctx context.Context) ([]model.Product, error)
}
