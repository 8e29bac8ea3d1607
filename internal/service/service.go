package service

import (
	"context"

	"gudang/internal/model"

	"github.com/shopspring/decimal"
)

// ProductService defines operations for inventory management.
// Operations on a missing product return model.ErrProductNotFound.
type ProductService interface {
	// Add validates the input and stores a new product with a store-assigned ID.
	Add(ctx context.Context, in model.ProductInput) (*model.Product, error)

	// List returns every product in stored order.
	List(ctx context.Context) ([]model.Product, error)

	// Update replaces name, quantity and price of the product with the given ID.
	Update(ctx context.Context, id int, in model.ProductInput) error

	// Delete removes the product with the given ID.
	Delete(ctx context.Context, id int) error

	// Search returns products whose name contains keyword, ignoring case.
	Search(ctx context.Context, keyword string) ([]model.Product, error)

	// FilterByMinPrice returns products priced at or above minPrice.
	FilterByMinPrice(ctx context.Context, minPrice decimal.Decimal) ([]model.Product, error)
}
