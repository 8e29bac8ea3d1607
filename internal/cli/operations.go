package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gudang/internal/model"
	"gudang/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// operations runs one product operation and prints exactly one outcome line for it,
// preceded by any listed rows.
type operations struct {
	products service.ProductService
	out      io.Writer
	logger   zerolog.Logger
}

func newOperations(products service.ProductService, out io.Writer, logger zerolog.Logger) *operations {
	return &operations{
		products: products,
		out:      out,
		logger:   logger,
	}
}

// opLogger tags log lines of a single operation with a fresh ID.
func (o *operations) opLogger(name string) zerolog.Logger {
	return o.logger.With().
		Str("operation", name).
		Str("operation_id", uuid.NewString()).
		Logger()
}

func (o *operations) add(ctx context.Context, in model.ProductInput) error {
	logger := o.opLogger("add")

	product, err := o.products.Add(ctx, in)
	if err != nil {
		return o.fail(logger, "Failed to add product", err)
	}

	logger.Info().Int("product_id", product.ID).Msg("operation completed")
	fmt.Fprintf(o.out, "Product added with ID %d.\n", product.ID)
	return nil
}

func (o *operations) list(ctx context.Context) error {
	logger := o.opLogger("list")

	products, err := o.products.List(ctx)
	if err != nil {
		return o.fail(logger, "Failed to list products", err)
	}

	if len(products) == 0 {
		fmt.Fprintln(o.out, "No products available.")
		return nil
	}

	writeProducts(o.out, products)
	fmt.Fprintf(o.out, "%d product(s) listed.\n", len(products))
	return nil
}

func (o *operations) update(ctx context.Context, id int, in model.ProductInput) error {
	logger := o.opLogger("update")

	if err := o.products.Update(ctx, id, in); err != nil {
		return o.fail(logger, "Failed to update product", err)
	}

	logger.Info().Int("product_id", id).Msg("operation completed")
	fmt.Fprintf(o.out, "Product %d updated.\n", id)
	return nil
}

func (o *operations) delete(ctx context.Context, id int) error {
	logger := o.opLogger("delete")

	if err := o.products.Delete(ctx, id); err != nil {
		return o.fail(logger, "Failed to delete product", err)
	}

	logger.Info().Int("product_id", id).Msg("operation completed")
	fmt.Fprintf(o.out, "Product %d deleted.\n", id)
	return nil
}

func (o *operations) search(ctx context.Context, keyword string) error {
	logger := o.opLogger("search")

	products, err := o.products.Search(ctx, keyword)
	if err != nil {
		return o.fail(logger, "Failed to search products", err)
	}

	if len(products) == 0 {
		fmt.Fprintln(o.out, "No products found.")
		return nil
	}

	writeProducts(o.out, products)
	fmt.Fprintf(o.out, "%d product(s) found.\n", len(products))
	return nil
}

func (o *operations) filter(ctx context.Context, minPrice decimal.Decimal) error {
	logger := o.opLogger("filter")

	products, err := o.products.FilterByMinPrice(ctx, minPrice)
	if err != nil {
		return o.fail(logger, "Failed to filter products", err)
	}

	if len(products) == 0 {
		fmt.Fprintln(o.out, "No products meet the price criteria.")
		return nil
	}

	writeProducts(o.out, products)
	fmt.Fprintf(o.out, "%d product(s) priced at or above %s.\n", len(products), minPrice.String())
	return nil
}

// fail prints the outcome line for err and returns it marked as reported.
func (o *operations) fail(logger zerolog.Logger, action string, err error) error {
	switch {
	case errors.Is(err, model.ErrProductNotFound):
		logger.Debug().Msg("product not found")
		fmt.Fprintln(o.out, "Product not found.")
	case errors.Is(err, model.ErrInvalidInput):
		logger.Debug().Err(err).Msg("invalid input")
		fmt.Fprintf(o.out, "Invalid input: %s.\n", causeOf(err))
	default:
		logger.Error().Err(err).Msg("operation failed")
		fmt.Fprintf(o.out, "%s: %v\n", action, err)
	}

	return fmt.Errorf("%w: %w", ErrOperationFailed, err)
}

// causeOf returns the message of the innermost DomainError cause, if any.
func causeOf(err error) string {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) && domainErr.Err != nil {
		return domainErr.Err.Error()
	}
	return err.Error()
}
