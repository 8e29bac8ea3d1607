package service

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"gudang/internal/model"
	"gudang/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	validate    *validator.Validate
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		validate:    newValidator(),
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// newValidator returns a validator that compares decimal.Decimal fields as numbers.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Add validates the input and stores a new product.
func (s *productService) Add(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	in, err := s.validateInput(in)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.Add(ctx, model.Product{
		Name:     in.Name,
		Quantity: in.Quantity,
		Price:    in.Price,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("name", in.Name).Msg("failed to add product")
		return nil, fmt.Errorf("failed to add product: %w", err)
	}

	s.logger.Debug().Int("product_id", product.ID).Msg("product added")
	return product, nil
}

// List returns every product.
func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	s.logger.Debug().Int("count", len(products)).Msg("retrieved products")
	return products, nil
}

// Update replaces the mutable fields of the product with the given ID.
func (s *productService) Update(ctx context.Context, id int, in model.ProductInput) error {
	in, err := s.validateInput(in)
	if err != nil {
		return err
	}

	found, err := s.productRepo.Update(ctx, id, in.Name, in.Quantity, in.Price)
	if err != nil {
		s.logger.Error().Err(err).Int("product_id", id).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	if !found {
		s.logger.Debug().Int("product_id", id).Msg("product not found")
		return model.ErrProductNotFound
	}

	return nil
}

// Delete removes the product with the given ID.
func (s *productService) Delete(ctx context.Context, id int) error {
	found, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if !found {
		s.logger.Debug().Int("product_id", id).Msg("product not found")
		return model.ErrProductNotFound
	}

	return nil
}

// Search returns products whose name contains keyword.
func (s *productService) Search(ctx context.Context, keyword string) ([]model.Product, error) {
	products, err := s.productRepo.SearchByName(ctx, keyword)
	if err != nil {
		s.logger.Error().Err(err).Str("keyword", keyword).Msg("failed to search products")
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	s.logger.Debug().
		Str("keyword", keyword).
		Int("found", len(products)).
		Msg("searched products")

	return products, nil
}

// FilterByMinPrice returns products priced at or above minPrice.
func (s *productService) FilterByMinPrice(ctx context.Context, minPrice decimal.Decimal) ([]model.Product, error) {
	products, err := s.productRepo.FilterByMinPrice(ctx, minPrice)
	if err != nil {
		s.logger.Error().Err(err).Str("min_price", minPrice.String()).Msg("failed to filter products")
		return nil, fmt.Errorf("failed to filter products: %w", err)
	}

	s.logger.Debug().
		Str("min_price", minPrice.String()).
		Int("found", len(products)).
		Msg("filtered products")

	return products, nil
}

// validateInput trims the name and checks the input against its validation tags.
func (s *productService) validateInput(in model.ProductInput) (model.ProductInput, error) {
	in.Name = strings.TrimSpace(in.Name)

	if err := s.validate.Struct(in); err != nil {
		s.logger.Warn().Err(err).Msg("invalid product input")
		return in, model.WrapDomainError(model.ErrCodeInvalidInput, "invalid product input", describeValidation(err))
	}

	return in, nil
}

// describeValidation turns validator field errors into a short readable message.
func describeValidation(err error) error {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must not be negative", strings.ToLower(fe.Field())))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", strings.ToLower(fe.Field()), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field())))
		}
	}

	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
