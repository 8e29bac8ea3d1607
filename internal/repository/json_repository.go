package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gudang/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const dataFileMode = 0o644

// jsonProductRepository implements ProductRepository over a single JSON file.
// It performs a whole-file read-modify-write per call and is not safe for use
// by more than one process at a time.
type jsonProductRepository struct {
	path   string
	now    func() time.Time
	logger zerolog.Logger
}

// NewJSONProductRepository creates a product repository backed by the file at path.
func NewJSONProductRepository(path string, logger zerolog.Logger) ProductRepository {
	return newJSONProductRepository(path, time.Now, logger)
}

func newJSONProductRepository(path string, now func() time.Time, logger zerolog.Logger) *jsonProductRepository {
	return &jsonProductRepository{
		path:   path,
		now:    now,
		logger: logger.With().Str("repository", "product").Str("file", path).Logger(),
	}
}

// Load reads and decodes the data file.
func (r *jsonProductRepository) Load(ctx context.Context) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Debug().Msg("data file does not exist, starting empty")
			return []model.Product{}, nil
		}
		r.logger.Error().Err(err).Msg("failed to read data file")
		return nil, model.WrapDomainError(model.ErrCodeIO, "failed to read data file "+r.path, err)
	}

	products, err := DecodeProducts(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to decode data file")
		return nil, err
	}

	return products, nil
}

// Save encodes products and atomically replaces the data file.
func (r *jsonProductRepository) Save(ctx context.Context, products []model.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := EncodeProducts(products)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to encode products")
		return err
	}

	if err := writeFileAtomic(r.path, data); err != nil {
		r.logger.Error().Err(err).Int("count", len(products)).Msg("failed to write data file")
		return model.WrapDomainError(model.ErrCodeIO, "failed to write data file "+r.path, err)
	}

	r.logger.Debug().Int("count", len(products)).Msg("data file saved")
	return nil
}

// Add assigns the next free ID, stamps LastModified, appends and saves.
func (r *jsonProductRepository) Add(ctx context.Context, product model.Product) (*model.Product, error) {
	products, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	product.ID = nextID(products)
	product.LastModified = model.NewTimestamp(r.now())
	products = append(products, product)

	if err := r.Save(ctx, products); err != nil {
		return nil, err
	}

	r.logger.Info().Int("product_id", product.ID).Msg("product added")
	return &product, nil
}

// FindAll returns every product in stored order.
func (r *jsonProductRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	return r.Load(ctx)
}

// Update overwrites the mutable fields of the first product with the given ID.
func (r *jsonProductRepository) Update(ctx context.Context, id int, name string, quantity int, price decimal.Decimal) (bool, error) {
	products, err := r.Load(ctx)
	if err != nil {
		return false, err
	}

	idx := indexOf(products, id)
	if idx < 0 {
		r.logger.Debug().Int("product_id", id).Msg("product not found for update")
		return false, nil
	}

	products[idx].Name = name
	products[idx].Quantity = quantity
	products[idx].Price = price
	products[idx].LastModified = model.NewTimestamp(r.now())

	if err := r.Save(ctx, products); err != nil {
		return false, err
	}

	r.logger.Info().Int("product_id", id).Msg("product updated")
	return true, nil
}

// Delete removes the first product with the given ID.
func (r *jsonProductRepository) Delete(ctx context.Context, id int) (bool, error) {
	products, err := r.Load(ctx)
	if err != nil {
		return false, err
	}

	idx := indexOf(products, id)
	if idx < 0 {
		r.logger.Debug().Int("product_id", id).Msg("product not found for delete")
		return false, nil
	}

	products = append(products[:idx], products[idx+1:]...)

	if err := r.Save(ctx, products); err != nil {
		return false, err
	}

	r.logger.Info().Int("product_id", id).Msg("product deleted")
	return true, nil
}

// SearchByName returns products whose name contains keyword, ignoring case.
func (r *jsonProductRepository) SearchByName(ctx context.Context, keyword string) ([]model.Product, error) {
	products, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(keyword)
	result := []model.Product{}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			result = append(result, p)
		}
	}

	return result, nil
}

// FilterByMinPrice returns products priced at or above minPrice.
func (r *jsonProductRepository) FilterByMinPrice(ctx context.Context, minPrice decimal.Decimal) ([]model.Product, error) {
	products, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := []model.Product{}
	for _, p := range products {
		if p.Price.GreaterThanOrEqual(minPrice) {
			result = append(result, p)
		}
	}

	return result, nil
}

// DecodeProducts parses the data file format. Empty input and a JSON null
// both decode to an empty list.
func DecodeProducts(data []byte) ([]model.Product, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []model.Product{}, nil
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, model.WrapDomainError(model.ErrCodeSerialization, "failed to decode products", err)
	}
	if products == nil {
		products = []model.Product{}
	}

	return products, nil
}

// EncodeProducts renders products in the data file format, indented by two spaces.
func EncodeProducts(products []model.Product) ([]byte, error) {
	if products == nil {
		products = []model.Product{}
	}

	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return nil, model.WrapDomainError(model.ErrCodeSerialization, "failed to encode products", err)
	}

	return data, nil
}

// nextID returns one more than the highest ID in products, or 1 when empty.
func nextID(products []model.Product) int {
	highest := 0
	for _, p := range products {
		if p.ID > highest {
			highest = p.ID
		}
	}
	return highest + 1
}

func indexOf(products []model.Product, id int) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// writeFileAtomic writes data to a temp file next to path, syncs it and renames it
// over path, so readers see either the old or the new content.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	// Remove the temp file on any failure path.
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, dataFileMode); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace data file: %w", err)
	}

	committed = true
	return nil
}
