package backup

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"time"

	"gudang/internal/repository"

	"github.com/rs/zerolog"
)

const (
	snapshotPrefix = "produk-"
	snapshotSuffix = ".json.gz"
	snapshotLayout = "20060102T150405.000Z"
)

// Manager creates and restores snapshots of the record store.
type Manager struct {
	repo    repository.ProductRepository
	backend Backend
	now     func() time.Time
	logger  zerolog.Logger
}

// NewManager creates a new snapshot manager.
func NewManager(repo repository.ProductRepository, backend Backend, logger zerolog.Logger) *Manager {
	return &Manager{
		repo:    repo,
		backend: backend,
		now:     time.Now,
		logger:  logger.With().Str("component", "backup").Logger(),
	}
}

// SnapshotName returns the object name for a snapshot taken at t.
func SnapshotName(t time.Time) string {
	return snapshotPrefix + t.UTC().Format(snapshotLayout) + snapshotSuffix
}

// Backup writes a compressed snapshot of the current product list and returns its name.
func (m *Manager) Backup(ctx context.Context) (string, error) {
	products, err := m.repo.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load products: %w", err)
	}

	data, err := repository.EncodeProducts(products)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	if _, err := gzipWriter.Write(data); err != nil {
		return "", fmt.Errorf("failed to compress snapshot: %w", err)
	}
	if err := gzipWriter.Close(); err != nil {
		return "", fmt.Errorf("failed to compress snapshot: %w", err)
	}

	name := SnapshotName(m.now())
	if err := m.backend.Put(ctx, name, buf.Bytes()); err != nil {
		m.logger.Error().Err(err).Str("snapshot", name).Msg("failed to store snapshot")
		return "", fmt.Errorf("failed to store snapshot %s: %w", name, err)
	}

	m.logger.Info().
		Str("snapshot", name).
		Int("products", len(products)).
		Int("bytes", buf.Len()).
		Msg("snapshot stored")

	return name, nil
}

// Restore replaces the product list with the contents of the named snapshot and
// returns the number of restored products. A snapshot that does not decode leaves
// the data file untouched.
func (m *Manager) Restore(ctx context.Context, name string) (int, error) {
	raw, err := m.backend.Get(ctx, name)
	if err != nil {
		m.logger.Error().Err(err).Str("snapshot", name).Msg("failed to fetch snapshot")
		return 0, fmt.Errorf("failed to fetch snapshot %s: %w", name, err)
	}

	gzipReader, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		m.logger.Error().Err(err).Str("snapshot", name).Msg("failed to create gzip reader")
		return 0, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
	}
	defer gzipReader.Close()

	data, err := io.ReadAll(gzipReader)
	if err != nil {
		return 0, fmt.Errorf("failed to decompress snapshot %s: %w", name, err)
	}

	products, err := repository.DecodeProducts(data)
	if err != nil {
		m.logger.Error().Err(err).Str("snapshot", name).Msg("snapshot does not contain a product list")
		return 0, fmt.Errorf("failed to decode snapshot %s: %w", name, err)
	}

	if err := m.repo.Save(ctx, products); err != nil {
		return 0, fmt.Errorf("failed to restore snapshot %s: %w", name, err)
	}

	m.logger.Info().
		Str("snapshot", name).
		Int("products", len(products)).
		Msg("snapshot restored")

	return len(products), nil
}

// List returns the names of available snapshots.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	names, err := m.backend.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return names, nil
}
