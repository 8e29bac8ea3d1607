package repository

import (
	"context"
	"fmt"
	"time"

	"gudang/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const mirrorTable = "inventory_products"

// postgresMirror implements ProductMirror using PostgreSQL.
type postgresMirror struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresMirror creates a PostgreSQL-backed product mirror.
func NewPostgresMirror(pool *pgxpool.Pool, logger zerolog.Logger) ProductMirror {
	return &postgresMirror{
		pool:   pool,
		logger: logger.With().Str("repository", "mirror").Logger(),
	}
}

// EnsureSchema creates the mirror table if it does not exist.
func (m *postgresMirror) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS inventory_products (
			id            INTEGER NOT NULL,
			position      INTEGER PRIMARY KEY,
			name          TEXT NOT NULL,
			quantity      INTEGER NOT NULL,
			price         NUMERIC NOT NULL,
			last_modified TIMESTAMPTZ,
			exported_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`

	if _, err := m.pool.Exec(ctx, query); err != nil {
		m.logger.Error().Err(err).Msg("failed to create mirror table")
		return fmt.Errorf("failed to create mirror table: %w", err)
	}

	return nil
}

// Export replaces the mirrored rows with products inside a single transaction.
// Rows keep the order of the data file through the position column, since IDs
// in hand-edited files are not guaranteed to be unique.
func (m *postgresMirror) Export(ctx context.Context, products []model.Product) (int64, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to begin mirror transaction")
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "DELETE FROM "+mirrorTable); err != nil {
		m.logger.Error().Err(err).Msg("failed to clear mirror table")
		return 0, fmt.Errorf("failed to clear mirror table: %w", err)
	}

	rows := make([][]any, 0, len(products))
	for i, p := range products {
		var lastModified any
		if !p.LastModified.IsZero() {
			lastModified = p.LastModified.Time
		}
		price := pgtype.Numeric{Int: p.Price.Coefficient(), Exp: p.Price.Exponent(), Valid: true}
		rows = append(rows, []any{p.ID, i, p.Name, p.Quantity, price, lastModified})
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{mirrorTable},
		[]string{"id", "position", "name", "quantity", "price", "last_modified"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		m.logger.Error().Err(err).Int("count", len(products)).Msg("failed to copy products into mirror")
		return 0, fmt.Errorf("failed to copy products: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		m.logger.Error().Err(err).Msg("failed to commit mirror transaction")
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	m.logger.Info().Int64("rows", copied).Msg("products exported to mirror")
	return copied, nil
}

// List returns the mirrored rows in data file order.
func (m *postgresMirror) List(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT id, name, quantity, price::text, last_modified
		FROM inventory_products
		ORDER BY position
	`

	rows, err := m.pool.Query(ctx, query)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to query mirror")
		return nil, fmt.Errorf("failed to query mirror: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var (
			p            model.Product
			price        string
			lastModified *time.Time
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Quantity, &price, &lastModified); err != nil {
			m.logger.Error().Err(err).Msg("failed to scan mirror row")
			return nil, fmt.Errorf("failed to scan mirror row: %w", err)
		}
		p.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("failed to parse mirrored price %q: %w", price, err)
		}
		if lastModified != nil {
			p.LastModified = model.NewTimestamp(*lastModified)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		m.logger.Error().Err(err).Msg("error iterating mirror rows")
		return nil, fmt.Errorf("error iterating mirror rows: %w", err)
	}

	return products, nil
}
