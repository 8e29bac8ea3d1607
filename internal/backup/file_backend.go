package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// fileBackend implements Backend on a local directory.
type fileBackend struct {
	dir    string
	logger zerolog.Logger
}

// NewFileBackend creates a backend storing snapshots as files in dir.
// The directory is created on first write.
func NewFileBackend(dir string, logger zerolog.Logger) Backend {
	return &fileBackend{
		dir:    dir,
		logger: logger.With().Str("component", "file-backup").Logger(),
	}
}

// Put writes data to dir/name.
func (b *fileBackend) Put(ctx context.Context, name string, data []byte) error {
	path, err := b.path(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		b.logger.Error().Err(err).Str("dir", b.dir).Msg("failed to create backup directory")
		return fmt.Errorf("failed to create backup directory %s: %w", b.dir, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		b.logger.Error().Err(err).Str("file", path).Msg("failed to write snapshot file")
		return fmt.Errorf("failed to write snapshot file %s: %w", path, err)
	}

	b.logger.Debug().Str("file", path).Int("bytes", len(data)).Msg("snapshot file written")
	return nil
}

// Get reads dir/name.
func (b *fileBackend) Get(ctx context.Context, name string) ([]byte, error) {
	path, err := b.path(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		b.logger.Error().Err(err).Str("file", path).Msg("failed to open snapshot file")
		return nil, fmt.Errorf("failed to open snapshot file %s: %w", path, err)
	}

	return data, nil
}

// List returns snapshot file names in dir. A missing directory has no snapshots.
func (b *fileBackend) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory %s: %w", b.dir, err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !isSnapshotName(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	return names, nil
}

func (b *fileBackend) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid snapshot name %q", name)
	}
	return filepath.Join(b.dir, name), nil
}

func isSnapshotName(name string) bool {
	return strings.HasPrefix(name, snapshotPrefix) && strings.HasSuffix(name, snapshotSuffix)
}
