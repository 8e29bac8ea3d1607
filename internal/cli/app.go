// Package cli implements the operator-facing surfaces of the inventory tracker:
// the interactive menu and the argument-based command tree.
package cli

import (
	"context"
	"errors"

	"gudang/internal/model"
	"gudang/internal/service"

	"github.com/rs/zerolog"
)

// ErrOperationFailed marks errors whose outcome line has already been printed.
var ErrOperationFailed = errors.New("operation failed")

// Snapshots defines the backup operations exposed on the command line.
type Snapshots interface {
	Backup(ctx context.Context) (string, error)
	Restore(ctx context.Context, name string) (int, error)
	List(ctx context.Context) ([]string, error)
}

// Mirror defines the reporting mirror operations used by the export command.
type Mirror interface {
	EnsureSchema(ctx context.Context) error
	Export(ctx context.Context, products []model.Product) (int64, error)
}

// MirrorOpener connects to the reporting mirror. The returned func releases it.
type MirrorOpener func(ctx context.Context) (Mirror, func(), error)

// App holds the dependencies shared by the menu and the commands.
type App struct {
	Products   service.ProductService
	Snapshots  Snapshots
	OpenMirror MirrorOpener
	Logger     zerolog.Logger
}
