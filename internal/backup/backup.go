// Package backup takes gzip-compressed snapshots of the product list and
// restores them through the record store.
package backup

import (
	"context"
)

// Backend defines storage for snapshot objects addressed by name.
type Backend interface {
	// Put stores data under name, replacing any existing object.
	Put(ctx context.Context, name string, data []byte) error

	// Get returns the object stored under name.
	Get(ctx context.Context, name string) ([]byte, error)

	// List returns the names of stored snapshots in ascending order.
	List(ctx context.Context) ([]string, error)
}
