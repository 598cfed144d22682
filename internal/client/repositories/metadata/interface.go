// Package metadata is the key/value table holding local client state. The
// persisted session is its only tenant.
package metadata

import (
	"context"
)

// Repository reads and writes entries of the metadata table. Absent keys
// are simply missing from GetMany's result.
type Repository interface {
	GetMany(ctx context.Context, keys ...string) (map[string][]byte, error)
	SetMany(ctx context.Context, entries map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
}
