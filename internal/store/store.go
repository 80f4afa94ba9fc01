// Package store is the local read-through cache of server data. The server
// remains the source of truth; the cache only lets the dashboard show the
// last known state while the first load is in flight or the API is down.
package store

import (
	"context"
	"errors"

	"github.com/nhle/dayboard/internal/model"
)

// ErrNotFound is returned when nothing is cached for an account.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotStore persists the last published dashboard snapshot per account.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, account string, snap model.DashboardSnapshot) error

	// LoadSnapshot returns the cached snapshot marked Stale, or ErrNotFound.
	LoadSnapshot(ctx context.Context, account string) (*model.DashboardSnapshot, error)

	DeleteSnapshot(ctx context.Context, account string) error
}

// Store is the full cache interface.
type Store interface {
	SnapshotStore

	// PruneSnapshots drops snapshots fetched before the cutoff unix time.
	PruneSnapshots(ctx context.Context, olderThanUnix int64) (int64, error)

	Close() error
}
