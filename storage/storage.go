// Package storage persists the journal as a key-value document set, the
// way a browser keeps it in local storage, plus a table of point-in-time
// snapshots.
package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// KV is the persistence transport. Values are opaque strings.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	// SetMany writes every pair or none.
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// SnapshotInfo describes a stored snapshot without its document.
type SnapshotInfo struct {
	ID      string    `json:"id"`
	Created time.Time `json:"created"`
	Trades  int       `json:"trades"`
}

type Snapshots interface {
	SaveSnapshot(ctx context.Context, info SnapshotInfo, doc []byte) error
	// ListSnapshots returns snapshots newest first.
	ListSnapshots(ctx context.Context) ([]SnapshotInfo, error)
	GetSnapshot(ctx context.Context, id string) ([]byte, error)
	// PruneSnapshots keeps the newest keep snapshots and reports how many
	// were removed.
	PruneSnapshots(ctx context.Context, keep int) (int, error)
}

// Store is what the dashboard persists through.
type Store interface {
	KV
	Snapshots
}
