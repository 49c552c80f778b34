package repository

import (
	"context"

	"github.com/corescan/deployguard/internal/domain/entities"
)

// DataStore is the narrow read-only interface onto a product database file.
// The product's CRUD layer owns the schema; this subsystem only counts rows,
// checks consistency and takes snapshots.
type DataStore interface {
	// CountRows returns aggregate counts for the tracked tables
	CountRows(ctx context.Context) (entities.RowCounts, error)

	// CheckIntegrity runs the storage engine's consistency check
	CheckIntegrity(ctx context.Context) error

	// SnapshotTo writes a consistent point-in-time copy to destPath using
	// the engine's online-backup primitive, safe against concurrent writers
	SnapshotTo(ctx context.Context, destPath string) error

	Close() error
}

// DataStoreOpener opens a DataStore for a database file on disk
type DataStoreOpener func(path string) (DataStore, error)
