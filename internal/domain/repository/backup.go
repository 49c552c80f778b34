package repository

import (
	"context"

	"github.com/corescan/deployguard/internal/domain/entities"
)

// BackupInventory enumerates existing backups, newest first. The health
// aggregator consumes this to report backup freshness.
type BackupInventory interface {
	List(ctx context.Context) ([]entities.BackupRecord, error)
}
