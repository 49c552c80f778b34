package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/corescan/deployguard/internal/domain/entities"
	"github.com/corescan/deployguard/internal/domain/repository"
	infraRepo "github.com/corescan/deployguard/internal/infrastructure/repository"
	"github.com/corescan/deployguard/internal/usecase"
	"github.com/corescan/deployguard/internal/usecase/mocks"
)

func healthConfig(dbPath string) usecase.HealthConfig {
	return usecase.HealthConfig{
		DatabasePath:       dbPath,
		UploadsDir:         "/durable/uploads",
		Environment:        "production",
		OnManagedHost:      true,
		DeployTimestamp:    "2026-08-20T10:00:00Z",
		DurableMountPrefix: "/durable",
	}
}

func TestHealthUseCase_HealthyReport(t *testing.T) {
	dbPath := seedDatabase(t, 3, 2, 1)

	inventory := new(mocks.MockBackupInventory)
	inventory.On("List", mock.Anything).Return([]entities.BackupRecord{
		{
			Filename:  "corescan_2026-08-23T08-00-00.000Z.db",
			CreatedAt: time.Now().Add(-2 * time.Hour),
			Verified:  true,
		},
	}, nil)

	health := usecase.NewHealthUseCase(healthConfig(dbPath), infraRepo.OpenSQLite, inventory)
	report := health.Report(context.Background())

	assert.Equal(t, entities.HealthStatusHealthy, report.Status)
	assert.Empty(t, report.Error)

	require.NotNil(t, report.Database)
	assert.True(t, report.Database.Exists)
	assert.True(t, report.Database.Readable)
	assert.Greater(t, report.Database.SizeBytes, int64(0))

	require.NotNil(t, report.Data)
	assert.Equal(t, 3, report.Data.Users)
	assert.Equal(t, 2, report.Data.Scans)
	assert.Equal(t, 1, report.Data.Scores)

	require.NotNil(t, report.Backup)
	assert.True(t, report.Backup.HasRecentBackup)
	assert.Equal(t, 1, report.Backup.BackupCount)
	assert.Nil(t, report.Backup.Warning)

	require.NotNil(t, report.Environment)
	assert.Equal(t, "production", report.Environment.NodeEnv)
	assert.True(t, report.Environment.IsHostedPlatform)
	require.NotNil(t, report.Environment.DeploymentTimestamp)
	assert.Equal(t, "2026-08-20T10:00:00Z", *report.Environment.DeploymentTimestamp)

	// The database lives under /tmp in tests, so the persistence warning fires
	require.NotNil(t, report.Persistence)
	assert.True(t, report.Persistence.IsPersistenceRequired)
	assert.False(t, report.Persistence.IsConfiguredForPersistence)

	inventory.AssertExpectations(t)
}

func TestHealthUseCase_MissingDatabaseIsError(t *testing.T) {
	inventory := new(mocks.MockBackupInventory)

	health := usecase.NewHealthUseCase(healthConfig("/nonexistent/corescan.db"), infraRepo.OpenSQLite, inventory)
	report := health.Report(context.Background())

	assert.Equal(t, entities.HealthStatusError, report.Status)
	assert.NotEmpty(t, report.Error)

	// Everything gathered before the failure is still present
	require.NotNil(t, report.Database)
	assert.False(t, report.Database.Exists)
	require.NotNil(t, report.Persistence)
	assert.NotEmpty(t, report.Timestamp)
}

func TestHealthUseCase_RowCountFailureIsError(t *testing.T) {
	dbPath := seedDatabase(t, 1, 0, 0)

	store := new(mocks.MockDataStore)
	store.On("CountRows", mock.Anything).Return(entities.RowCounts{}, errors.New("no such table: users"))
	store.On("Close").Return(nil)

	opener := func(path string) (repository.DataStore, error) { return store, nil }
	inventory := new(mocks.MockBackupInventory)

	health := usecase.NewHealthUseCase(healthConfig(dbPath), opener, inventory)
	report := health.Report(context.Background())

	assert.Equal(t, entities.HealthStatusError, report.Status)
	assert.Contains(t, report.Error, "no such table")
	store.AssertExpectations(t)
}

func TestHealthUseCase_BackupWarnings(t *testing.T) {
	dbPath := seedDatabase(t, 1, 1, 1)

	tests := []struct {
		name          string
		records       []entities.BackupRecord
		wantRecent    bool
		wantWarning   string
		wantAgeHours  float64
		checkAgeHours bool
	}{
		{
			name:        "no backups at all",
			records:     []entities.BackupRecord{},
			wantRecent:  false,
			wantWarning: "No backup directory found",
		},
		{
			name: "only stale backups",
			records: []entities.BackupRecord{
				{Filename: "corescan_old.db", CreatedAt: time.Now().Add(-25*time.Hour - 30*time.Minute), Verified: true},
			},
			wantRecent:    false,
			wantWarning:   "No backup created in last 24 hours",
			wantAgeHours:  25.5,
			checkAgeHours: true,
		},
		{
			name: "unverified backups do not count",
			records: []entities.BackupRecord{
				{Filename: "corescan_broken.db", CreatedAt: time.Now().Add(-time.Hour), Verified: false},
			},
			wantRecent:  false,
			wantWarning: "No backup created in last 24 hours",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inventory := new(mocks.MockBackupInventory)
			inventory.On("List", mock.Anything).Return(tt.records, nil)

			health := usecase.NewHealthUseCase(healthConfig(dbPath), infraRepo.OpenSQLite, inventory)
			report := health.Report(context.Background())

			assert.Equal(t, entities.HealthStatusHealthy, report.Status)
			require.NotNil(t, report.Backup)
			assert.Equal(t, tt.wantRecent, report.Backup.HasRecentBackup)
			require.NotNil(t, report.Backup.Warning)
			assert.Equal(t, tt.wantWarning, *report.Backup.Warning)
			if tt.checkAgeHours {
				require.NotNil(t, report.Backup.MostRecentAgeHours)
				assert.InDelta(t, tt.wantAgeHours, *report.Backup.MostRecentAgeHours, 0.1)
			}
		})
	}
}

func TestHealthUseCase_InventoryFailureIsError(t *testing.T) {
	dbPath := seedDatabase(t, 1, 1, 1)

	inventory := new(mocks.MockBackupInventory)
	inventory.On("List", mock.Anything).Return(nil, errors.New("permission denied"))

	health := usecase.NewHealthUseCase(healthConfig(dbPath), infraRepo.OpenSQLite, inventory)
	report := health.Report(context.Background())

	assert.Equal(t, entities.HealthStatusError, report.Status)
	assert.Contains(t, report.Error, "permission denied")
}
