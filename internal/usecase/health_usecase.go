package usecase

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/corescan/deployguard/internal/domain/entities"
	"github.com/corescan/deployguard/internal/domain/repository"
)

const recentBackupWindow = 24 * time.Hour

const (
	warnNoBackupDir    = "No backup directory found"
	warnNoRecentBackup = "No backup created in last 24 hours"
)

// HealthConfig is the slice of configuration the aggregator needs
type HealthConfig struct {
	DatabasePath       string
	UploadsDir         string
	Environment        string
	OnManagedHost      bool
	DeployTimestamp    string
	DurableMountPrefix string
}

// HealthUseCase assembles the deployment-safety health report. Report never
// returns an error: any internal failure is absorbed into the report itself
// with status flipped to error, so the endpoint always has a body to serve.
type HealthUseCase struct {
	cfg        HealthConfig
	classifier *PersistenceClassifier
	openStore  repository.DataStoreOpener
	inventory  repository.BackupInventory
	now        func() time.Time
}

func NewHealthUseCase(cfg HealthConfig, openStore repository.DataStoreOpener, inventory repository.BackupInventory) *HealthUseCase {
	return &HealthUseCase{
		cfg:        cfg,
		classifier: NewPersistenceClassifier(cfg.DurableMountPrefix),
		openStore:  openStore,
		inventory:  inventory,
		now:        time.Now,
	}
}

// Report produces a point-in-time health report
func (h *HealthUseCase) Report(ctx context.Context) *entities.HealthReport {
	report := &entities.HealthReport{
		Status:      entities.HealthStatusHealthy,
		Timestamp:   h.now().UTC().Format(time.RFC3339),
		Environment: h.environmentBlock(),
	}

	persistence := h.classifier.Classify(h.cfg.DatabasePath, h.cfg.UploadsDir, h.cfg.Environment, h.cfg.OnManagedHost)
	report.Persistence = &persistence

	dbInfo, err := h.inspectDatabaseFile(h.cfg.DatabasePath)
	report.Database = dbInfo
	if err != nil {
		return h.fail(report, err)
	}

	counts, err := h.countRows(ctx)
	if err != nil {
		return h.fail(report, err)
	}
	report.Data = &counts

	backup, err := h.backupBlock(ctx)
	if err != nil {
		return h.fail(report, err)
	}
	report.Backup = backup

	return report
}

func (h *HealthUseCase) environmentBlock() *entities.EnvironmentInfo {
	info := &entities.EnvironmentInfo{
		NodeEnv:          h.cfg.Environment,
		IsHostedPlatform: h.cfg.OnManagedHost,
	}
	if h.cfg.DeployTimestamp != "" {
		ts := h.cfg.DeployTimestamp
		info.DeploymentTimestamp = &ts
	}
	return info
}

func (h *HealthUseCase) inspectDatabaseFile(path string) (*entities.DatabaseInfo, error) {
	info := &entities.DatabaseInfo{Path: path}

	stat, err := os.Stat(path)
	if err != nil {
		return info, &entities.FilesystemError{Path: path, Err: err}
	}
	info.Exists = true
	info.SizeBytes = stat.Size()

	if f, err := os.Open(path); err == nil {
		info.Readable = true
		f.Close()
	}
	if f, err := os.OpenFile(path, os.O_WRONLY, 0); err == nil {
		info.Writable = true
		f.Close()
	}

	return info, nil
}

func (h *HealthUseCase) countRows(ctx context.Context) (entities.RowCounts, error) {
	store, err := h.openStore(h.cfg.DatabasePath)
	if err != nil {
		return entities.RowCounts{}, err
	}
	defer store.Close()
	return store.CountRows(ctx)
}

func (h *HealthUseCase) backupBlock(ctx context.Context) (*entities.BackupInfo, error) {
	records, err := h.inventory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}

	info := &entities.BackupInfo{BackupCount: len(records)}
	if len(records) == 0 {
		warning := warnNoBackupDir
		info.Warning = &warning
		return info, nil
	}

	// Records are newest first; the first verified one is the freshest backup
	for _, rec := range records {
		if !rec.Verified {
			continue
		}
		name := rec.Filename
		age := h.now().Sub(rec.CreatedAt).Hours()
		info.MostRecentBackup = &name
		info.MostRecentAgeHours = &age
		info.HasRecentBackup = h.now().Sub(rec.CreatedAt) <= recentBackupWindow
		break
	}

	if !info.HasRecentBackup {
		warning := warnNoRecentBackup
		info.Warning = &warning
	}
	return info, nil
}

// fail marks the report degraded while keeping everything gathered so far
func (h *HealthUseCase) fail(report *entities.HealthReport, err error) *entities.HealthReport {
	report.Status = entities.HealthStatusError
	report.Error = err.Error()
	return report
}
