package usecase

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/corescan/deployguard/internal/domain/entities"
	"github.com/corescan/deployguard/internal/domain/repository"
)

// backupTimestampLayout keeps filenames lexicographically sortable by time
const backupTimestampLayout = "2006-01-02T15-04-05.000Z"

// Replicator copies a verified backup to offsite storage and returns the
// remote location. Failures are logged, never propagated: a local verified
// backup already satisfies the durability contract.
type Replicator interface {
	Replicate(ctx context.Context, path string) (string, error)
}

// BackupConfig holds backup engine settings
type BackupConfig struct {
	SourcePath string
	Dir        string
	Prefix     string
	MaxCount   int
}

// BackupEngine creates, enumerates and verifies database snapshots.
// Create is not safe for concurrent use against the same directory; callers
// serialize backup runs.
type BackupEngine struct {
	cfg       BackupConfig
	openStore repository.DataStoreOpener
	offsite   Replicator
	now       func() time.Time
}

func NewBackupEngine(cfg BackupConfig, openStore repository.DataStoreOpener, offsite Replicator) *BackupEngine {
	return &BackupEngine{cfg: cfg, openStore: openStore, offsite: offsite, now: time.Now}
}

// Create takes a verified point-in-time snapshot of the source database.
// Order matters: integrity first (never snapshot a corrupt source), row
// counts second (captured before the copy so verification compares against
// the pre-snapshot state), then the online copy, then verification of the
// copy itself. Any failure after the file exists removes the artifact; a
// backup that cannot be proven restorable must not look like one.
func (e *BackupEngine) Create(ctx context.Context) (*entities.BackupRecord, error) {
	source, err := e.openStore(e.cfg.SourcePath)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	if err := source.CheckIntegrity(ctx); err != nil {
		return nil, err
	}

	counts, err := source.CountRows(ctx)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(e.cfg.Dir, 0755); err != nil {
		return nil, &entities.FilesystemError{Path: e.cfg.Dir, Err: err}
	}

	createdAt := e.now().UTC()
	filename := fmt.Sprintf("%s_%s.db", e.cfg.Prefix, createdAt.Format(backupTimestampLayout))
	destPath := filepath.Join(e.cfg.Dir, filename)

	if err := source.SnapshotTo(ctx, destPath); err != nil {
		e.removeArtifact(destPath)
		return nil, err
	}

	result := e.Verify(ctx, destPath)
	if !result.Valid {
		e.removeArtifact(destPath)
		return nil, &entities.IntegrityError{Path: destPath, Reason: result.Error}
	}
	if result.Counts != counts {
		e.removeArtifact(destPath)
		return nil, &entities.IntegrityError{
			Path:   destPath,
			Reason: fmt.Sprintf("row count mismatch: source %+v, backup %+v", counts, result.Counts),
		}
	}

	stat, err := os.Stat(destPath)
	if err != nil {
		e.removeArtifact(destPath)
		return nil, &entities.FilesystemError{Path: destPath, Err: err}
	}

	record := &entities.BackupRecord{
		Filename:  filename,
		Path:      destPath,
		CreatedAt: createdAt,
		SizeBytes: stat.Size(),
		Verified:  true,
		RowCounts: result.Counts,
	}

	if err := e.applyRetention(ctx); err != nil {
		log.Printf("backup retention failed: %v", err)
	}

	if e.offsite != nil {
		if location, err := e.offsite.Replicate(ctx, destPath); err != nil {
			log.Printf("offsite replication of %s failed: %v", filename, err)
		} else {
			log.Printf("replicated %s to %s", filename, location)
		}
	}

	return record, nil
}

// List enumerates backups in the configured directory, newest first. Each
// file is verified fresh; validity is a property of the artifact, not of
// stored metadata.
func (e *BackupEngine) List(ctx context.Context) ([]entities.BackupRecord, error) {
	dirEntries, err := os.ReadDir(e.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &entities.FilesystemError{Path: e.cfg.Dir, Err: err}
	}

	var records []entities.BackupRecord
	for _, entry := range dirEntries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, e.cfg.Prefix+"_") || !strings.HasSuffix(name, ".db") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(e.cfg.Dir, name)
		record := entities.BackupRecord{
			Filename:  name,
			Path:      path,
			SizeBytes: info.Size(),
		}

		stamp := strings.TrimSuffix(strings.TrimPrefix(name, e.cfg.Prefix+"_"), ".db")
		if createdAt, err := time.Parse(backupTimestampLayout, stamp); err == nil {
			record.CreatedAt = createdAt
		} else {
			record.CreatedAt = info.ModTime().UTC()
		}

		result := e.Verify(ctx, path)
		record.Verified = result.Valid
		record.RowCounts = result.Counts

		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].Filename > records[j].Filename
	})
	return records, nil
}

// Verify probes a backup file: it must open, pass the integrity check and
// contain countable tracked tables. Never returns an error; the outcome is
// the result.
func (e *BackupEngine) Verify(ctx context.Context, path string) entities.VerifyResult {
	if _, err := os.Stat(path); err != nil {
		return entities.VerifyResult{Error: fmt.Sprintf("backup not accessible: %v", err)}
	}

	store, err := e.openStore(path)
	if err != nil {
		return entities.VerifyResult{Error: err.Error()}
	}
	defer store.Close()

	if err := store.CheckIntegrity(ctx); err != nil {
		return entities.VerifyResult{Error: err.Error()}
	}

	counts, err := store.CountRows(ctx)
	if err != nil {
		return entities.VerifyResult{Error: fmt.Sprintf("row count metadata missing: %v", err)}
	}

	return entities.VerifyResult{Valid: true, Counts: counts}
}

// applyRetention deletes the oldest verified backups beyond MaxCount.
// Unverified files are never retention candidates; deleting them would hide
// evidence of a broken backup pipeline.
func (e *BackupEngine) applyRetention(ctx context.Context) error {
	records, err := e.List(ctx)
	if err != nil {
		return err
	}

	var verified []entities.BackupRecord
	for _, rec := range records {
		if rec.Verified {
			verified = append(verified, rec)
		}
	}

	for i := len(verified) - 1; i >= e.cfg.MaxCount; i-- {
		if err := os.Remove(verified[i].Path); err != nil {
			return &entities.FilesystemError{Path: verified[i].Path, Err: err}
		}
		log.Printf("retention removed old backup %s", verified[i].Filename)
	}
	return nil
}

// removeArtifact deletes a failed snapshot and any journal companions
func (e *BackupEngine) removeArtifact(path string) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Printf("failed to remove backup artifact %s: %v", p, err)
		}
	}
}
