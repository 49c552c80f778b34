package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/corescan/deployguard/internal/domain/entities"
	"github.com/corescan/deployguard/internal/domain/repository"
)

// SQLiteStore implements repository.DataStore over a SQLite database file.
// Connections are opened read-only so health checks and backups can never
// mutate the product database; VACUUM INTO still works from a read-only
// connection because it only writes the destination file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens a read-only view of the database file at path
func OpenSQLite(path string) (repository.DataStore, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &entities.FilesystemError{Path: path, Err: err}
	}

	// A single connection is enough for the short-lived read workloads here
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &entities.FilesystemError{Path: path, Err: err}
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// CountRows returns aggregate counts for the tracked product tables
func (s *SQLiteStore) CountRows(ctx context.Context) (entities.RowCounts, error) {
	var counts entities.RowCounts
	for _, q := range []struct {
		table string
		dest  *int
	}{
		{"users", &counts.Users},
		{"scans", &counts.Scans},
		{"scores", &counts.Scores},
	} {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", q.table)
		if err := s.db.QueryRowContext(ctx, query).Scan(q.dest); err != nil {
			return entities.RowCounts{}, fmt.Errorf("count %s in %s: %w", q.table, s.path, err)
		}
	}
	return counts, nil
}

// CheckIntegrity runs PRAGMA integrity_check and requires a clean "ok"
func (s *SQLiteStore) CheckIntegrity(ctx context.Context) error {
	var result string
	if err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return &entities.IntegrityError{Path: s.path, Reason: err.Error()}
	}
	if !strings.EqualFold(result, "ok") {
		return &entities.IntegrityError{Path: s.path, Reason: result}
	}
	return nil
}

// SnapshotTo copies the database to destPath with VACUUM INTO, SQLite's
// online-backup primitive. The copy is transactionally consistent even if
// another process is writing the source.
func (s *SQLiteStore) SnapshotTo(ctx context.Context, destPath string) error {
	// VACUUM INTO does not accept bound parameters
	escaped := strings.ReplaceAll(destPath, "'", "''")
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", escaped)); err != nil {
		return fmt.Errorf("snapshot %s to %s: %w", s.path, destPath, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
