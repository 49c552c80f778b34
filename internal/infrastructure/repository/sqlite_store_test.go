package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/corescan/deployguard/internal/domain/entities"
	"github.com/corescan/deployguard/internal/infrastructure/repository"
)

func newProductDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "corescan.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);
		CREATE TABLE scans (id INTEGER PRIMARY KEY, user_id INTEGER);
		CREATE TABLE scores (id INTEGER PRIMARY KEY, scan_id INTEGER, value REAL);
		INSERT INTO users (name) VALUES ('a'), ('b'), ('c');
		INSERT INTO scans (user_id) VALUES (1), (2);
		INSERT INTO scores (scan_id, value) VALUES (1, 88.5);
	`)
	require.NoError(t, err)

	return path
}

func TestSQLiteStore_CountRows(t *testing.T) {
	store, err := repository.OpenSQLite(newProductDB(t))
	require.NoError(t, err)
	defer store.Close()

	counts, err := store.CountRows(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entities.RowCounts{Users: 3, Scans: 2, Scores: 1}, counts)
}

func TestSQLiteStore_CheckIntegrity(t *testing.T) {
	store, err := repository.OpenSQLite(newProductDB(t))
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.CheckIntegrity(context.Background()))
}

func TestSQLiteStore_SnapshotTo(t *testing.T) {
	source := newProductDB(t)
	store, err := repository.OpenSQLite(source)
	require.NoError(t, err)
	defer store.Close()

	destPath := filepath.Join(t.TempDir(), "snapshot.db")
	require.NoError(t, store.SnapshotTo(context.Background(), destPath))

	snapshot, err := repository.OpenSQLite(destPath)
	require.NoError(t, err)
	defer snapshot.Close()

	counts, err := snapshot.CountRows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entities.RowCounts{Users: 3, Scans: 2, Scores: 1}, counts)
	assert.NoError(t, snapshot.CheckIntegrity(context.Background()))
}

func TestOpenSQLite_MissingFile(t *testing.T) {
	_, err := repository.OpenSQLite(filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)

	var fsErr *entities.FilesystemError
	assert.ErrorAs(t, err, &fsErr)
}
