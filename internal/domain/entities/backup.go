package entities

import "time"

// BackupRecord describes one snapshot file in the backup directory
type BackupRecord struct {
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
	Verified  bool      `json:"verified"`
	RowCounts RowCounts `json:"row_counts"`
}

// VerifyResult is the outcome of an integrity probe on a single backup file
type VerifyResult struct {
	Valid  bool      `json:"valid"`
	Counts RowCounts `json:"counts"`
	Error  string    `json:"error,omitempty"`
}
