package entities

// HealthStatus is the overall status of a health report
type HealthStatus string

const (
	HealthStatusHealthy HealthStatus = "healthy"
	HealthStatusError   HealthStatus = "error"
)

// HealthReport is a point-in-time snapshot of deployment safety state.
// Immutable once produced; the aggregator always returns one, even when an
// internal check fails (status flips to error).
type HealthReport struct {
	Status      HealthStatus     `json:"status"`
	Database    *DatabaseInfo    `json:"database,omitempty"`
	Persistence *PersistenceInfo `json:"persistence,omitempty"`
	Data        *RowCounts       `json:"data,omitempty"`
	Backup      *BackupInfo      `json:"backup,omitempty"`
	Environment *EnvironmentInfo `json:"environment,omitempty"`
	Timestamp   string           `json:"timestamp"`
	Error       string           `json:"error,omitempty"`
}

// DatabaseInfo describes the database file on disk
type DatabaseInfo struct {
	Path      string `json:"path"`
	Exists    bool   `json:"exists"`
	SizeBytes int64  `json:"sizeBytes"`
	Readable  bool   `json:"readable"`
	Writable  bool   `json:"writable"`
}

// PersistenceInfo is the persistence classifier's verdict
type PersistenceInfo struct {
	IsPersistenceRequired      bool     `json:"isPersistenceRequired"`
	IsConfiguredForPersistence bool     `json:"isConfiguredForPersistence"`
	Warnings                   []string `json:"warnings"`
}

// RowCounts holds per-table row counts from the product database
type RowCounts struct {
	Users  int `json:"users"`
	Scans  int `json:"scans"`
	Scores int `json:"scores"`
}

// BackupInfo summarizes backup freshness for the health report
type BackupInfo struct {
	HasRecentBackup    bool     `json:"hasRecentBackup"`
	BackupCount        int      `json:"backupCount"`
	MostRecentBackup   *string  `json:"mostRecentBackup"`
	MostRecentAgeHours *float64 `json:"mostRecentAgeHours"`
	Warning            *string  `json:"warning"`
}

// EnvironmentInfo describes the runtime environment
type EnvironmentInfo struct {
	NodeEnv             string  `json:"nodeEnv"`
	IsHostedPlatform    bool    `json:"isHostedPlatform"`
	DeploymentTimestamp *string `json:"deploymentTimestamp"`
}
