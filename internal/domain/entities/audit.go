package entities

import "time"

// AuditOperation is the kind of mutation recorded in the audit log
type AuditOperation string

const (
	AuditOpCreate     AuditOperation = "CREATE"
	AuditOpUpdate     AuditOperation = "UPDATE"
	AuditOpDelete     AuditOperation = "DELETE"
	AuditOpBulkDelete AuditOperation = "BULK_DELETE"
	AuditOpRestore    AuditOperation = "RESTORE"
)

// IsDestructive reports whether the operation removes rows
func (op AuditOperation) IsDestructive() bool {
	return op == AuditOpDelete || op == AuditOpBulkDelete
}

// AuditEntry is one line of the append-only audit log. The log is owned by
// the product's audit writer; this subsystem only reads it.
type AuditEntry struct {
	Timestamp    time.Time              `json:"timestamp"`
	Operation    AuditOperation         `json:"operation"`
	Table        string                 `json:"table"`
	RecordID     string                 `json:"recordId,omitempty"`
	UserID       string                 `json:"userId,omitempty"`
	Username     string                 `json:"username,omitempty"`
	AffectedRows int                    `json:"affectedRows,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// MatchesUser reports whether the entry names the given user id or username
func (e AuditEntry) MatchesUser(user string) bool {
	if user == "" {
		return false
	}
	return e.UserID == user || e.Username == user
}
