package usecase

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/corescan/deployguard/internal/domain/entities"
)

// PersistenceCriticalWarning is emitted when production data lives on an
// ephemeral filesystem. Downstream tooling matches on this exact string.
const PersistenceCriticalWarning = "CRITICAL: Database not in persistent storage - data will be lost on deployment"

const envProduction = "production"

// PersistenceClassifier decides whether the configured storage paths survive
// a redeploy. Pure: no filesystem access, no environment reads.
type PersistenceClassifier struct {
	durablePrefix string
}

func NewPersistenceClassifier(durablePrefix string) *PersistenceClassifier {
	return &PersistenceClassifier{durablePrefix: durablePrefix}
}

// Classify evaluates the storage paths against the durable mount prefix.
// Persistence is required only in production on a managed host; local runs
// and CI are expected to use ephemeral paths.
func (c *PersistenceClassifier) Classify(databasePath, uploadsDir, environment string, onManagedHost bool) entities.PersistenceInfo {
	required := environment == envProduction && onManagedHost
	configured := c.onDurableMount(databasePath) && c.onDurableMount(uploadsDir)

	warnings := []string{}
	if required && !configured {
		warnings = append(warnings, PersistenceCriticalWarning)
	}

	return entities.PersistenceInfo{
		IsPersistenceRequired:      required,
		IsConfiguredForPersistence: configured,
		Warnings:                   warnings,
	}
}

// onDurableMount reports whether path sits at or under the durable prefix.
// Prefix matching is path-segment aware so /durable-fake does not count.
func (c *PersistenceClassifier) onDurableMount(path string) bool {
	if path == "" {
		return false
	}
	clean := filepath.Clean(path)
	prefix := filepath.Clean(c.durablePrefix)
	if clean == prefix {
		return true
	}
	return strings.HasPrefix(clean, prefix+string(os.PathSeparator))
}
