package usecase

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/corescan/deployguard/internal/domain/entities"
)

// AuditFilter narrows audit entries. Zero-value fields match everything.
type AuditFilter struct {
	Operation entities.AuditOperation
	Table     string
	User      string
	From      time.Time
	To        time.Time
}

// Matches reports whether the entry passes every set criterion
func (f AuditFilter) Matches(e entities.AuditEntry) bool {
	if f.Operation != "" && e.Operation != f.Operation {
		return false
	}
	if f.Table != "" && e.Table != f.Table {
		return false
	}
	if f.User != "" && !e.MatchesUser(f.User) {
		return false
	}
	if !f.From.IsZero() && e.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Timestamp.After(f.To) {
		return false
	}
	return true
}

// AuditLog is the outcome of loading and filtering the audit log
type AuditLog struct {
	Entries      []entities.AuditEntry
	SkippedLines int
	Missing      bool
}

// Investigation correlates audit activity around a suspected incident
type Investigation struct {
	UserEntries   []entities.AuditEntry
	Destructive   []entities.AuditEntry
	WindowEntries []entities.AuditEntry
	SkippedLines  int
	NoCoverage    bool
	Conclusion    string
}

// Counts summarizes the investigation for reporting
func (inv *Investigation) Counts() map[string]int {
	return map[string]int{
		"user_entries":   len(inv.UserEntries),
		"destructive":    len(inv.Destructive),
		"window_entries": len(inv.WindowEntries),
		"skipped_lines":  inv.SkippedLines,
	}
}

// AuditAnalyzer reads the product's append-only NDJSON audit log. A missing
// log is a finding, not a failure: it means the period has no audit
// coverage at all.
type AuditAnalyzer struct {
	logPath string
}

func NewAuditAnalyzer(logPath string) *AuditAnalyzer {
	return &AuditAnalyzer{logPath: logPath}
}

// Load reads every parseable entry. Malformed lines are counted and skipped;
// one corrupt line must not hide the rest of the trail.
func (a *AuditAnalyzer) Load() (*AuditLog, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &AuditLog{Missing: true}, nil
		}
		return nil, &entities.FilesystemError{Path: a.logPath, Err: err}
	}
	defer f.Close()

	result := &AuditLog{}
	reader := bufio.NewReader(f)

	// ReadBytes has no line-length cap, so a single oversized entry cannot
	// abort the run the way a fixed scanner buffer would
	lineNo := 0
	for {
		line, readErr := reader.ReadBytes('\n')
		if len(line) > 0 {
			lineNo++
		}
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			var entry entities.AuditEntry
			if err := json.Unmarshal(trimmed, &entry); err != nil {
				result.SkippedLines++
				log.Printf("skipping malformed audit line %d: %v", lineNo, err)
			} else {
				result.Entries = append(result.Entries, entry)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return nil, &entities.ParseError{Source: a.logPath, Err: readErr}
		}
	}

	return result, nil
}

// Filter loads the log and keeps only entries matching the filter
func (a *AuditAnalyzer) Filter(filter AuditFilter) (*AuditLog, error) {
	loaded, err := a.Load()
	if err != nil {
		return nil, err
	}
	if loaded.Missing {
		return loaded, nil
	}

	filtered := &AuditLog{SkippedLines: loaded.SkippedLines}
	for _, e := range loaded.Entries {
		if filter.Matches(e) {
			filtered.Entries = append(filtered.Entries, e)
		}
	}
	return filtered, nil
}

// Investigate correlates the log around a suspected data-loss incident:
// everything naming the user, every destructive operation, and all activity
// inside the incident window.
func (a *AuditAnalyzer) Investigate(user string, incident time.Time, windowDays int) (*Investigation, error) {
	loaded, err := a.Load()
	if err != nil {
		return nil, err
	}
	if loaded.Missing {
		return &Investigation{
			NoCoverage: true,
			Conclusion: "no audit log found: no audit coverage for this period, implying the event predates audit instrumentation",
		}, nil
	}

	window := time.Duration(windowDays) * 24 * time.Hour
	from := incident.Add(-window)
	to := incident.Add(window)

	inv := &Investigation{SkippedLines: loaded.SkippedLines}
	destructiveInWindow := 0
	for _, e := range loaded.Entries {
		if user != "" && e.MatchesUser(user) {
			inv.UserEntries = append(inv.UserEntries, e)
		}
		if e.Operation.IsDestructive() {
			inv.Destructive = append(inv.Destructive, e)
		}
		if !e.Timestamp.Before(from) && !e.Timestamp.After(to) {
			inv.WindowEntries = append(inv.WindowEntries, e)
			if e.Operation.IsDestructive() {
				destructiveInWindow++
			}
		}
	}

	switch {
	case destructiveInWindow > 0:
		inv.Conclusion = fmt.Sprintf("%d destructive operation(s) recorded inside the incident window; review the DELETE/BULK_DELETE entries above first", destructiveInWindow)
	case len(inv.WindowEntries) == 0:
		inv.Conclusion = "no audit activity inside the incident window: the event either predates audit instrumentation or bypassed audited code paths (e.g. a redeploy wiping ephemeral storage)"
	default:
		inv.Conclusion = "activity was recorded inside the incident window but none of it is destructive; the loss most likely occurred outside audited operations (e.g. a redeploy wiping ephemeral storage)"
	}

	return inv, nil
}
