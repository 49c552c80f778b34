package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corescan/deployguard/internal/domain/entities"
	"github.com/corescan/deployguard/internal/usecase"
)

func healthyReport() *entities.HealthReport {
	recent := "corescan_2026-08-23T08-00-00.000Z.db"
	age := 2.0
	return &entities.HealthReport{
		Status: entities.HealthStatusHealthy,
		Persistence: &entities.PersistenceInfo{
			IsPersistenceRequired:      true,
			IsConfiguredForPersistence: true,
			Warnings:                   []string{},
		},
		Data: &entities.RowCounts{Users: 10, Scans: 20, Scores: 5},
		Backup: &entities.BackupInfo{
			HasRecentBackup:    true,
			BackupCount:        3,
			MostRecentBackup:   &recent,
			MostRecentAgeHours: &age,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func TestEvaluateReport(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(r *entities.HealthReport)
		wantLevel  entities.SafetyLevel
		wantReason string
	}{
		{
			name:      "healthy with recent backup is safe",
			mutate:    func(r *entities.HealthReport) {},
			wantLevel: entities.SafetySafe,
		},
		{
			name: "error status fails closed",
			mutate: func(r *entities.HealthReport) {
				r.Status = entities.HealthStatusError
				r.Error = "database file missing"
			},
			wantLevel:  entities.SafetyUnsafe,
			wantReason: "database file missing",
		},
		{
			name: "missing blocks fail closed",
			mutate: func(r *entities.HealthReport) {
				r.Backup = nil
			},
			wantLevel:  entities.SafetyUnsafe,
			wantReason: "missing persistence, data or backup",
		},
		{
			name: "persistence warning is unsafe",
			mutate: func(r *entities.HealthReport) {
				r.Persistence.Warnings = []string{usecase.PersistenceCriticalWarning}
			},
			wantLevel:  entities.SafetyUnsafe,
			wantReason: "CRITICAL",
		},
		{
			name: "persistence warning dominates empty tables",
			mutate: func(r *entities.HealthReport) {
				r.Persistence.Warnings = []string{usecase.PersistenceCriticalWarning}
				r.Data = &entities.RowCounts{}
			},
			wantLevel:  entities.SafetyUnsafe,
			wantReason: "CRITICAL",
		},
		{
			name: "empty tables are safe regardless of backups",
			mutate: func(r *entities.HealthReport) {
				r.Data = &entities.RowCounts{}
				r.Backup.HasRecentBackup = false
			},
			wantLevel:  entities.SafetySafe,
			wantReason: "nothing to lose",
		},
		{
			name: "data without recent backup is mostly safe",
			mutate: func(r *entities.HealthReport) {
				r.Backup.HasRecentBackup = false
			},
			wantLevel:  entities.SafetyMostlySafe,
			wantReason: "no backup in the last 24 hours",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := healthyReport()
			tt.mutate(report)

			decision := usecase.EvaluateReport(report)
			assert.Equal(t, tt.wantLevel, decision.Level)
			require.NotEmpty(t, decision.Reasons)

			if tt.wantReason != "" {
				found := false
				for _, reason := range decision.Reasons {
					if strings.Contains(reason, tt.wantReason) {
						found = true
						break
					}
				}
				assert.True(t, found, "expected a reason containing %q, got %v", tt.wantReason, decision.Reasons)
			}
		})
	}
}

func TestEvaluateReport_StaleBackupScenario(t *testing.T) {
	report := healthyReport()
	report.Backup.HasRecentBackup = false

	decision := usecase.EvaluateReport(report)

	assert.Equal(t, entities.SafetyMostlySafe, decision.Level)
	assert.Equal(t, 0, decision.ExitCode())
	assert.Equal(t, "DEPLOYMENT IS MOSTLY SAFE", decision.Marker())
}

func TestGateClient_FetchReport(t *testing.T) {
	t.Run("decodes a valid report", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/health", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"healthy","timestamp":"2026-08-23T10:00:00Z"}`))
		}))
		defer server.Close()

		report, err := usecase.NewGateClient(server.URL).FetchReport(context.Background())
		require.NoError(t, err)
		assert.Equal(t, entities.HealthStatusHealthy, report.Status)
	})

	t.Run("healthy body behind a 500 is a connectivity error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			require.NoError(t, json.NewEncoder(w).Encode(healthyReport()))
		}))
		defer server.Close()

		_, err := usecase.NewGateClient(server.URL).FetchReport(context.Background())
		require.Error(t, err)

		var connErr *entities.ConnectivityError
		assert.ErrorAs(t, err, &connErr)
	})

	t.Run("bad gateway is a connectivity error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := usecase.NewGateClient(server.URL).FetchReport(context.Background())
		require.Error(t, err)

		var connErr *entities.ConnectivityError
		assert.ErrorAs(t, err, &connErr)
	})

	t.Run("malformed body is a parse error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		}))
		defer server.Close()

		_, err := usecase.NewGateClient(server.URL).FetchReport(context.Background())
		require.Error(t, err)

		var parseErr *entities.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("unreachable server is a connectivity error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		_, err := usecase.NewGateClient(server.URL).FetchReport(context.Background())
		require.Error(t, err)

		var connErr *entities.ConnectivityError
		assert.ErrorAs(t, err, &connErr)
		assert.True(t, errors.Unwrap(connErr) != nil)
	})
}

func TestGateUseCase_NonOKStatusNeverProvesSafety(t *testing.T) {
	// A report body claiming health must not count when the endpoint itself
	// answered with a non-2xx status
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		require.NoError(t, json.NewEncoder(w).Encode(healthyReport()))
	}))
	defer server.Close()

	decision := usecase.NewGateUseCase(server.URL).Run(context.Background())

	assert.Equal(t, entities.SafetyUnsafe, decision.Level)
	assert.Equal(t, 1, decision.ExitCode())
	require.NotEmpty(t, decision.Reasons)
	assert.Contains(t, decision.Reasons[0], "could not confirm deployment safety")
}

func TestGateUseCase_RunFailsClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	decision := usecase.NewGateUseCase(server.URL).Run(context.Background())

	assert.Equal(t, entities.SafetyUnsafe, decision.Level)
	assert.Equal(t, 1, decision.ExitCode())
	require.NotEmpty(t, decision.Reasons)
	assert.Contains(t, decision.Reasons[0], "could not confirm deployment safety")
}
