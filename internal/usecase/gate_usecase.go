package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/corescan/deployguard/internal/domain/entities"
)

// GateTimeout bounds the single health fetch. No retries: a deploy gate that
// hangs is worse than one that refuses.
const GateTimeout = 30 * time.Second

const healthEndpointPath = "/api/health"

// GateClient fetches health reports from a running deployment
type GateClient struct {
	baseURL string
	client  *http.Client
}

func NewGateClient(baseURL string) *GateClient {
	return &GateClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: GateTimeout},
	}
}

// FetchReport performs one bounded GET against the health endpoint
func (c *GateClient) FetchReport(ctx context.Context) (*entities.HealthReport, error) {
	endpoint := c.baseURL + healthEndpointPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &entities.ConnectivityError{Endpoint: endpoint, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &entities.ConnectivityError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	// A non-2xx response proves nothing about safety, even when it carries
	// a decodable report body
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &entities.ConnectivityError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var report entities.HealthReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, &entities.ParseError{Source: endpoint, Err: err}
	}
	return &report, nil
}

// EvaluateReport maps a health report to a deployment decision. Pure, so the
// policy is testable without a server. The ladder is strict: any ambiguity
// lands on the unsafe side.
func EvaluateReport(report *entities.HealthReport) entities.DeploymentDecision {
	if report.Status != entities.HealthStatusHealthy {
		reason := "health endpoint reported a degraded status"
		if report.Error != "" {
			reason = fmt.Sprintf("health endpoint reported an error: %s", report.Error)
		}
		return failClosed(reason)
	}
	if report.Persistence == nil || report.Data == nil || report.Backup == nil {
		return failClosed("health report is missing persistence, data or backup details")
	}
	if len(report.Persistence.Warnings) > 0 {
		return entities.DeploymentDecision{
			Level:   entities.SafetyUnsafe,
			Reasons: report.Persistence.Warnings,
		}
	}

	if report.Data.Users == 0 && report.Data.Scans == 0 && report.Data.Scores == 0 {
		return entities.DeploymentDecision{
			Level:   entities.SafetySafe,
			Reasons: []string{"no data in any tracked table; nothing to lose"},
		}
	}

	if report.Backup.HasRecentBackup {
		return entities.DeploymentDecision{
			Level:   entities.SafetySafe,
			Reasons: []string{"persistent storage configured and a backup exists from the last 24 hours"},
		}
	}

	return entities.DeploymentDecision{
		Level: entities.SafetyMostlySafe,
		Reasons: []string{
			"persistent storage is configured; the database itself survives the deploy",
			"no backup in the last 24 hours - create a manual backup before deploying",
		},
	}
}

func failClosed(reason string) entities.DeploymentDecision {
	return entities.DeploymentDecision{
		Level:   entities.SafetyUnsafe,
		Reasons: []string{reason},
	}
}

// GateUseCase is the deployment gate: fetch one report, decide once
type GateUseCase struct {
	client *GateClient
}

func NewGateUseCase(productionURL string) *GateUseCase {
	return &GateUseCase{client: NewGateClient(productionURL)}
}

// Run fetches the health report and evaluates it. Fetch failures fail
// closed: no report means no proof of safety.
func (g *GateUseCase) Run(ctx context.Context) entities.DeploymentDecision {
	ctx, cancel := context.WithTimeout(ctx, GateTimeout)
	defer cancel()

	report, err := g.client.FetchReport(ctx)
	if err != nil {
		return failClosed(fmt.Sprintf("could not confirm deployment safety: %v", err))
	}
	return EvaluateReport(report)
}
