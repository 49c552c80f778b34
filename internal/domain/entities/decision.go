package entities

// SafetyLevel classifies a deployment decision
type SafetyLevel string

const (
	SafetySafe       SafetyLevel = "SAFE"
	SafetyMostlySafe SafetyLevel = "MOSTLY_SAFE"
	SafetyUnsafe     SafetyLevel = "UNSAFE"
)

// DeploymentDecision is the gate's verdict for a single health report.
// Produced fresh on every invocation, never persisted.
type DeploymentDecision struct {
	Level   SafetyLevel `json:"level"`
	Reasons []string    `json:"reasons"`
}

// Marker returns the canonical human-readable verdict line
func (d DeploymentDecision) Marker() string {
	switch d.Level {
	case SafetySafe:
		return "DEPLOYMENT IS SAFE"
	case SafetyMostlySafe:
		return "DEPLOYMENT IS MOSTLY SAFE"
	default:
		return "DEPLOYMENT IS UNSAFE - DATA LOSS RISK"
	}
}

// ExitCode maps the verdict to a process exit code
func (d DeploymentDecision) ExitCode() int {
	if d.Level == SafetyUnsafe {
		return 1
	}
	return 0
}
