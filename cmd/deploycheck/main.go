package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corescan/deployguard/internal/domain/entities"
	"github.com/corescan/deployguard/internal/usecase"
)

// deploycheck is the pre-deploy gate: one bounded health fetch, one verdict,
// exit 0 only when safety was positively confirmed.
func main() {
	root := &cobra.Command{
		Use:           "deploycheck",
		Short:         "Decide whether deploying right now risks data loss",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	var decision entities.DeploymentDecision

	baseURL := os.Getenv("PRODUCTION_URL")
	if baseURL == "" {
		decision = entities.DeploymentDecision{
			Level:   entities.SafetyUnsafe,
			Reasons: []string{"PRODUCTION_URL is not set; cannot confirm deployment safety"},
		}
	} else {
		fmt.Printf("Checking deployment safety at %s (timeout %s)...\n", baseURL, usecase.GateTimeout)
		decision = usecase.NewGateUseCase(baseURL).Run(cmd.Context())
	}

	fmt.Println()
	for _, reason := range decision.Reasons {
		fmt.Println("  - " + reason)
	}
	fmt.Println()
	fmt.Println(decision.Marker())

	if decision.ExitCode() != 0 {
		return fmt.Errorf("deployment gate refused")
	}
	return nil
}
