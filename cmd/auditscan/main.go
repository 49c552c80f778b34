package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/corescan/deployguard/internal/domain/entities"
	"github.com/corescan/deployguard/internal/usecase"
	"github.com/corescan/deployguard/pkg/config"
)

type options struct {
	logPath    string
	user       string
	table      string
	operation  string
	from       string
	to         string
	incident   string
	windowDays int
}

func main() {
	opts := &options{}

	root := &cobra.Command{
		Use:           "auditscan",
		Short:         "Reconstruct incident timelines from the audit log",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.logPath, "log", "", "audit log path (default from configuration)")
	flags.StringVar(&opts.user, "user", "", "filter: user id or username")
	flags.StringVar(&opts.table, "table", "", "filter: table name")
	flags.StringVar(&opts.operation, "operation", "", "filter: CREATE, UPDATE, DELETE, BULK_DELETE or RESTORE")
	flags.StringVar(&opts.from, "from", "", "filter: start date (YYYY-MM-DD or RFC3339)")
	flags.StringVar(&opts.to, "to", "", "filter: end date (YYYY-MM-DD or RFC3339)")
	flags.StringVar(&opts.incident, "incident", "", "suspected incident date; switches to investigation mode")
	flags.IntVar(&opts.windowDays, "window-days", 2, "days around the incident date to correlate")

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options) error {
	logPath := opts.logPath
	if logPath == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logPath = cfg.AuditLogPath
	}

	analyzer := usecase.NewAuditAnalyzer(logPath)
	if opts.incident != "" {
		return investigate(analyzer, logPath, opts)
	}
	return scan(analyzer, logPath, opts)
}

func scan(analyzer *usecase.AuditAnalyzer, logPath string, opts *options) error {
	filter := usecase.AuditFilter{
		Operation: entities.AuditOperation(opts.operation),
		Table:     opts.table,
		User:      opts.user,
	}
	var err error
	if filter.From, err = parseDate(opts.from); err != nil {
		return err
	}
	if filter.To, err = parseDate(opts.to); err != nil {
		return err
	}

	result, err := analyzer.Filter(filter)
	if err != nil {
		return err
	}
	if result.Missing {
		fmt.Printf("Audit log %s does not exist: no audit coverage for this period.\n", logPath)
		return nil
	}

	fmt.Printf("Audit log: %s\n", logPath)
	fmt.Printf("Matched %d entries (%d malformed lines skipped)\n\n", len(result.Entries), result.SkippedLines)
	for _, e := range result.Entries {
		printEntry(e)
	}
	return nil
}

func investigate(analyzer *usecase.AuditAnalyzer, logPath string, opts *options) error {
	incident, err := parseDate(opts.incident)
	if err != nil {
		return err
	}
	if incident.IsZero() {
		return fmt.Errorf("--incident requires a date")
	}

	inv, err := analyzer.Investigate(opts.user, incident, opts.windowDays)
	if err != nil {
		return err
	}

	fmt.Println("=== Audit investigation ===")
	fmt.Printf("Log: %s\n", logPath)
	if inv.NoCoverage {
		fmt.Println(inv.Conclusion)
		return nil
	}

	if opts.user != "" {
		fmt.Printf("\nActivity naming user %q: %d entries\n", opts.user, len(inv.UserEntries))
		for _, e := range inv.UserEntries {
			printEntry(e)
		}
	}

	fmt.Printf("\nDestructive operations (DELETE/BULK_DELETE): %d entries\n", len(inv.Destructive))
	for _, e := range inv.Destructive {
		printEntry(e)
	}

	fmt.Printf("\nIncident window (%s +/- %dd): %d entries\n",
		incident.Format("2006-01-02"), opts.windowDays, len(inv.WindowEntries))
	for _, e := range inv.WindowEntries {
		printEntry(e)
	}

	fmt.Println("\nCounts:")
	for _, key := range []string{"user_entries", "destructive", "window_entries", "skipped_lines"} {
		fmt.Printf("  %s=%d\n", key, inv.Counts()[key])
	}

	fmt.Printf("\nConclusion: %s\n", inv.Conclusion)
	return nil
}

func printEntry(e entities.AuditEntry) {
	user := e.Username
	if user == "" {
		user = e.UserID
	}
	line := fmt.Sprintf("  %s  %-11s %-8s", e.Timestamp.Format(time.RFC3339), e.Operation, e.Table)
	if e.RecordID != "" {
		line += " record=" + e.RecordID
	}
	if user != "" {
		line += " user=" + user
	}
	if e.AffectedRows > 0 {
		line += fmt.Sprintf(" affected=%d", e.AffectedRows)
	}
	fmt.Println(line)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD or RFC3339)", s)
}
