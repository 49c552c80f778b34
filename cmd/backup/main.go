package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corescan/deployguard/internal/infrastructure/offsite"
	"github.com/corescan/deployguard/internal/infrastructure/repository"
	"github.com/corescan/deployguard/internal/usecase"
	"github.com/corescan/deployguard/pkg/config"
)

func main() {
	root := &cobra.Command{
		Use:           "backup",
		Short:         "Create, list and verify database snapshots",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(createCmd(), listCmd(), verifyCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newEngine() (*usecase.BackupEngine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var replicator usecase.Replicator
	if cfg.Offsite.Enabled() {
		uploader, err := offsite.NewS3Uploader(cfg.Offsite)
		if err != nil {
			return nil, err
		}
		replicator = uploader
	}

	return usecase.NewBackupEngine(usecase.BackupConfig{
		SourcePath: cfg.DatabasePath,
		Dir:        cfg.Backup.Dir,
		Prefix:     cfg.Backup.Prefix,
		MaxCount:   cfg.Backup.MaxCount,
	}, repository.OpenSQLite, replicator), nil
}

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a verified point-in-time snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			rec, err := engine.Create(cmd.Context())
			if err != nil {
				fmt.Printf("[FAILED] Backup failed: %v\n", err)
				return err
			}
			fmt.Printf("[SUCCESS] Backup created: %s (%d users, %d scans, %d scores)\n",
				rec.Filename, rec.RowCounts.Users, rec.RowCounts.Scans, rec.RowCounts.Scores)
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first, with validity",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			records, err := engine.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No backups found.")
				return nil
			}

			var totalBytes int64
			for _, rec := range records {
				totalBytes += rec.SizeBytes
			}
			fmt.Printf("%d backup(s), %d bytes total\n\n", len(records), totalBytes)

			for _, rec := range records {
				valid := "No"
				if rec.Verified {
					valid = "Yes"
				}
				fmt.Printf("%s\n", rec.Filename)
				fmt.Printf("  Created: %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05 MST"))
				fmt.Printf("  Size:    %d bytes\n", rec.SizeBytes)
				fmt.Printf("  Valid:   %s\n", valid)
				if rec.Verified {
					fmt.Printf("  Rows:    %d users, %d scans, %d scores\n",
						rec.RowCounts.Users, rec.RowCounts.Scans, rec.RowCounts.Scores)
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [path]",
		Short: "Check the integrity of a backup (newest if no path given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}

			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				records, err := engine.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(records) == 0 {
					return fmt.Errorf("no backups to verify")
				}
				path = records[0].Path
				fmt.Printf("Verifying most recent backup: %s\n", records[0].Filename)
			}

			result := engine.Verify(cmd.Context(), path)
			fmt.Printf("Valid: %v\n", result.Valid)
			if !result.Valid {
				fmt.Printf("Error: %s\n", result.Error)
				return fmt.Errorf("backup failed verification")
			}
			fmt.Printf("Users: %d, Scans: %d, Scores: %d\n",
				result.Counts.Users, result.Counts.Scans, result.Counts.Scores)
			return nil
		},
	}
}
