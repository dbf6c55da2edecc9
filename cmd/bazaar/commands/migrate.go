package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/bazaar/cmd/bazaar/output"
	"github.com/marshallshelly/bazaar/cmd/bazaar/tui"
	"github.com/marshallshelly/bazaar/internal/store/postgres"
	"github.com/marshallshelly/bazaar/pkg/migration"
	"github.com/marshallshelly/bazaar/pkg/runtime"
)

var (
	dryRun      bool
	interactive bool
	showDown    bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the catalog schema",
	Long: `Manage the PostgreSQL schema of the catalog. The schema is derived from
the po struct tags of the catalog models.

Subcommands:
  up      - Apply pending migrations
  sql     - Print the migration SQL
  status  - Show migration status`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Long: `Apply pending migrations under a PostgreSQL advisory lock.

Examples:
  bazaar migrate up --db postgres://localhost/bazaar
  bazaar migrate up --dry-run
  bazaar migrate up -i                 # interactive`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateUp(cmd.Context())
	},
}

var migrateSQLCmd = &cobra.Command{
	Use:   "sql",
	Short: "Print the migration SQL",
	Long: `Print the SQL of every migration without touching a database.

Examples:
  bazaar migrate sql
  bazaar migrate sql --down`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateSQL()
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long: `Show the status of all migrations (pending, applied, failed).

Examples:
  bazaar migrate status
  bazaar migrate status --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateStatus(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateSQLCmd, migrateStatusCmd)

	migrateUpCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run in interactive mode with TUI")
	migrateUpCmd.Flags().BoolVar(&dryRun, "dry-run", false, "List pending migrations without applying them")
	migrateSQLCmd.Flags().BoolVar(&showDown, "down", false, "Print the rollback SQL instead")
}

// connect opens the database and builds an executor over it.
func connect(ctx context.Context) (*runtime.DB, *migration.Executor, []migration.Migration, error) {
	url, err := databaseURL()
	if err != nil {
		return nil, nil, nil, err
	}
	migrations, err := postgres.Migrations()
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := runtime.ConnectWithURL(ctx, url, runtime.PoolOptions{MaxConns: 2})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, migration.NewExecutor(db.Pool()), migrations, nil
}

func runMigrateUp(ctx context.Context) error {
	db, executor, migrations, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if interactive {
		return tui.RunMigrateUI(ctx,
			func(ctx context.Context) ([]migration.MigrationRecord, error) {
				return executor.GetStatus(ctx, migrations)
			},
			func(ctx context.Context) ([]string, error) {
				return executor.ApplyAll(ctx, migrations)
			},
		)
	}

	out := output.Stdout
	if dryRun {
		status, err := executor.GetStatus(ctx, migrations)
		if err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}
		out.Section("DRY RUN - Preview")
		n := 0
		for _, r := range status {
			if r.Status != migration.StatusApplied {
				out.Muted("  %s %s - %s", output.StatusIcon(string(r.Status)), r.Version, r.Name)
				n++
			}
		}
		if n == 0 {
			out.Info("No pending migrations")
			return nil
		}
		out.Warning("%d migration(s) would be applied", n)
		return nil
	}

	out.Section("Applying Migrations")
	applied, err := executor.ApplyAll(ctx, migrations)
	for _, v := range applied {
		out.Success("Applied %s", v)
	}
	if err != nil {
		out.Error("%v", err)
		return err
	}
	if len(applied) == 0 {
		out.Info("No pending migrations")
		return nil
	}
	out.Success("Successfully applied %d migration(s)", len(applied))
	return nil
}

func runMigrateSQL() error {
	migrations, err := postgres.Migrations()
	if err != nil {
		return err
	}

	out := output.Stdout
	for _, m := range migrations {
		out.Section(fmt.Sprintf("%s - %s", m.Version, m.Name))
		if showDown {
			out.SQL(m.DownSQL)
		} else {
			out.SQL(m.UpSQL)
		}
	}
	return nil
}

func runMigrateStatus(ctx context.Context) error {
	db, executor, migrations, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	status, err := executor.GetStatus(ctx, migrations)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VERSION\tNAME\tSTATUS\tAPPLIED AT")
	_, _ = fmt.Fprintln(w, "-------\t----\t------\t----------")

	counts := make(map[migration.MigrationStatus]int)
	for _, r := range status {
		appliedAt := "N/A"
		if r.AppliedAt != nil {
			appliedAt = r.AppliedAt.Format("2006-01-02 15:04:05")
		}
		counts[r.Status]++
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\n",
			r.Version, r.Name, output.StatusIcon(string(r.Status)), r.Status, appliedAt)
	}
	_ = w.Flush()

	fmt.Printf("\nSummary: %d applied, %d pending", counts[migration.StatusApplied], counts[migration.StatusPending])
	if n := counts[migration.StatusFailed]; n > 0 {
		fmt.Printf(", %d failed", n)
	}
	fmt.Println()
	return nil
}
