package commands

import (
	"database/sql"
	"fmt"

	"github.com/itchan-dev/nanashi/backend/internal/storage/pg"
	"github.com/itchan-dev/nanashi/backend/internal/storage/pg/migrations"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the postgres schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(db *sql.DB) error {
			if err := migrations.MigrateUp(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert every migration (drops all board data)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("refusing to drop the schema without --yes")
		}
		return withDB(cmd, migrations.MigrateDown)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the applied and latest schema versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(db *sql.DB) error {
			current, latest, dirty, err := migrations.Status(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "current: %d\nlatest:  %d\ndirty:   %t\n", current, latest, dirty)
			return nil
		})
	},
}

func withDB(cmd *cobra.Command, fn func(db *sql.DB) error) error {
	cfg := loadConfig()
	db, err := pg.Connect(cmd.Context(), cfg.Private.Pg)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer db.Close()
	return fn(db)
}

func init() {
	migrateDownCmd.Flags().Bool("yes", false, "confirm dropping the schema")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}
