package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sensorline/levelquote/internal/db"
	"github.com/sensorline/levelquote/internal/logging"
	"github.com/sensorline/levelquote/internal/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logging.Sync()

		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer database.Close()

		if err := migrations.Up(database, cfg.MigrationsDir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logging.Info("migrations applied")
		return nil
	},
}
