package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sensorline/levelquote/internal/db"
	"github.com/sensorline/levelquote/internal/logging"
	"github.com/sensorline/levelquote/internal/migrations"
	"github.com/sensorline/levelquote/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the level-sensor catalog (idempotent)",
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

		stats, err := seed.Run(database)
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		logging.Info("seed complete", zap.Int("inserts", stats.Inserts))
		return nil
	},
}
