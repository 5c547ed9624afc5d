package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sensorline/levelquote/internal/db"
	"github.com/sensorline/levelquote/internal/logging"
	"github.com/sensorline/levelquote/internal/migrations"
	"github.com/sensorline/levelquote/internal/seed"
	"github.com/sensorline/levelquote/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the quoting API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logging.Sync()

		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer database.Close()

		if cfg.IsDev() {
			if err := migrations.Up(database, cfg.MigrationsDir); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			stats, err := seed.Run(database)
			if err != nil {
				return fmt.Errorf("seed catalog: %w", err)
			}
			if stats.Inserts > 0 {
				logging.Info("seeded catalog", zap.Int("inserts", stats.Inserts))
			}
		}

		srv := server.New(database)
		addr := ":" + cfg.Port
		logging.Info("listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, srv.Router()); err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	},
}
