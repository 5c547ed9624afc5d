// Package cmd provides the CLI commands for levelquote.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sensorline/levelquote/internal/config"
	"github.com/sensorline/levelquote/internal/logging"
)

var (
	cfg     config.Config
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "levelquote",
	Short: "Quoting tool for industrial level-sensor products",
	Long: `levelquote prices configurable level-sensor products: it serves the
configuration and pricing engine over HTTP and manages the product catalog
database.

Examples:
  levelquote migrate
  levelquote seed
  levelquote serve`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func initConfig() {
	cfg = config.Load()
	if verbose {
		cfg.LogLevel = "debug"
	}
	_ = logging.Initialize(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
}
