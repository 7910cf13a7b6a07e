package main

import (
	"log/slog"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/stadium-data-etl/internal/config"
	"github.com/couchcryptid/stadium-data-etl/internal/observability"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "stadium-etl",
	Short: "Stadium list ETL: scrape, geocode, write CSV",
	Long: "Extracts the stadium table from Wikipedia, enriches each row with coordinates, " +
		"and writes a timestamped CSV to blob storage. Stages run together (run, serve) " +
		"or one per process (extract, transform, load) sharing a handoff store.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c
		logger = observability.NewLogger(cfg)
		slog.SetDefault(logger)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
