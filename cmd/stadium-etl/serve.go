package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/stadium-data-etl/internal/adapter/http"
	"github.com/couchcryptid/stadium-data-etl/internal/pipeline"
)

var serveRunOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve health, metrics and run trigger endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		launcher := pipeline.NewLauncher(ctx, env.Pipeline, logger)
		srv := httpadapter.NewServer(cfg.HTTPAddr, env.Pipeline, launcher, logger)

		// Start HTTP server.
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
				stop()
			}
		}()

		if serveRunOnStart {
			if runID, err := launcher.Start(""); err != nil {
				logger.Error("initial run not started", "error", err)
			} else {
				logger.Info("initial run started", "run_id", runID)
			}
		}

		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		launcher.Wait()

		logger.Info("shutdown complete")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveRunOnStart, "run-on-start", false, "start a run as soon as the server is up")
	rootCmd.AddCommand(serveCmd)
}
