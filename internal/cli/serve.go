package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"codista-cms/internal/app"
	"codista-cms/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(rt *runtime) *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  `Validate the page tree and serve page contexts, menus, health and metrics over HTTP.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.New(rt.cfg)
			if err != nil {
				return err
			}

			if autoMigrate {
				if rt.cfg.IsProduction() {
					logger.Warn("Auto-migration is enabled in production", nil)
				}
				if err := application.Migrate(); err != nil {
					_ = application.Shutdown(context.Background())
					return err
				}
			}

			return serve(cmd.Context(), application)
		},
	}

	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations before starting the server")

	return cmd
}

func serve(parent context.Context, application *app.Application) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Prepare(ctx); err != nil {
		_ = application.Shutdown(context.Background())
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := application.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(err, "Failed to start server", nil)
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...", nil)
	case runErr = <-serverErr:
		logger.Error(runErr, "Server error occurred, initiating shutdown", nil)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, "Server forced to shutdown", nil)
		return err
	}

	logger.Info("Server exited gracefully", nil)
	return runErr
}
