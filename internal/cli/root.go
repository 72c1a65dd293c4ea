// Package cli holds the management commands of the site backend.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"codista-cms/internal/app"
	"codista-cms/internal/config"
	"codista-cms/pkg/logger"
	"codista-cms/pkg/validator"
)

// runtime carries what every subcommand needs: the loaded configuration and
// the flags shared by all of them.
type runtime struct {
	env string
	cfg *config.Config
}

func (r *runtime) load(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	if env := strings.ToLower(strings.TrimSpace(r.env)); env != "" {
		cfg.Environment = env
	}

	switch cfg.Environment {
	case config.EnvironmentDevelopment, config.EnvironmentStaging, config.EnvironmentProduction:
	default:
		return fmt.Errorf("unknown environment %q", cfg.Environment)
	}

	logger.Init(cfg.LogLevel)
	validator.Init()

	r.cfg = cfg
	return nil
}

// withApp opens the application for a single command and closes it afterwards.
func (r *runtime) withApp(fn func(*app.Application) error) error {
	application, err := app.New(r.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Shutdown(context.Background()); err != nil {
			logger.Error(err, "Failed to close application", nil)
		}
	}()

	return fn(application)
}

func NewRootCommand() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:               "cms",
		Short:             "Codista website backend",
		Long:              `Management commands and HTTP server of the bilingual Codista website.`,
		SilenceUsage:      true,
		PersistentPreRunE: rt.load,
	}

	root.PersistentFlags().StringVarP(&rt.env, "env", "e", "", "Environment (development, staging, production), overrides ENVIRONMENT")

	root.AddCommand(
		newMigrateCommand(rt),
		newResetCommand(rt),
		newSetupCommand(rt),
		newCreateUsersCommand(rt),
		newSetupPageTreeCommand(rt),
		newServeCommand(rt),
	)

	return root
}
