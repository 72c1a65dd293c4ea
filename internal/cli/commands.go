package cli

import (
	"github.com/spf13/cobra"

	"codista-cms/internal/app"
	"codista-cms/internal/database"
	"codista-cms/pkg/logger"
)

func newMigrateCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema, the page tree root and the default site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withApp(func(a *app.Application) error {
				return a.Migrate()
			})
		},
	}
}

func newResetCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Recreate the database and seed it (development only)",
		Long: `Drop and recreate the configured database, run the migrations, set up the
site and its users and seed the page tree. Refuses to run outside development.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Recreate(cmd.Context(), rt.cfg); err != nil {
				return err
			}

			return rt.withApp(func(a *app.Application) error {
				if err := a.Migrate(); err != nil {
					return err
				}
				if err := a.Setup(); err != nil {
					return err
				}
				if err := a.SetupPageTree(); err != nil {
					return err
				}
				logger.Info("Database reset completed", map[string]interface{}{
					"database": rt.cfg.DBName,
				})
				return nil
			})
		},
	}
}

func newSetupCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Set the site domain for the environment and create the project users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withApp(func(a *app.Application) error {
				return a.Setup()
			})
		},
	}
}

func newCreateUsersCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "create-users",
		Short: "Create the inactive admin account and the project superusers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withApp(func(a *app.Application) error {
				return a.CreateUsers()
			})
		},
	}
}

func newSetupPageTreeCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "setup-page-tree",
		Short: "Seed the bilingual page tree and its menus",
		Long: `Create the language redirection page, both language homes and every content
page, link each German page to its English translation and build the menus.
Fails when the database already holds pages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withApp(func(a *app.Application) error {
				return a.SetupPageTree()
			})
		},
	}
}
