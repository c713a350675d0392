// Package cli provides the adminctl command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rpattn/adminkit/internal/admin"
	"github.com/rpattn/adminkit/internal/config"
	"github.com/rpattn/adminkit/internal/logging"
)

// Version is set at build time.
var Version = "0.1.0"

// appKey is used to store the loaded app in the command context.
type appKey struct{}

// App is what every command works with once configuration is loaded.
type App struct {
	Config   config.Config
	Registry *admin.Registry
	Logger   *zap.Logger
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	var cfgPath string

	rootCmd := &cobra.Command{
		Use:     "adminctl",
		Short:   "Browse and edit admin resources from the terminal",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging)
			if err != nil {
				return err
			}
			registry, err := admin.FromConfig(cfg, logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, appKey{}, &App{Config: cfg, Registry: registry, Logger: logger}))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if app, err := appFrom(cmd); err == nil {
				_ = app.Logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config file or directory containing config.yaml")

	rootCmd.AddCommand(newResourcesCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newWizardCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newImportCommand())

	return rootCmd
}

func appFrom(cmd *cobra.Command) (*App, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New("command has no context")
	}
	app, ok := ctx.Value(appKey{}).(*App)
	if !ok {
		return nil, fmt.Errorf("%s: configuration not loaded", cmd.Name())
	}
	return app, nil
}
