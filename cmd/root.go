// -- cmd/root.go --
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/nova-bridge/internal/config"
	"github.com/xkilldash9x/nova-bridge/internal/observability"
)

var (
	cfgFile string
	// appConfig is populated by the root PersistentPreRunE before any
	// subcommand runs.
	appConfig *config.Config
)

// newRootCmd builds the root command with all subcommands attached. Tests use
// this to get a pristine instance.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nova-bridge",
		Short: "nova-bridge translates one JSON request into Nova Act browser automation.",
		// Version is dynamically set at build time. See cmd/version.go.
		Version: Version,
		// stdout is reserved for the result document; cobra must not write
		// usage or errors there on failure.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A local .env may carry NOVA_ACT_API_KEY; its absence is fine.
			_ = godotenv.Load()

			cfg, err := config.Load(cfgFile)
			if err != nil {
				// Fall back to a default logger so the failure is visible.
				observability.InitializeLogger(config.Default().Logger)
				return err
			}
			appConfig = cfg

			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("Starting nova-bridge", zap.String("version", Version))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	rootCmd.AddCommand(newRunCmd())
	return rootCmd
}

// Execute runs the CLI. It installs a signal-aware context so an interrupted
// invocation still releases its automation session, and maps any command
// error to exit code 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer observability.Sync()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("Command execution failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		observability.Sync()
		os.Exit(1)
	}
}
