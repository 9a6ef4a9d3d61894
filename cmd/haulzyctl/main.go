package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/haulzy/haulzy-backend/config"
	"github.com/haulzy/haulzy-backend/internal/bootstrap"
	"github.com/haulzy/haulzy-backend/internal/logging"
)

// actor is recorded in the activity log for every change made here.
const actor = "haulzyctl"

var (
	verbose bool
	timeout time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "haulzyctl",
	Short: "Operator tasks for the Haulzy backend",
	Long: `haulzyctl runs one-off operator tasks against the same store,
identity provider and activity database the API uses.

Configuration is read the same way as the API: .env, config.yaml under
CONFIG_PATH, then environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		var err error
		logger, err = logging.New("development", level)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall deadline for the command")

	rootCmd.AddCommand(makeAdminCmd, checkAdminCmd, snapshotCmd)
}

// withServices opens the configured backends for the life of fn.
func withServices(cmd *cobra.Command, fn func(ctx context.Context, s *bootstrap.Services) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backends, err := bootstrap.OpenBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := backends.Close(); err != nil {
			logger.Warn("closing backends", zap.Error(err))
		}
	}()

	return fn(ctx, bootstrap.NewServices(cfg, backends, logger))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
