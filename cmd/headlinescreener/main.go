// Package main implements the headlinescreener CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"HeadlineScreener/internal/app"
	"HeadlineScreener/internal/config"
	"HeadlineScreener/internal/logging"
)

var (
	// configPath overrides HEADLINE_SCREENER_CONFIG
	configPath string
	// siteName restricts a run to one configured site
	siteName string
	version  = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "headlinescreener",
	Short: "Screen industry news headlines for decarbonisation projects",
	Long: `headlinescreener pulls recent headlines from configured feeds, discards
irrelevant ones with yes/no questions, extracts project details and
writes the Stage 1, Stage 2, Irrelevant and All Articles tables.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config file")
	runCmd.Flags().StringVar(&siteName, "site", "", "screen only this site")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}

// runCmd performs one screening pass
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Screen every configured site once",
	Long: `Screen every configured site once and exit.

Examples:
  # Screen all sites
  headlinescreener run --config config.yaml

  # Screen a single site
  headlinescreener run --config config.yaml --site steel-news`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
			return a.Run(ctx, siteName)
		})
	},
}

// serveCmd runs on the cron schedule
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run on the configured cron schedule and expose metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.Application) error {
			return a.Serve(ctx)
		})
	},
}

func withApp(parent context.Context, fn func(context.Context, *app.Application) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close application", "error", err)
		}
	}()

	if err := fn(ctx, application); err != nil {
		logger.Error("application stopped", "error", err)
		return err
	}
	return nil
}
