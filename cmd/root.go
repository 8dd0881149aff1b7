package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/awards-crawler/internal/app"
	"github.com/JakeFAU/awards-crawler/internal/config"
	"github.com/JakeFAU/awards-crawler/internal/logging"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// options are the persistent flags shared by every subcommand.
type options struct {
	configFile  string
	concurrency int
	outputDir   string
	logLevel    string
}

// newApp is the application factory. It's a variable so tests can replace it.
var newApp = app.New

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "awards-crawler",
		Short: "Scrapes Australian Web Awards winners into a publishable dataset.",
		Long: `awards-crawler visits every winners page of the Australian Web Awards,
extracts and enriches the winning entries, merges them with a curated seed
and writes the dataset as TypeScript, JSON, JSON-LD and a blog post.`,
		SilenceUsage: true,

		// Builds the App after config is loaded but before the subcommand runs.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("logger init failed: %w", err)
			}
			zap.ReplaceGlobals(logger)

			appInstance, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(*app.App); ok && appInstance != nil {
				appInstance.Close()
				_ = appInstance.Logger().Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (YAML, TOML or JSON)")
	flags.IntVar(&opts.concurrency, "concurrency", 0, "sources processed in parallel (overrides pipeline.concurrency)")
	flags.StringVar(&opts.outputDir, "output-dir", "", "directory for local artifacts (overrides output.dir)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (overrides logging.level)")

	cmd.AddCommand(newScrapeCmd(), newCategoriesCmd(), newServeCmd())
	return cmd
}

// loadConfig reads configuration and applies any flags the user set.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("concurrency") {
		cfg.Pipeline.Concurrency = opts.concurrency
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir = opts.outputDir
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func resolveApp(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, errors.New("application not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "awards-crawler: %v\n", err)
		os.Exit(1)
	}
}
