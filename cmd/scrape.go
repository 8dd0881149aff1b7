package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newScrapeCmd creates the 'scrape' subcommand, which runs the full pipeline.
func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Scrape every source and publish the award dataset",
		Long: `Fetches every configured source (headless first, plain HTTP as a
fallback), extracts and enriches winners, merges them with the curated seed
and writes all artifacts to the output store. An interrupted run still writes
whatever was gathered.`,
		RunE: runScrape,
	}
}

func runScrape(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := appInstance.Pipeline(ctx)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	summary, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		appInstance.Logger().Warn("scrape interrupted, partial dataset written",
			zap.Int("records", summary.Final))
		return nil
	}
	appInstance.Logger().Info("scrape command finished",
		zap.String("run_id", summary.RunID),
		zap.Int("records", summary.Final),
		zap.Strings("artifacts", summary.Artifacts),
	)
	return nil
}
