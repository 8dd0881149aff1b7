package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newCategoriesCmd creates the 'categories' subcommand.
func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Collect the award category list without enrichment",
		Long: `Visits every source to discover category labels and writes only
awardCategories.ts. No analysis calls are made.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
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
			categories, err := p.Categories(ctx)
			if err != nil {
				return fmt.Errorf("collect categories: %w", err)
			}
			appInstance.Logger().Info("categories command finished", zap.Int("categories", len(categories)))
			for _, c := range categories {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}
