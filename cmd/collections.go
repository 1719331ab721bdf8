package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shopcrawl/shopcrawl/internal/catalog"
	"github.com/shopcrawl/shopcrawl/internal/crawler"
	"github.com/shopcrawl/shopcrawl/internal/fetch"
	"github.com/shopcrawl/shopcrawl/internal/logging"
)

// newCollectionsCmd creates the 'collections' subcommand, which lists the
// storefront's collection handles without crawling any product.
func newCollectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "Lists the storefront's collections",
		Long: `Pages through the storefront's collections endpoint and prints one
handle per line. Useful for building the crawler.collections allow-list.`,

		RunE: runCollectionsCommand,
	}
	return cmd
}

func runCollectionsCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := fetch.NewClient(cfg.Crawler.UserAgent, cfg.RequestTimeout(), logger)
	engine := crawler.New(crawler.Config{
		BaseURL:         cfg.Crawler.BaseURL,
		BlockCooldown:   cfg.BlockCooldown(),
		BlockMaxRetries: cfg.Crawler.BlockMaxRetries,
	}, client, nil, nil, nil, logger)

	err = engine.Collections(ctx, func(col catalog.Collection) error {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", col.Handle, col.Title)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("list collections: %w", err)
	}
	return nil
}
