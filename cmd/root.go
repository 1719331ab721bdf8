// Package cmd defines and implements the CLI commands for the shopcrawl executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shopcrawl/shopcrawl/internal/config"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shopcrawl",
		Short: "A storefront catalog crawler.",
		Long: `shopcrawl walks a storefront's collection and product JSON endpoints,
enriches every product from its detail page and streams one deduplicated
row per variant to CSV and, optionally, Postgres.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default uses env and built-in defaults)")
	cmd.PersistentFlags().String("base-url", "", "storefront base URL (overrides crawler.base_url)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newCollectionsCmd())

	return cmd
}

// loadConfig resolves configuration from the --config file, environment and
// command-line overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	base, _ := cmd.Flags().GetString("base-url")
	cfg, err := config.Load(cfgFile, func(c *config.Config) {
		if base != "" {
			c.Crawler.BaseURL = base
		}
	})
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
