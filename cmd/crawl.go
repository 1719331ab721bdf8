package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shopcrawl/shopcrawl/internal/config"
	"github.com/shopcrawl/shopcrawl/internal/crawler"
	"github.com/shopcrawl/shopcrawl/internal/fetch"
	"github.com/shopcrawl/shopcrawl/internal/logging"
	"github.com/shopcrawl/shopcrawl/internal/metrics"
	"github.com/shopcrawl/shopcrawl/internal/sink"
)

// newCrawlCmd creates and configures the 'crawl' subcommand.
func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawls the storefront catalog and emits variant rows",
		Long: `Walks every collection of the configured storefront, fetches each
product's detail page and writes one row per variant to the configured
sinks. The crawl is sequential and paced; a blocked response triggers a
cooldown and the request is retried.`,

		RunE: runCrawlCommand,
	}
	return cmd
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		srv := metrics.NewServer(cfg.Metrics.Addr, m, logger)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", zap.Error(err))
			}
		}()
	}

	rows, err := buildRowSink(ctx, cfg, runID)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			logger.Warn("failed to close row sink", zap.Error(cerr))
		}
	}()

	var snapshots *sink.SnapshotStore
	if cfg.Output.SnapshotDir != "" {
		snapshots, err = sink.NewSnapshotStore(cfg.Output.SnapshotDir, logger)
		if err != nil {
			return fmt.Errorf("init snapshot store: %w", err)
		}
	}

	client := fetch.NewClient(cfg.Crawler.UserAgent, cfg.RequestTimeout(), logger)
	engine := crawler.New(crawler.Config{
		BaseURL:         cfg.Crawler.BaseURL,
		Collections:     cfg.Crawler.Collections,
		BlockCooldown:   cfg.BlockCooldown(),
		BlockMaxRetries: cfg.Crawler.BlockMaxRetries,
		ProductDelay:    cfg.ProductDelay(),
	}, client, rows, snapshots, m, logger)

	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run crawl: %w", err)
	}
	return nil
}

// buildRowSink assembles the CSV sink and, when a DSN is configured, fans
// rows out to Postgres as well.
func buildRowSink(ctx context.Context, cfg config.Config, runID string) (sink.RowSink, error) {
	csvSink, err := sink.NewCSVSink(cfg.Output.Path)
	if err != nil {
		return nil, fmt.Errorf("init csv sink: %w", err)
	}

	if cfg.DB.DSN == "" {
		return csvSink, nil
	}

	pgSink, err := sink.NewPostgresSink(ctx, cfg.DB.DSN, runID)
	if err != nil {
		csvSink.Close() //nolint:errcheck // nothing was written yet
		return nil, fmt.Errorf("init postgres sink: %w", err)
	}
	return sink.NewMulti(csvSink, pgSink), nil
}
