// Package crawler implements the crawl orchestrator: it walks the catalog's
// collections and products, enriches each product from its detail page and
// streams deduplicated variant rows to the configured sinks.
package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shopcrawl/shopcrawl/internal/catalog"
	"github.com/shopcrawl/shopcrawl/internal/extract"
	"github.com/shopcrawl/shopcrawl/internal/fetch"
	"github.com/shopcrawl/shopcrawl/internal/metrics"
	"github.com/shopcrawl/shopcrawl/internal/sink"
)

// Config holds the settings for one crawl run.
type Config struct {
	BaseURL         string
	Collections     []string
	BlockCooldown   time.Duration
	BlockMaxRetries int
	ProductDelay    time.Duration
}

// Engine drives the crawl. Execution is strictly sequential: one outstanding
// HTTP request at a time, pacing and cooldown sleeps in between.
type Engine struct {
	cfg       Config
	paginator *fetch.Paginator
	client    fetch.Getter
	rows      sink.RowSink
	snapshots *sink.SnapshotStore
	metrics   *metrics.Metrics
	logger    *zap.Logger
	seen      *seenSet
	allow     map[string]struct{}
}

// New wires an Engine. snapshots and m may be nil.
func New(
	cfg Config,
	client fetch.Getter,
	rows sink.RowSink,
	snapshots *sink.SnapshotStore,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Engine {
	cfg.BaseURL = NormalizeBaseURL(cfg.BaseURL)

	var allow map[string]struct{}
	if len(cfg.Collections) > 0 {
		allow = make(map[string]struct{}, len(cfg.Collections))
		for _, handle := range cfg.Collections {
			allow[handle] = struct{}{}
		}
	}

	paginator := fetch.NewPaginator(client, cfg.BlockCooldown, cfg.BlockMaxRetries, logger, fetch.Observers{
		Page:    m.IncAPIPages,
		Blocked: m.IncBlockedRetries,
	})

	return &Engine{
		cfg:       cfg,
		paginator: paginator,
		client:    client,
		rows:      rows,
		snapshots: snapshots,
		metrics:   m,
		logger:    logger,
		seen:      newSeenSet(),
		allow:     allow,
	}
}

// Collections streams every collection of the catalog in pagination order.
func (e *Engine) Collections(ctx context.Context, fn func(catalog.Collection) error) error {
	endpoint := e.cfg.BaseURL + "/collections.json"
	return e.paginator.Each(ctx, endpoint, "collections", func(item json.RawMessage) error {
		var col catalog.Collection
		if err := json.Unmarshal(item, &col); err != nil {
			return fmt.Errorf("decode collection: %w", err)
		}
		return fn(col)
	})
}

// Run executes the full crawl to natural completion.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.rows.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	err := e.Collections(ctx, func(col catalog.Collection) error {
		if !e.allowed(col.Handle) {
			e.logger.Debug("skipping collection not on allow-list", zap.String("handle", col.Handle))
			return nil
		}
		e.logger.Info("processing collection",
			zap.String("handle", col.Handle),
			zap.String("title", col.Title),
		)
		return e.crawlCollection(ctx, col)
	})
	if err != nil {
		return err
	}

	e.logger.Info("crawl finished", zap.Int("unique_variants", e.seen.Len()))
	return nil
}

// SeenCount reports how many unique variant rows have been emitted so far.
func (e *Engine) SeenCount() int {
	return e.seen.Len()
}

func (e *Engine) allowed(handle string) bool {
	if e.allow == nil {
		return true
	}
	_, ok := e.allow[handle]
	return ok
}

func (e *Engine) crawlCollection(ctx context.Context, col catalog.Collection) error {
	endpoint := fmt.Sprintf("%s/collections/%s/products.json", e.cfg.BaseURL, col.Handle)
	return e.paginator.Each(ctx, endpoint, "products", func(item json.RawMessage) error {
		var product catalog.Product
		if err := json.Unmarshal(item, &product); err != nil {
			return fmt.Errorf("decode product: %w", err)
		}
		return e.processProduct(ctx, col, product)
	})
}

func (e *Engine) processProduct(ctx context.Context, col catalog.Collection, product catalog.Product) error {
	productURL := e.cfg.BaseURL + "/products/" + product.Handle
	e.logger.Info("scraping product",
		zap.String("collection", col.Handle),
		zap.String("title", product.Title),
	)

	content := e.extractContent(ctx, product.Handle, productURL)
	e.metrics.IncProducts()

	for _, variant := range product.Variants {
		if err := e.emitVariant(ctx, col, product, variant, productURL, content); err != nil {
			return err
		}
	}

	// Bound the request rate to the origin, independent of block backoff.
	return fetch.Pause(ctx, e.cfg.ProductDelay)
}

// extractContent fetches the detail page and runs the extraction pipeline.
// Any fetch failure is logged and treated as an empty document; the product
// is never skipped.
func (e *Engine) extractContent(ctx context.Context, handle, productURL string) catalog.ExtractedContent {
	page, err := e.client.Get(ctx, productURL)
	if err != nil {
		e.logger.Warn("detail page fetch failed",
			zap.String("url", productURL),
			zap.Int("status", page.StatusCode),
			zap.Error(err),
		)
		e.metrics.IncDetailFailures()
		return catalog.ExtractedContent{}
	}
	if e.snapshots != nil {
		e.snapshots.Save(handle, page.Body)
	}

	content := extract.Content(string(page.Body))
	e.logger.Debug("extraction results",
		zap.String("handle", handle),
		zap.Int("key_ingredients", len(content.KeyIngredients)),
		zap.Bool("all_ingredients", content.AllIngredients != ""),
		zap.Bool("key_information", content.KeyInformation != ""),
		zap.Bool("how_to_use", content.HowToUse != ""),
	)
	return content
}

func (e *Engine) emitVariant(
	ctx context.Context,
	col catalog.Collection,
	product catalog.Product,
	variant catalog.Variant,
	productURL string,
	content catalog.ExtractedContent,
) error {
	key := catalog.IdentityKey(product.Handle, variant.ID)
	if !e.seen.MarkIfNew(key) {
		e.metrics.IncDuplicates()
		return nil
	}

	row := catalog.Row{
		Code:           variant.SKU,
		Collection:     col.Title,
		Category:       product.ProductType,
		Name:           product.Title,
		VariantName:    variant.DisplayName(),
		Price:          variant.Price,
		InStock:        variant.StockLabel(),
		URL:            productURL,
		ImageURL:       product.ImageFor(variant.ID),
		Body:           extract.Normalize(product.BodyHTML),
		KeyInformation: content.KeyInformation,
		HowToUse:       content.HowToUse,
		KeyIngredients: content.KeyIngredients,
		AllIngredients: content.AllIngredients,
	}
	if err := e.rows.WriteRow(ctx, row); err != nil {
		return fmt.Errorf("write row for %s: %w", key, err)
	}
	e.metrics.IncRows()
	return nil
}
