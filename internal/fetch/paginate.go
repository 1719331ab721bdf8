package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Getter abstracts the page client for the pagination loop.
type Getter interface {
	Get(ctx context.Context, rawURL string) (Page, error)
}

// Paginator walks a 1-indexed JSON list endpoint until a page decodes to an
// empty list. A blocking or failed response never aborts the walk: the
// paginator logs, sleeps the cooldown and retries the identical request, by
// default indefinitely. MaxRetries > 0 puts a ceiling on that loop.
type Paginator struct {
	client     Getter
	cooldown   time.Duration
	maxRetries int
	logger     *zap.Logger
	obs        Observers
}

// Observers carries optional callbacks fired during pagination; either field
// may be nil.
type Observers struct {
	// Page fires after each successfully fetched and decoded API page.
	Page func()
	// Blocked fires once per cooldown cycle.
	Blocked func()
}

// NewPaginator builds a Paginator. maxRetries == 0 means retry forever.
func NewPaginator(client Getter, cooldown time.Duration, maxRetries int, logger *zap.Logger, obs Observers) *Paginator {
	return &Paginator{
		client:     client,
		cooldown:   cooldown,
		maxRetries: maxRetries,
		logger:     logger,
		obs:        obs,
	}
}

// Each fetches endpoint?page=N for N = 1.. and invokes fn for every element
// of the named JSON array field, stopping after the first page whose list is
// empty. An error from fn stops the walk immediately.
func (p *Paginator) Each(ctx context.Context, endpoint, field string, fn func(item json.RawMessage) error) error {
	for page := 1; ; page++ {
		items, err := p.fetchPage(ctx, endpoint, field, page)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for _, item := range items {
			if err := fn(item); err != nil {
				return err
			}
		}
	}
}

func (p *Paginator) fetchPage(ctx context.Context, endpoint, field string, page int) ([]json.RawMessage, error) {
	pageURL := fmt.Sprintf("%s?page=%d", endpoint, page)
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := p.client.Get(ctx, pageURL)
		if err == nil {
			items, decodeErr := decodeListField(result.Body, field)
			if decodeErr != nil {
				return nil, decodeErr
			}
			if p.obs.Page != nil {
				p.obs.Page()
			}
			return items, nil
		}

		if p.maxRetries > 0 && attempt+1 >= p.maxRetries {
			return nil, fmt.Errorf("fetch %s: retries exhausted: %w", pageURL, err)
		}

		p.logger.Warn("blocked fetching API page, cooling down",
			zap.String("url", pageURL),
			zap.Int("status", result.StatusCode),
			zap.Duration("cooldown", p.cooldown),
			zap.Error(err),
		)
		if p.obs.Blocked != nil {
			p.obs.Blocked()
		}
		if err := Pause(ctx, p.cooldown); err != nil {
			return nil, err
		}
	}
}

func decodeListField(body []byte, field string) ([]json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode response envelope: %w", err)
	}
	raw, ok := envelope[field]
	if !ok {
		return nil, fmt.Errorf("response has no %q field", field)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %q list: %w", field, err)
	}
	return items, nil
}

// Pause sleeps for the given duration, returning early with the context
// error when the context finishes first.
func Pause(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
