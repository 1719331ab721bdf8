// Package fetch provides the HTTP client used for both catalog API pages and
// product detail pages, plus the 1-indexed pagination loop with
// blocked-request backoff.
package fetch

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Page is the raw result of a single fetch.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Client fetches pages through a Colly collector carrying a fixed
// browser-like user agent. Every request runs on its own collector clone, so
// the client is safe to reuse across the whole crawl.
type Client struct {
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// NewClient constructs a Client with the given user agent and timeout.
func NewClient(userAgent string, timeout time.Duration, logger *zap.Logger) *Client {
	base := colly.NewCollector(
		colly.UserAgent(userAgent),
	)
	// The backoff loop re-requests identical URLs.
	base.AllowURLRevisit = true
	base.IgnoreRobotsTxt = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(timeout)

	return &Client{
		baseCollector: base,
		logger:        logger,
	}
}

type fetchResult struct {
	page Page
	err  error
}

// Get retrieves a single page. Non-2xx responses come back as an error with
// the status code preserved on the returned Page.
func (c *Client) Get(ctx context.Context, rawURL string) (Page, error) {
	collector := c.baseCollector.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		send(fetchResult{page: Page{
			URL:        rawURL,
			StatusCode: r.StatusCode,
			Body:       append([]byte{}, r.Body...),
		}})
	})

	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		res := fetchResult{err: err}
		if r != nil {
			res.page = Page{URL: rawURL, StatusCode: r.StatusCode}
		}
		send(res)
	})

	if err := collector.Visit(rawURL); err != nil {
		return Page{URL: rawURL}, err
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return Page{URL: rawURL}, err
		}
		return res.page, res.err
	default:
		return Page{URL: rawURL}, errors.New("fetch produced no result")
	}
}
