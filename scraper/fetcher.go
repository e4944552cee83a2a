package scraper

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"aoe2-units/config"
	"aoe2-units/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// Fetcher retrieves a page and parses it into a goquery document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// StatusError is returned when a server answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// NewFetcher returns the fetcher selected by cfg.FetchMode and a function
// releasing its resources.
func NewFetcher(cfg *config.Config, logger *utils.Logger) (Fetcher, func()) {
	if cfg.FetchMode == config.FetchModeBrowser {
		f := NewBrowserFetcher(cfg, logger)
		return f, f.Close
	}
	return NewHTTPFetcher(cfg, logger), func() {}
}

// HTTPFetcher fetches static pages with resty
type HTTPFetcher struct {
	client      *resty.Client
	logger      *utils.Logger
	rateLimiter *utils.RateLimiter
	maxRetries  int
}

// NewHTTPFetcher creates a new HTTPFetcher
func NewHTTPFetcher(cfg *config.Config, logger *utils.Logger) *HTTPFetcher {
	client := resty.New().
		SetTimeout(time.Duration(cfg.RequestTimeoutMs)*time.Millisecond).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html")

	return &HTTPFetcher{
		client:      client,
		logger:      logger,
		rateLimiter: utils.NewRateLimiter(cfg.RateLimitDelay),
		maxRetries:  cfg.MaxRetries,
	}
}

// Fetch GETs url and parses the body. Transport errors and 5xx responses are
// retried; other non-2xx responses fail immediately with a *StatusError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	var body []byte
	err := utils.RetryWithBackoff(ctx, f.maxRetries, func() error {
		if err := f.rateLimiter.Wait(ctx); err != nil {
			return utils.Permanent(err)
		}

		f.logger.Debug("GET %s", url)
		res, err := f.client.R().
			SetContext(ctx).
			Get(url)
		if err != nil {
			if ctx.Err() != nil {
				return utils.Permanent(fmt.Errorf("GET %s: %w", url, ctx.Err()))
			}
			return fmt.Errorf("GET %s: %w", url, err)
		}
		if res.IsError() {
			statusErr := &StatusError{URL: url, StatusCode: res.StatusCode()}
			if res.StatusCode() < 500 {
				return utils.Permanent(statusErr)
			}
			return statusErr
		}

		body = res.Body()
		return nil
	}, f.logger)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}
	return doc, nil
}
