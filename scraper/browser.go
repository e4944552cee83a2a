package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aoe2-units/config"
	"aoe2-units/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders pages in headless Chrome. It is slower than
// HTTPFetcher but gets past pages that need JavaScript or bot checks.
// Status codes are not visible here; a missing wiki page simply has no tables.
type BrowserFetcher struct {
	cfg         *config.Config
	logger      *utils.Logger
	rateLimiter *utils.RateLimiter
	browserCtx  context.Context
	cancel      context.CancelFunc
}

// NewBrowserFetcher starts one browser that is shared by every Fetch call
func NewBrowserFetcher(cfg *config.Config, logger *utils.Logger) *BrowserFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("log-level", "3"), // suppress Chrome logs
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1280, 900),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	return &BrowserFetcher{
		cfg:         cfg,
		logger:      logger,
		rateLimiter: utils.NewRateLimiter(cfg.RateLimitDelay),
		browserCtx:  browserCtx,
		cancel: func() {
			cancelCtx()
			cancelAlloc()
		},
	}
}

// Fetch opens url in a new tab and parses the rendered document
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	var html string
	err := utils.RetryWithBackoff(ctx, f.cfg.MaxRetries, func() error {
		if err := f.rateLimiter.Wait(ctx); err != nil {
			return utils.Permanent(err)
		}

		tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
		defer cancelTab()
		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, time.Duration(f.cfg.RequestTimeoutMs)*time.Millisecond)
		defer cancelTimeout()
		stop := context.AfterFunc(ctx, cancelTab)
		defer stop()

		f.logger.Debug("Rendering %s", url)
		err := chromedp.Run(tabCtx,
			chromedp.Navigate(url),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		)
		if err != nil {
			if ctx.Err() != nil {
				return utils.Permanent(ctx.Err())
			}
			return fmt.Errorf("render %s: %w", url, err)
		}
		return nil
	}, f.logger)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}
	return doc, nil
}

// Close shuts the browser down
func (f *BrowserFetcher) Close() {
	f.cancel()
}
