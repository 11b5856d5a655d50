package market

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

const defaultScrapeURL = "https://finance.yahoo.com/topic/latest-news/"

// BrowserCollector scrapes headlines from a public finance news page with a
// headless browser. It is a last resort for runs without a usable FMP feed.
type BrowserCollector struct {
	sourceURL string
	logger    *slog.Logger
}

func NewBrowserCollector(logger *slog.Logger) *BrowserCollector {
	return &BrowserCollector{sourceURL: defaultScrapeURL, logger: logger}
}

// Headlines loads the source page and extracts headline text.
func (b *BrowserCollector) Headlines(ctx context.Context) ([]string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if bin := findChromeBinary(); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, 45*time.Second)
	defer cancelTimeout()

	var texts []string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(b.sourceURL),
		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(`Array.from(document.querySelectorAll('h3')).map(e => e.textContent)`, &texts),
	)
	if err != nil {
		return nil, fmt.Errorf("market: scrape %s: %w", b.sourceURL, err)
	}

	headlines := cleanHeadlines(texts)
	b.logger.Info("market: scraped headlines", "source", b.sourceURL, "count", len(headlines))
	return headlines, nil
}

// cleanHeadlines trims, drops navigation stubs, and dedupes scraped text.
func cleanHeadlines(texts []string) []string {
	cleaned := make([]string, 0, len(texts))
	for _, t := range texts {
		t = strings.Join(strings.Fields(t), " ")
		if len(t) < 20 {
			continue
		}
		cleaned = append(cleaned, t)
	}
	cleaned = dedupe(cleaned)
	if len(cleaned) > 40 {
		cleaned = cleaned[:40]
	}
	return cleaned
}

func findChromeBinary() string {
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
