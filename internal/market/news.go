package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// maxHeadlines caps what we hand to the model; it filters further.
const maxHeadlines = 300

// newsFeeds are the FMP latest-news endpoints polled for every briefing.
var newsFeeds = []struct {
	name  string
	path  string
	limit int
}{
	{"stock_news", "/stable/news/stock-latest", 100},
	{"forex_news", "/stable/news/forex-latest", 20},
	{"crypto_news", "/stable/news/crypto-latest", 20},
	{"general_news", "/stable/news/general-latest", 100},
}

type newsItem struct {
	Title string `json:"title"`
}

// Headlines fetches financial and macroeconomic headlines from every news
// feed, deduplicates them preserving order, and caps the result. A feed
// failure is logged and skipped; only a missing API key is an error.
func (c *Client) Headlines(ctx context.Context) ([]string, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	var all []string
	for _, feed := range newsFeeds {
		query := url.Values{}
		query.Set("page", "0")
		query.Set("limit", strconv.Itoa(feed.limit))

		var raw json.RawMessage
		if err := c.getJSON(ctx, feed.path, query, &raw); err != nil {
			c.logger.Warn("market: news feed failed", "feed", feed.name, "err", err)
			continue
		}

		titles, err := parseHeadlines(raw)
		if err != nil {
			c.logger.Warn("market: news feed returned unexpected shape", "feed", feed.name, "err", err)
			continue
		}
		c.logger.Debug("market: fetched headlines", "feed", feed.name, "count", len(titles))
		all = append(all, titles...)
	}

	unique := dedupe(all)
	c.logger.Info("market: headlines collected", "total", len(unique))
	if len(unique) > maxHeadlines {
		unique = unique[:maxHeadlines]
	}
	return unique, nil
}

// parseHeadlines extracts titles from a news payload. Feeds return either a
// bare array or an object wrapping the array in a "data" key.
func parseHeadlines(raw json.RawMessage) ([]string, error) {
	var items []newsItem
	if err := json.Unmarshal(raw, &items); err == nil {
		return titles(items), nil
	}

	var wrapper struct {
		Data []newsItem `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.Data != nil {
		return titles(wrapper.Data), nil
	}

	return nil, fmt.Errorf("neither an array nor a data-wrapped object")
}

func titles(items []newsItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it.Title != "" {
			out = append(out, it.Title)
		}
	}
	return out
}

// dedupe removes duplicates while preserving first-seen order.
func dedupe(headlines []string) []string {
	seen := make(map[string]struct{}, len(headlines))
	unique := make([]string, 0, len(headlines))
	for _, h := range headlines {
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		unique = append(unique, h)
	}
	return unique
}
