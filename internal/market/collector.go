package market

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/marketbrief/internal/model"
)

// HeadlineScraper is the fallback headline source used when the API
// returns nothing. Implemented by BrowserCollector.
type HeadlineScraper interface {
	Headlines(ctx context.Context) ([]string, error)
}

// Collector gathers all briefing sections concurrently.
type Collector struct {
	client  *Client
	scraper HeadlineScraper // may be nil
	logger  *slog.Logger
}

func NewCollector(client *Client, scraper HeadlineScraper, logger *slog.Logger) *Collector {
	return &Collector{client: client, scraper: scraper, logger: logger}
}

// Collect fetches headlines, yields, benchmarks and movers in parallel.
// Individual failures degrade to empty sections; the snapshot is always
// returned so the caller can apply its own circuit breaker.
func (c *Collector) Collect(ctx context.Context) *model.Snapshot {
	snap := &model.Snapshot{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		headlines, err := c.client.Headlines(gctx)
		if err != nil {
			c.logger.Warn("collect: headlines failed", "err", err)
			return nil
		}
		snap.Headlines = headlines
		return nil
	})
	g.Go(func() error {
		yields, err := c.client.Yields(gctx)
		if err != nil {
			c.logger.Warn("collect: yields failed", "err", err)
			return nil
		}
		snap.Yields = yields
		return nil
	})
	g.Go(func() error {
		benchmarks, err := c.client.Benchmarks(gctx)
		if err != nil {
			c.logger.Warn("collect: benchmarks failed", "err", err)
			return nil
		}
		snap.Benchmarks = benchmarks
		return nil
	})
	g.Go(func() error {
		movers, err := c.client.Movers(gctx)
		if err != nil {
			c.logger.Warn("collect: movers failed", "err", err)
			return nil
		}
		snap.Movers = movers
		return nil
	})
	_ = g.Wait() // workers never return errors, they degrade

	if len(snap.Headlines) == 0 && c.scraper != nil {
		c.logger.Info("collect: no API headlines, trying browser fallback")
		headlines, err := c.scraper.Headlines(ctx)
		if err != nil {
			c.logger.Warn("collect: browser fallback failed", "err", err)
		} else {
			snap.Headlines = headlines
		}
	}

	c.logger.Info("collect: snapshot ready",
		"headlines", len(snap.Headlines),
		"yields", len(snap.Yields),
		"benchmarks", len(snap.Benchmarks),
		"movers", len(snap.Movers),
	)
	return snap
}
