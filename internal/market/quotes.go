package market

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/marketbrief/internal/model"
)

// yieldSymbols maps treasury maturities to their index symbols.
var yieldSymbols = []struct {
	name   string
	symbol string
}{
	{"US 13W", "^IRX"},
	{"US 5Y", "^FVX"},
	{"US 10Y", "^TNX"},
	{"US 30Y", "^TYX"},
}

// benchmarkSymbols is the briefing's market overview universe: US and global
// indices, sector ETFs, commodities, currencies, crypto and fixed income.
var benchmarkSymbols = []string{
	// US major indices
	"^GSPC", "^DJI", "^IXIC", "^RUT", "^VIX", "SPY",
	// Global indices
	"^FTSE", "^N225", "^GDAXI", "^FCHI", "^HSI", "^AXJO", "^BVSP", "^MXX",
	// Sector ETFs
	"XLF", "XLK", "XLE", "XLV", "XLI", "XLP", "XLY", "XLU", "XLRE", "XLB",
	// Commodities
	"CL=F", "BZ=F", "NG=F", "GC=F", "SI=F", "HG=F", "PL=F", "PA=F", "ZC=F", "ZW=F", "ZS=F",
	// Currencies
	"EURUSD=X", "GBPUSD=X", "USDJPY=X", "USDCAD=X", "AUDUSD=X",
	"USDCHF=X", "NZDUSD=X", "USDSEK=X", "USDNOK=X", "DX-Y.NYB",
	// Crypto
	"BTC-USD", "ETH-USD", "ADA-USD", "SOL-USD",
	// Bonds and fixed income
	"TLT", "IEF", "SHY", "HYG", "LQD", "EMB",
	// Alternative assets
	"REIT", "PDBC", "IAU", "SLV",
}

// Yields fetches the current treasury yield curve points.
func (c *Client) Yields(ctx context.Context) ([]model.Yield, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	yields := make([]model.Yield, 0, len(yieldSymbols))
	for _, ys := range yieldSymbols {
		var quotes []model.Quote
		if err := c.getJSON(ctx, "/api/v3/quote/"+ys.symbol, nil, &quotes); err != nil {
			c.logger.Warn("market: yield fetch failed", "symbol", ys.symbol, "err", err)
			continue
		}
		if len(quotes) == 0 {
			continue
		}
		yields = append(yields, model.Yield{Name: ys.name, Price: quotes[0].Price})
	}
	return yields, nil
}

// Benchmarks fetches the full benchmark universe in a single batched quote call.
func (c *Client) Benchmarks(ctx context.Context) ([]model.Quote, error) {
	var quotes []model.Quote
	path := "/api/v3/quote/" + strings.Join(benchmarkSymbols, ",")
	if err := c.getJSON(ctx, path, nil, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// Movers returns the day's biggest gainers and losers. It prefers ranking
// the most-active stocks by absolute move; when that endpoint fails it
// falls back to FMP's dedicated gainers and losers lists.
func (c *Client) Movers(ctx context.Context) ([]model.Mover, error) {
	var actives []model.Quote
	err := c.getJSON(ctx, "/api/v3/stock_market/actives", nil, &actives)
	if err == nil && len(actives) > 0 {
		if movers := rankMovers(actives); len(movers) > 0 {
			return movers, nil
		}
	}
	if err != nil {
		c.logger.Warn("market: actives fetch failed, falling back to gainers/losers", "err", err)
	}

	var movers []model.Mover
	lists := []struct {
		kind model.MoverKind
		path string
	}{
		{model.MoverGainer, "/api/v3/stock_market/gainers"},
		{model.MoverLoser, "/api/v3/stock_market/losers"},
	}
	for _, l := range lists {
		var quotes []model.Quote
		if err := c.getJSON(ctx, l.path, nil, &quotes); err != nil {
			return nil, err
		}
		if len(quotes) > 10 {
			quotes = quotes[:10]
		}
		for _, q := range quotes {
			movers = append(movers, toMover(q, l.kind))
		}
	}
	return movers, nil
}

// rankMovers sorts actives by absolute percentage change and splits the
// result into the top ten gainers and top ten losers.
func rankMovers(actives []model.Quote) []model.Mover {
	if len(actives) > 50 {
		actives = actives[:50]
	}
	sorted := make([]model.Quote, len(actives))
	copy(sorted, actives)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].ChangePct) > math.Abs(sorted[j].ChangePct)
	})

	var gainers, losers []model.Mover
	for _, q := range sorted {
		switch {
		case q.ChangePct > 0 && len(gainers) < 10:
			gainers = append(gainers, toMover(q, model.MoverGainer))
		case q.ChangePct < 0 && len(losers) < 10:
			losers = append(losers, toMover(q, model.MoverLoser))
		}
	}
	return append(gainers, losers...)
}

func toMover(q model.Quote, kind model.MoverKind) model.Mover {
	return model.Mover{
		Symbol:    q.Symbol,
		Name:      q.Name,
		Price:     q.Price,
		ChangePct: q.ChangePct,
		Volume:    q.Volume,
		Kind:      kind,
	}
}
