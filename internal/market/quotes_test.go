package market

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/marketbrief/internal/model"
)

func TestRankMovers(t *testing.T) {
	actives := []model.Quote{
		{Symbol: "AAA", ChangePct: 2.5},
		{Symbol: "BBB", ChangePct: -8.0},
		{Symbol: "CCC", ChangePct: 12.0},
		{Symbol: "DDD", ChangePct: 0},
		{Symbol: "EEE", ChangePct: -1.2},
	}

	movers := rankMovers(actives)
	if len(movers) != 4 {
		t.Fatalf("expected 4 movers (flat symbols dropped), got %d", len(movers))
	}

	// Gainers first, largest absolute move first within each side.
	wantOrder := []string{"CCC", "AAA", "BBB", "EEE"}
	for i, want := range wantOrder {
		if movers[i].Symbol != want {
			t.Errorf("movers[%d] = %s, want %s", i, movers[i].Symbol, want)
		}
	}

	if movers[0].Kind != model.MoverGainer {
		t.Errorf("CCC should be a gainer, got %s", movers[0].Kind)
	}
	if movers[2].Kind != model.MoverLoser {
		t.Errorf("BBB should be a loser, got %s", movers[2].Kind)
	}
}

func TestRankMoversCapsEachSideAtTen(t *testing.T) {
	var actives []model.Quote
	for i := 0; i < 30; i++ {
		actives = append(actives, model.Quote{
			Symbol:    fmt.Sprintf("UP%d", i),
			ChangePct: float64(i + 1),
		})
	}

	movers := rankMovers(actives)
	if len(movers) != 10 {
		t.Fatalf("expected 10 gainers, got %d", len(movers))
	}
	for _, m := range movers {
		if m.Kind != model.MoverGainer {
			t.Errorf("unexpected kind %s for %s", m.Kind, m.Symbol)
		}
	}
}

func TestMoversFallsBackToGainersAndLosers(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/stock_market/actives":
			w.WriteHeader(http.StatusForbidden)
		case "/api/v3/stock_market/gainers":
			fmt.Fprint(w, `[{"symbol":"WIN","price":10,"changesPercentage":15.2,"volume":100}]`)
		case "/api/v3/stock_market/losers":
			fmt.Fprint(w, `[{"symbol":"LOSE","price":5,"changesPercentage":-9.1,"volume":200}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	movers, err := c.Movers(context.Background())
	if err != nil {
		t.Fatalf("Movers returned error: %v", err)
	}
	if len(movers) != 2 {
		t.Fatalf("expected 2 movers, got %d", len(movers))
	}
	if movers[0].Symbol != "WIN" || movers[0].Kind != model.MoverGainer {
		t.Errorf("unexpected first mover %+v", movers[0])
	}
	if movers[1].Symbol != "LOSE" || movers[1].Kind != model.MoverLoser {
		t.Errorf("unexpected second mover %+v", movers[1])
	}
}

func TestYieldsSkipsFailedSymbols(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.TrimPrefix(r.URL.Path, "/api/v3/quote/")
		if symbol == "^TNX" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		fmt.Fprintf(w, `[{"symbol":%q,"price":4.25}]`, symbol)
	}))

	yields, err := c.Yields(context.Background())
	if err != nil {
		t.Fatalf("Yields returned error: %v", err)
	}
	if len(yields) != 3 {
		t.Fatalf("expected 3 yields, got %d", len(yields))
	}
	for _, y := range yields {
		if y.Name == "US 10Y" {
			t.Errorf("failed symbol should have been skipped, got %+v", y)
		}
	}
}

func TestBenchmarksBatchesSymbols(t *testing.T) {
	var gotPath string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `[{"symbol":"^GSPC","price":5000,"changesPercentage":0.4}]`)
	}))

	quotes, err := c.Benchmarks(context.Background())
	if err != nil {
		t.Fatalf("Benchmarks returned error: %v", err)
	}
	if len(quotes) != 1 || quotes[0].Symbol != "^GSPC" {
		t.Errorf("unexpected quotes %+v", quotes)
	}
	if !strings.Contains(gotPath, "SPY") || !strings.Contains(gotPath, "BTC-USD") {
		t.Errorf("batched path should contain the full universe, got %s", gotPath)
	}
}
