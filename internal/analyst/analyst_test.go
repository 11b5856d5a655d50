package analyst

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/marketbrief/internal/model"
)

type fakeCompleter struct {
	name     string
	response string
	err      error
	calls    int

	gotSystem string
	gotUser   string
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.gotSystem = systemPrompt
	f.gotUser = userPrompt
	return f.response, f.err
}

func (f *fakeCompleter) Model() string { return f.name }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Headlines: []string{"Fed holds rates steady", "Oil slides on supply news"},
		Yields: []model.Yield{
			{Name: "US 10Y", Price: 4.25},
		},
		Benchmarks: []model.Quote{
			{Symbol: "^GSPC", Name: "S&P 500", Price: 5000, ChangePct: 0.42},
		},
		Movers: []model.Mover{
			{Symbol: "NVDA", Name: "NVIDIA", ChangePct: 5.1, Kind: model.MoverGainer},
		},
	}
}

func TestBriefingEmptySnapshot(t *testing.T) {
	a := New(&fakeCompleter{}, &fakeCompleter{}, discardLogger())

	_, err := a.Briefing(context.Background(), &model.Snapshot{}, time.Now())
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestBriefingUsesPrimary(t *testing.T) {
	primary := &fakeCompleter{name: "primary", response: "the briefing"}
	fallback := &fakeCompleter{name: "fallback"}
	a := New(primary, fallback, discardLogger())

	got, err := a.Briefing(context.Background(), sampleSnapshot(), time.Now())
	if err != nil {
		t.Fatalf("Briefing returned error: %v", err)
	}
	if got != "the briefing" {
		t.Errorf("briefing = %q", got)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback should not be called when primary succeeds")
	}
	if !strings.Contains(primary.gotSystem, "financial analyst") {
		t.Errorf("system prompt missing persona: %q", primary.gotSystem)
	}
}

func TestBriefingFallsBack(t *testing.T) {
	primary := &fakeCompleter{name: "primary", err: errors.New("rate limited")}
	fallback := &fakeCompleter{name: "fallback", response: "fallback briefing"}
	a := New(primary, fallback, discardLogger())

	got, err := a.Briefing(context.Background(), sampleSnapshot(), time.Now())
	if err != nil {
		t.Fatalf("Briefing returned error: %v", err)
	}
	if got != "fallback briefing" {
		t.Errorf("briefing = %q", got)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("calls: primary=%d fallback=%d", primary.calls, fallback.calls)
	}
}

func TestBriefingBothModelsFail(t *testing.T) {
	primary := &fakeCompleter{name: "primary", err: errors.New("primary down")}
	fallback := &fakeCompleter{name: "fallback", err: errors.New("fallback down")}
	a := New(primary, fallback, discardLogger())

	_, err := a.Briefing(context.Background(), sampleSnapshot(), time.Now())
	if err == nil {
		t.Fatal("expected an error when both models fail")
	}
	if !strings.Contains(err.Error(), "primary down") || !strings.Contains(err.Error(), "fallback down") {
		t.Errorf("error should carry both causes, got %v", err)
	}
}

func TestBuildPromptIncludesDataAndHeaders(t *testing.T) {
	now := time.Date(2026, time.August, 28, 9, 30, 0, 0, time.UTC)
	prompt, err := buildPrompt(sampleSnapshot(), now)
	if err != nil {
		t.Fatalf("buildPrompt returned error: %v", err)
	}

	for _, want := range []string{
		"Friday, August 28, 2026",
		"Fed holds rates steady",
		"US 10Y: 4.25%",
		"- S&P 500: 5000 (0.42 %)",
		"- NVIDIA (NVDA): 5.10% (gainers)",
		"**📈 Markets:**",
		"**📰 Top News:**",
		"**🚀 Major Movers 📉:**",
		"**💡 Key Takeaways:**",
		"**📊 Overall Sentiment:**",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptMarksMissingSections(t *testing.T) {
	snap := &model.Snapshot{Headlines: []string{"only headlines"}}
	prompt, err := buildPrompt(snap, time.Now())
	if err != nil {
		t.Fatalf("buildPrompt returned error: %v", err)
	}
	if got := strings.Count(prompt, "Data not available."); got != 3 {
		t.Errorf("expected 3 unavailable sections, got %d", got)
	}
}

func TestFormatYields(t *testing.T) {
	got := formatYields([]model.Yield{
		{Name: "US 13W", Price: 5.123},
		{Name: "US 30Y", Price: 4.4},
	})
	want := "US 13W: 5.12%\nUS 30Y: 4.40%"
	if got != want {
		t.Errorf("formatYields = %q, want %q", got, want)
	}
}
