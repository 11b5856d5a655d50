// Package analyst turns a market snapshot into a morning briefing using a
// chat model, with a fallback model when the primary fails.
package analyst

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"github.com/marketbrief/internal/model"
)

// ErrNoData is returned when every snapshot section is empty. No model call
// is made in that case: there is nothing to analyze and nothing worth
// emailing.
var ErrNoData = errors.New("analyst: no market data collected, all sources may be down or API keys invalid")

// Completer is the chat model surface the analyst needs.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Model() string
}

const systemPrompt = `You are a genius, insightful financial analyst with years of experience providing a morning market briefing. Your tone should be conversational yet informative, like a pro talking to colleagues.`

var promptTmpl = template.Must(template.New("briefing").Parse(`This briefing is for {{.Date}}.

**Crucial Instructions:**
- **DO NOT HALLUCINATE.** Use ONLY the data provided below. Do not invent facts, figures, or news.
- If data for a section is unavailable, state "Data not available."
- Your analysis must be insightful, connecting different data points.
- The News section is critical. It should be the most in-depth, discussing 15-25 most important and interesting headlines (MAXIMUM 25 HEADLINES) DO NOT LIST MORE THAN 25 HEADLINES UNDER ANY CIRCUMSTANCE. DO NOT include earnings call transcripts in this section, or any other transcripts, we want interesting macro and market headlines.
- Please try to include current prices for the major indices IF AVAILABLE.

TO REPEAT:
- NO EARNINGS CALL TRANSCRIPTS IN THE NEWS SECTION UNDER ANY CIRCUMSTANCE. IF IT HAS "earnings call transcript" OR SIMILAR IN THE HEADLINE DO NOT INCLUDE IT.
- MAXIMUM 25 HEADLINES, CAREFULLY SELECT THE MOST INTERESTING AND IMPORTANT HEADLINES
- Try to keep headlines that are most important and interesting to economic markets and geopolitics.

WHEN DECIDING WHICH HEADLINES TO INCLUDE, CONSIDER THE FOLLOWING:
- Is it a fact or opinion? Prioritize facts
- Is it relevant to the market? Prioritize market-relevant news
- Is it related to geopolitics and macroeconomic trends? Prioritize geopolitical news
- Is it related to technology and innovation? Prioritize technology news
- Is it related to consumer behavior and trends? Prioritize consumer news
AVOID:
- Headlines that are questions
- Headlines that don't necessarily highlight any market-moving information

**Market Data for your analysis:**
- **Headlines:**
{{.Headlines}}
- **Treasury Yields:**
{{.Yields}}
- **Market Benchmarks:**
{{.Benchmarks}}
- **MAJOR MOVERS:**
{{.Movers}}

**CRITICAL: You MUST use these EXACT section headers in your response:**
- **📈 Markets:**
- **📰 Top News:**
- **🚀 Major Movers 📉:**
- **💡 Key Takeaways:**
- **📊 Overall Sentiment:**

Please provide a detailed report in the style of a professional market briefing. Please avoid using charts or diagrams, instead just use markdown / plain speech.
`))

// Analyst produces briefings from snapshots.
type Analyst struct {
	primary  Completer
	fallback Completer
	logger   *slog.Logger
}

func New(primary, fallback Completer, logger *slog.Logger) *Analyst {
	return &Analyst{primary: primary, fallback: fallback, logger: logger}
}

// Briefing builds the prompt from the snapshot and asks the primary model,
// falling back to the secondary on failure. Returns the analysis markdown.
func (a *Analyst) Briefing(ctx context.Context, snap *model.Snapshot, now time.Time) (string, error) {
	if snap.Empty() {
		return "", ErrNoData
	}

	prompt, err := buildPrompt(snap, now)
	if err != nil {
		return "", err
	}
	a.logger.Debug("analyst: prompt built", "len", len(prompt))

	a.logger.Info("analyst: attempting analysis with primary model", "model", a.primary.Model())
	analysis, primaryErr := a.primary.Complete(ctx, systemPrompt, prompt)
	if primaryErr == nil {
		a.logger.Debug("analyst: primary model succeeded", "response_len", len(analysis))
		return analysis, nil
	}

	a.logger.Warn("analyst: primary model failed, falling back",
		"primary", a.primary.Model(), "fallback", a.fallback.Model(), "err", primaryErr)

	analysis, fallbackErr := a.fallback.Complete(ctx, systemPrompt, prompt)
	if fallbackErr == nil {
		a.logger.Info("analyst: fallback model succeeded", "model", a.fallback.Model())
		return analysis, nil
	}

	return "", fmt.Errorf("analyst: both models failed: primary: %w; fallback: %v", primaryErr, fallbackErr)
}

func buildPrompt(snap *model.Snapshot, now time.Time) (string, error) {
	var buf bytes.Buffer
	err := promptTmpl.Execute(&buf, map[string]string{
		"Date":       now.Format("Monday, January 2, 2006"),
		"Headlines":  formatHeadlines(snap.Headlines),
		"Yields":     formatYields(snap.Yields),
		"Benchmarks": formatBenchmarks(snap.Benchmarks),
		"Movers":     formatMovers(snap.Movers),
	})
	if err != nil {
		return "", fmt.Errorf("analyst: render prompt: %w", err)
	}
	return buf.String(), nil
}
