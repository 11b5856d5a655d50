package analyst

import (
	"fmt"
	"strings"

	"github.com/marketbrief/internal/model"
)

const unavailable = "Data not available."

func formatHeadlines(headlines []string) string {
	if len(headlines) == 0 {
		return unavailable
	}
	return strings.Join(headlines, "\n")
}

func formatYields(yields []model.Yield) string {
	if len(yields) == 0 {
		return unavailable
	}
	lines := make([]string, 0, len(yields))
	for _, y := range yields {
		lines = append(lines, fmt.Sprintf("%s: %.2f%%", y.Name, y.Price))
	}
	return strings.Join(lines, "\n")
}

func formatBenchmarks(benchmarks []model.Quote) string {
	if len(benchmarks) == 0 {
		return unavailable
	}
	lines := make([]string, 0, len(benchmarks))
	for _, b := range benchmarks {
		lines = append(lines, fmt.Sprintf("- %s: %g (%.2f %%)", b.Name, b.Price, b.ChangePct))
	}
	return strings.Join(lines, "\n")
}

func formatMovers(movers []model.Mover) string {
	if len(movers) == 0 {
		return unavailable
	}
	lines := make([]string, 0, len(movers))
	for _, m := range movers {
		lines = append(lines, fmt.Sprintf("- %s (%s): %.2f%% (%s)", m.Name, m.Symbol, m.ChangePct, m.Kind))
	}
	return strings.Join(lines, "\n")
}
