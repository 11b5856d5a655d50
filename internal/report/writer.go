package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SaveHTML writes the rendered report into dir, creating it if needed, and
// returns the file path.
func SaveHTML(dir, html string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create reports dir: %w", err)
	}
	name := fmt.Sprintf("market_report_%s.html", now.Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("report: write %s: %w", path, err)
	}
	return path, nil
}
