package backtest

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteReport writes the metrics report as JSON. An empty path skips the
// write, for runs that only want the log summary.
func WriteReport(path string, m *Metrics) error {
	if path == "" {
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(m.ToJSON()+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
