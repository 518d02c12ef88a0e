// Package baseline persists benchmark result sets so later runs have a
// comparison point. Loading is deliberately tolerant: a missing or corrupt
// baseline is a valid first-run state, never a failure.
package baseline

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/benchgate/benchgate/internal/models"
)

// Load reads a baseline file. A missing file or malformed JSON yields nil.
// Both the current wrapped format {timestamp, results} and the legacy bare
// array of results are accepted.
func Load(path string) *models.BaselineData {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("baseline unreadable, treating as absent", "path", path, "error", err)
		}
		return nil
	}

	return decode(data, path)
}

// Save writes the result set with a fresh timestamp, creating any missing
// parent directories. This is the only side-effecting operation in the
// subsystem.
func Save(path string, results []models.BenchmarkResult) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(models.NewBaselineData(results), "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func decode(data []byte, source string) *models.BaselineData {
	var wrapped models.BaselineData
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Results != nil {
		return &wrapped
	}

	var bare []models.BenchmarkResult
	if err := json.Unmarshal(data, &bare); err == nil && bare != nil {
		return &models.BaselineData{Results: bare}
	}

	slog.Debug("baseline is not valid JSON, treating as absent", "source", source)
	return nil
}
