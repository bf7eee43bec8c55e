package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/printworks/jobmeta/pkg/metadata"
)

// OutputFormat selects how Run renders the extracted record.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// jsonReport is the machine-readable shape of one extraction result.
type jsonReport struct {
	Path             string         `json:"path"`
	CacheHit         bool           `json:"cacheHit"`
	Attributes       map[string]any `json:"attributes"`
	Thumbnails       []string       `json:"thumbnails"`
	EstimatedSeconds int            `json:"estimatedSeconds,omitempty"`
}

// Run extracts metadata from one file and renders it to out.
func Run(ctx context.Context, path string, opts metadata.Options, format OutputFormat, out io.Writer, logger *slog.Logger) error {
	rec, report, err := metadata.Extract(ctx, path, opts)
	if err != nil {
		logger.Error("extraction failed", slog.String("path", path), slog.Any("error", err))
		return err
	}
	for _, stage := range report.Stages {
		if stage.Err != nil {
			logger.Debug("stage ended with error",
				slog.String("stage", string(stage.Stage)), slog.Any("error", stage.Err))
		}
	}

	seconds := estimatedSeconds(rec)
	if format == OutputFormatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonReport{
			Path:             rec.Path,
			CacheHit:         report.CacheHit,
			Attributes:       rec.Attributes,
			Thumbnails:       sortedKeys(rec.Thumbnails),
			EstimatedSeconds: seconds,
		})
	}

	names := make([]string, 0, len(rec.Attributes))
	for name := range rec.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := fmt.Fprintf(out, "%s: %v\n", name, rec.Attributes[name]); err != nil {
			return err
		}
	}
	if seconds > 0 {
		logger.Debug("estimated printing time parsed", slog.Int("seconds", seconds))
	}
	for _, key := range sortedKeys(rec.Thumbnails) {
		logger.Debug("thumbnail found", slog.String("key", key))
	}
	return nil
}

func estimatedSeconds(rec *metadata.Record) int {
	raw, ok := rec.Attributes["estimated printing time (normal mode)"].(string)
	if !ok {
		return 0
	}
	seconds, ok := metadata.EstimatedToSeconds(raw)
	if !ok {
		return 0
	}
	return seconds
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
