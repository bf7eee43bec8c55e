package metadata

import (
	"fmt"
	"io"
	"log/slog"
)

// Options holds all configuration for an extraction run.
type Options struct {
	// --- Application Info ---
	AppVersion string // Tool version recorded in, and checked against, the cache side-file.

	// --- Scan windows ---
	StartWindowBytes int64 // Byte budget scanned at the start of a toolpath file.
	EndWindowBytes   int64 // Byte budget scanned at the end of a toolpath file.
	StatusScanBudget int64 // Byte budget for the M73 status-code scan of code lines.

	// --- Caching ---
	CacheEnabled    bool // Enable cache side-file read/write.
	IgnoreCacheRead bool // Force a full scan but still write the cache (set by --no-cache).

	// --- Injected dependencies ---
	Logger       slog.Handler // Optional logging backend; nil discards.
	CacheManager CacheManager // Optional cache implementation; nil selects the file-backed one.
}

// DefaultOptions returns Options populated with the package defaults.
func DefaultOptions() Options {
	return Options{
		AppVersion:       "dev",
		StartWindowBytes: DefaultStartWindowBytes,
		EndWindowBytes:   DefaultEndWindowBytes,
		StatusScanBudget: DefaultStatusScanBudget,
		CacheEnabled:     DefaultCacheEnabled,
	}
}

// Validate checks option consistency. Returns an error wrapping
// ErrConfigValidation on the first violation found.
func (o *Options) Validate() error {
	if o.StartWindowBytes < 0 {
		return fmt.Errorf("%w: start window must not be negative, got %d", ErrConfigValidation, o.StartWindowBytes)
	}
	if o.EndWindowBytes < 0 {
		return fmt.Errorf("%w: end window must not be negative, got %d", ErrConfigValidation, o.EndWindowBytes)
	}
	if o.StatusScanBudget < 0 {
		return fmt.Errorf("%w: status scan budget must not be negative, got %d", ErrConfigValidation, o.StatusScanBudget)
	}
	return nil
}

// logger materialises the configured handler, falling back to a discard
// logger so library code never has to nil-check.
func (o *Options) logger() *slog.Logger {
	h := o.Logger
	if h == nil {
		h = slog.NewTextHandler(io.Discard, nil)
	}
	return slog.New(h)
}

// cacheManager resolves the cache implementation for this run.
func (o *Options) cacheManager() CacheManager {
	if !o.CacheEnabled {
		return &NoOpCacheManager{}
	}
	if o.CacheManager != nil {
		return o.CacheManager
	}
	return NewFileCacheManager(o.Logger, o.AppVersion)
}
