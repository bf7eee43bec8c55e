package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// CachePath derives the side-file location for a source file: the same
// directory, with a dot prepended and the cache suffix appended to the file
// name.
func CachePath(sourcePath string) string {
	dir, name := filepath.Split(sourcePath)
	return filepath.Join(dir, "."+name+CacheFileSuffix)
}

// CachedThumbnail is one selected preview persisted in the side-file.
type CachedThumbnail struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Data   string `json:"data"` // base64 payload
}

// CachePayload is the JSON structure of the cache side-file. Both version
// tags must match the running tool exactly or the payload is treated as
// absent: Version tracks the tool release, Schema the side-file structure.
type CachePayload struct {
	Version    string           `json:"version"`
	Schema     string           `json:"schema"`
	Attributes map[string]any   `json:"attributes"`
	Preview    *CachedThumbnail `json:"preview,omitempty"`
	Icon       *CachedThumbnail `json:"icon,omitempty"`
}

// Apply hydrates a record from the cached payload. Attribute names are
// re-filtered through the record's schema so a hand-edited side-file cannot
// smuggle undeclared names in.
func (p *CachePayload) Apply(rec *Record) {
	for name, v := range p.Attributes {
		if _, ok := rec.schema.Attrs[name]; ok {
			rec.Attributes[name] = v
		}
	}
	for _, t := range []*CachedThumbnail{p.Preview, p.Icon} {
		if t == nil {
			continue
		}
		info := ImageInfo{Width: t.Width, Height: t.Height, Format: t.Format}
		rec.SetThumbnail(info.Key(), []byte(t.Data))
	}
}

// CacheManager abstracts the parsed-result cache. Load returns (nil, nil)
// on a clean miss (no usable payload); defects — a missing, unreadable or
// structurally invalid side-file — return an error wrapping ErrCacheInvalid
// for the caller to absorb.
type CacheManager interface {
	Load(sourcePath string) (*CachePayload, error)
	Store(sourcePath string, rec *Record) error
}

// NoOpCacheManager is the do-nothing implementation used when caching is
// disabled.
type NoOpCacheManager struct{}

// Load implements CacheManager, always reporting a miss.
func (c *NoOpCacheManager) Load(sourcePath string) (*CachePayload, error) { return nil, nil }

// Store implements CacheManager, performing no action.
func (c *NoOpCacheManager) Store(sourcePath string, rec *Record) error { return nil }

// fileCacheManager persists payloads as JSON side-files next to the source.
type fileCacheManager struct {
	version string
	logger  *slog.Logger
}

// NewFileCacheManager creates the default file-backed cache manager. The
// version string is recorded on store and must match exactly on load.
func NewFileCacheManager(handler slog.Handler, version string) CacheManager {
	opts := Options{Logger: handler}
	if version == "" {
		version = "dev"
	}
	return &fileCacheManager{
		version: version,
		logger:  opts.logger().With(slog.String("component", "cache")),
	}
}

// Load implements CacheManager. The side-file is usable only when its
// modification time is strictly later than the source file's and its
// version tag matches; anything stale is ignored, never deleted.
func (c *fileCacheManager) Load(sourcePath string) (*CachePayload, error) {
	cachePath := CachePath(sourcePath)
	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: stat source %s: %v", ErrCacheInvalid, sourcePath, err)
	}
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no side-file at %s", ErrCacheInvalid, cachePath)
		}
		return nil, fmt.Errorf("%w: stat %s: %v", ErrCacheInvalid, cachePath, err)
	}
	if !cacheInfo.ModTime().After(sourceInfo.ModTime()) {
		c.logger.Debug("cache side-file older than source, ignoring", slog.String("path", cachePath))
		return nil, nil
	}

	raw, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrCacheInvalid, cachePath, err)
	}
	var payload CachePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrCacheInvalid, cachePath, err)
	}
	if payload.Attributes == nil {
		return nil, fmt.Errorf("%w: %s carries no attribute mapping", ErrCacheInvalid, cachePath)
	}
	if payload.Version != c.version {
		c.logger.Debug("cache side-file version mismatch, ignoring",
			slog.String("path", cachePath),
			slog.String("file_version", payload.Version),
			slog.String("tool_version", c.version))
		return nil, nil
	}
	if payload.Schema != CacheSchemaVersion {
		c.logger.Debug("cache side-file schema mismatch, ignoring",
			slog.String("path", cachePath),
			slog.String("file_schema", payload.Schema),
			slog.String("tool_schema", CacheSchemaVersion))
		return nil, nil
	}
	return &payload, nil
}

// Store implements CacheManager. The payload keeps the full attribute
// mapping plus the selected preview and icon thumbnails; an empty record
// writes nothing. The write goes through a temp file and rename so a
// crashed run never leaves a truncated side-file behind.
func (c *fileCacheManager) Store(sourcePath string, rec *Record) error {
	if rec.Empty() {
		return nil
	}
	payload := CachePayload{
		Version:    c.version,
		Schema:     CacheSchemaVersion,
		Attributes: rec.Attributes,
		Preview:    selectCached(rec.Thumbnails, PreviewTarget),
		Icon:       selectCached(rec.Thumbnails, IconTarget),
	}
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	cachePath := CachePath(sourcePath)
	tmp, err := os.CreateTemp(filepath.Dir(cachePath), filepath.Base(cachePath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, cachePath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	c.logger.Debug("cache side-file written", slog.String("path", cachePath))
	return nil
}

func selectCached(thumbnails map[string][]byte, target ImageInfo) *CachedThumbnail {
	info, ok := SelectThumbnail(thumbnails, target, 1.0)
	if !ok {
		return nil
	}
	return &CachedThumbnail{
		Width:  info.Width,
		Height: info.Height,
		Format: info.Format,
		Data:   string(thumbnails[info.Key()]),
	}
}
