package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
)

// Source is one print file selected for extraction. The two implementations
// form a closed set: ToolpathSource for text toolpath files and
// ArchiveSource for zip-packaged resin jobs. All three operations populate
// the same Record.
type Source interface {
	Family() Family
	Record() *Record

	// LoadFromPath applies best-effort heuristics derived from the file
	// name alone, without touching content.
	LoadFromPath()
	// LoadFromContent scans the file content.
	LoadFromContent() error
	// LoadFromChunk consumes the next chunk of an incrementally delivered
	// file. Families without chunked support return ErrChunkedUnsupported.
	LoadFromChunk(chunk []byte, totalSize int64) error
}

// New selects the source implementation for a path by its extension. No
// content I/O happens here; an extension matching neither family fails fast
// with ErrUnknownFileType.
func New(path string, opts Options) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ToolpathExtensions {
		if ext == e {
			return newToolpathSource(path, opts), nil
		}
	}
	for _, e := range ArchiveExtensions {
		if ext == e {
			return newArchiveSource(path, opts), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFileType, path)
}

// Extract runs the full orchestration for one file: cache load, path
// heuristics, content scan, cache store. Each stage's outcome is collected
// in the report; per-stage failures are folded into a partial result rather
// than aborting, so the returned record always carries whatever was
// gathered. The returned error is non-nil only for failures the caller must
// see: an unknown file type, invalid options, or a structurally broken
// archive.
func Extract(ctx context.Context, path string, opts Options) (*Record, Report, error) {
	var report Report
	if err := opts.Validate(); err != nil {
		return nil, report, err
	}
	src, err := New(path, opts)
	if err != nil {
		return nil, report, err
	}
	rec := src.Record()
	logger := opts.logger().With(slog.String("component", "extract"), slog.String("path", path))
	cm := opts.cacheManager()

	if !opts.IgnoreCacheRead {
		payload, cerr := cm.Load(path)
		report.Stages = append(report.Stages, StageResult{Stage: StageCacheLoad, Err: cerr})
		if cerr != nil {
			logger.Debug("cache unusable, falling back to full scan", slog.Any("error", cerr))
		} else if payload != nil {
			payload.Apply(rec)
			report.CacheHit = true
			return rec, report, nil
		}
	}

	src.LoadFromPath()
	report.Stages = append(report.Stages, StageResult{Stage: StagePathScan})

	if ctx.Err() != nil {
		return rec, report, ctx.Err()
	}
	scanErr := src.LoadFromContent()
	report.Stages = append(report.Stages, StageResult{Stage: StageContentScan, Err: scanErr})
	if scanErr != nil {
		logger.Warn("content scan incomplete, keeping partial metadata", slog.Any("error", scanErr))
	}

	if scanErr == nil {
		storeErr := cm.Store(path, rec)
		report.Stages = append(report.Stages, StageResult{Stage: StageCacheStore, Err: storeErr})
		if storeErr != nil {
			logger.Warn("failed to write cache side-file", slog.Any("error", storeErr))
		}
	}

	// Archive structure defects are the one scan failure the caller must be
	// able to distinguish from best-effort gaps.
	if errors.Is(scanErr, ErrMalformedArchive) {
		return rec, report, scanErr
	}
	return rec, report, nil
}

// toolpathFilenamePat extracts metadata hints embedded in slicer output
// file names, e.g. "shape_0.25mm_PETG_MK3S_2h9m.gcode".
var toolpathFilenamePat = regexp.MustCompile(
	`^(.*?)_([0-9.]+)mm_(\w+)_(\w+)_(.*)\.`)

// ToolpathSource extracts metadata from plain-text toolpath files.
type ToolpathSource struct {
	path  string
	opts  Options
	rec   *Record
	chunk *ChunkScanner
}

func newToolpathSource(path string, opts Options) *ToolpathSource {
	rec := NewRecord(path, ToolpathSchema, opts.logger())
	return &ToolpathSource{path: path, opts: opts, rec: rec}
}

// Family implements Source.
func (s *ToolpathSource) Family() Family { return FamilyToolpath }

// Record implements Source.
func (s *ToolpathSource) Record() *Record { return s.rec }

// LoadFromPath implements Source. Hints not declared in the schema (such as
// the model name segment) are filtered out as usual.
func (s *ToolpathSource) LoadFromPath() {
	m := toolpathFilenamePat.FindStringSubmatch(filepath.Base(s.path))
	if m == nil {
		return
	}
	s.rec.Apply("layer_height", m[2])
	s.rec.Apply("filament_type", m[3])
	s.rec.Apply("printer_model", m[4])
	s.rec.Apply("estimated printing time (normal mode)", m[5])
}

// LoadFromContent implements Source using the bounded-window scanner.
func (s *ToolpathSource) LoadFromContent() error {
	return NewScanner(s.rec, s.opts).ScanFile(s.path)
}

// LoadFromChunk implements Source using the chunked driver. Chunks must
// arrive in strictly increasing offset order.
func (s *ToolpathSource) LoadFromChunk(chunk []byte, totalSize int64) error {
	if s.chunk == nil {
		s.chunk = NewChunkScanner(s.rec, s.opts)
	}
	return s.chunk.Submit(chunk, totalSize)
}

// ArchiveSource extracts metadata from zip-packaged resin job files.
type ArchiveSource struct {
	path string
	opts Options
	rec  *Record
}

func newArchiveSource(path string, opts Options) *ArchiveSource {
	rec := NewRecord(path, ArchiveSchema, opts.logger())
	return &ArchiveSource{path: path, opts: opts, rec: rec}
}

// Family implements Source.
func (s *ArchiveSource) Family() Family { return FamilyArchive }

// Record implements Source.
func (s *ArchiveSource) Record() *Record { return s.rec }

// LoadFromPath implements Source. Archive file names carry no recognized
// hints.
func (s *ArchiveSource) LoadFromPath() {}

// LoadFromContent implements Source.
func (s *ArchiveSource) LoadFromContent() error {
	return NewArchiveExtractor(s.opts).ExtractFile(s.path, s.rec)
}

// LoadFromChunk implements Source. Archives need the central directory at
// the end of the file, so partial delivery is not supported.
func (s *ArchiveSource) LoadFromChunk(chunk []byte, totalSize int64) error {
	return ErrChunkedUnsupported
}
