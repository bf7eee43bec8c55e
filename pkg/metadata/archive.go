package metadata

import (
	"archive/zip"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/klauspost/compress/flate"
)

// configEntryNames are the archive entries read for flat key-value
// metadata, in lookup order. A missing entry is not an error.
var configEntryNames = []string{"config.ini", "prusaslicer.ini"}

// thumbnailDirPrefix is the archive directory holding preview images.
const thumbnailDirPrefix = "thumbnail/"

// thumbnailEntryPat matches the trailing "<dims>.<ext>" of a thumbnail
// entry name. The extension set is closed.
var thumbnailEntryPat = regexp.MustCompile(`(\d+x\d+)\.(qoi|jpg|png)$`)

// ArchiveExtractor reads metadata and thumbnails from a zip-packaged resin
// job file.
type ArchiveExtractor struct {
	logger *slog.Logger
}

// NewArchiveExtractor creates an extractor.
func NewArchiveExtractor(opts Options) *ArchiveExtractor {
	return &ArchiveExtractor{logger: opts.logger().With(slog.String("component", "archive"))}
}

// ExtractFile opens path as a zip container and populates rec with config
// metadata and thumbnails. A structurally broken archive returns an error
// wrapping ErrMalformedArchive; an intact archive without config entries
// yields empty metadata and no error.
func (a *ArchiveExtractor) ExtractFile(path string, rec *Record) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedArchive, path, err)
	}
	defer zr.Close()
	// Swap in the faster flate implementation for entry decompression.
	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})
	return a.extract(&zr.Reader, rec)
}

func (a *ArchiveExtractor) extract(zr *zip.Reader, rec *Record) error {
	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	for _, name := range configEntryNames {
		f, ok := entries[name]
		if !ok {
			continue
		}
		content, err := readEntry(f)
		if err != nil {
			a.logger.Warn("skipping unreadable config entry",
				slog.String("entry", name), slog.Any("error", err))
			continue
		}
		a.applyConfig(string(content), rec)
	}

	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, thumbnailDirPrefix) {
			continue
		}
		m := thumbnailEntryPat.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			a.logger.Warn("skipping unreadable thumbnail entry",
				slog.String("entry", f.Name), slog.Any("error", err))
			continue
		}
		key := m[1] + "_" + strings.ToUpper(m[2])
		encoded := make([]byte, base64.StdEncoding.EncodedLen(len(data)))
		base64.StdEncoding.Encode(encoded, data)
		rec.SetThumbnail(key, encoded)
	}
	return nil
}

// applyConfig parses a flat "key = value" document. Each value gets a
// structured JSON parse first, falling back to the raw string; raw keys are
// mapped through the schema rename table before the schema filters them.
func (a *ArchiveExtractor) applyConfig(content string, rec *Record) {
	for _, line := range strings.Split(content, "\n") {
		key, value, ok := strings.Cut(strings.TrimRight(line, "\r"), " = ")
		if !ok {
			continue
		}
		if canonical, renamed := rec.schema.Renames[key]; renamed {
			key = canonical
		}
		rec.Apply(key, decodeConfigValue(value))
	}
}

// decodeConfigValue unwraps JSON-encoded scalars, keeping anything else as
// the raw string.
func decodeConfigValue(value string) string {
	var v any
	if err := json.Unmarshal([]byte(value), &v); err != nil {
		return value
	}
	switch s := v.(type) {
	case string:
		return s
	default:
		return value
	}
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
