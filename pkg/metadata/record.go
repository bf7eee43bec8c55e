package metadata

import (
	"fmt"
	"io"
	"log/slog"
)

// Record owns the extracted metadata of one print file: a mapping from
// attribute name to its converted value and a mapping from thumbnail key
// (e.g. "640x480_PNG") to base64-encoded image bytes.
//
// Every attribute name stored here is declared in the record's schema;
// unrecognized names are silently dropped. Later writes win on key
// collision, which gives content-derived values precedence over values
// guessed from the file name.
type Record struct {
	Path       string
	Attributes map[string]any
	Thumbnails map[string][]byte

	schema *FamilySchema
	logger *slog.Logger
}

// NewRecord creates an empty record for one source file governed by the
// given schema.
func NewRecord(path string, schema *FamilySchema, logger *slog.Logger) *Record {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Record{
		Path:       path,
		Attributes: make(map[string]any),
		Thumbnails: make(map[string][]byte),
		schema:     schema,
		logger:     logger,
	}
}

// Apply submits one raw (name, value) pair for conversion and storage.
// Multi-tool attributes are split, converted per element and reduced; the
// per-tool list is stored under the derived name only when it holds more
// than one element, the scalar only when the reduction produced one.
// Conversion failures drop the single attribute and are logged for
// diagnostics, never propagated.
func (r *Record) Apply(name, value string) {
	if mt, ok := r.schema.MultiTool[name]; ok {
		elements, single, ok := mt.Parse(value)
		if !ok {
			r.logger.Warn("dropping attribute, element conversion failed",
				slog.String("attribute", name), slog.String("value", value))
			return
		}
		if len(elements) > 1 {
			r.store(MultiToolName(name), elements)
		}
		if single != nil {
			r.store(name, single)
		}
		return
	}
	conv, ok := r.schema.Attrs[name]
	if !ok {
		return
	}
	v, err := conv(value)
	if err != nil {
		r.logger.Warn("dropping attribute, conversion failed",
			slog.String("attribute", name), slog.Any("error", err))
		return
	}
	r.store(name, v)
}

// SetFlag records a boolean presence-flag attribute.
func (r *Record) SetFlag(name string) {
	if _, ok := r.schema.Attrs[name]; !ok {
		return
	}
	r.store(name, true)
}

// SetThumbnail stores base64-encoded image bytes under a dimensions/format
// key.
func (r *Record) SetThumbnail(key string, data []byte) {
	r.Thumbnails[key] = data
}

func (r *Record) store(name string, v any) {
	r.Attributes[name] = v
}

// Empty reports whether nothing at all was extracted.
func (r *Record) Empty() bool {
	return len(r.Attributes) == 0 && len(r.Thumbnails) == 0
}

func (r *Record) String() string {
	return fmt.Sprintf("metadata: %s, %d attributes, %d thumbnails",
		r.Path, len(r.Attributes), len(r.Thumbnails))
}
