package metadata

import (
	"bytes"
	"log/slog"
)

// ChunkScanner adapts the bounded-window grammar to a byte stream delivered
// incrementally, e.g. by a network upload handler. Chunks must arrive in
// strictly increasing offset order; the total file size is known up front
// and must be passed consistently on every call. A single instance must not
// be used from multiple goroutines.
//
// Feeding a whole file through Submit in sequential chunks of any size
// yields the same record as scanning it with Scanner.
type ChunkScanner struct {
	parser      *lineParser
	startWindow int64
	endWindow   int64

	// ScanCursor state: bytes consumed so far and the buffered partial
	// trailing line.
	offset  int64
	partial []byte
}

// NewChunkScanner creates a chunked driver feeding the given record.
func NewChunkScanner(rec *Record, opts Options) *ChunkScanner {
	return &ChunkScanner{
		parser:      newLineParser(rec, opts.StatusScanBudget, opts.logger().With(slog.String("component", "chunkscanner"))),
		startWindow: opts.StartWindowBytes,
		endWindow:   opts.EndWindowBytes,
	}
}

// Offset returns the absolute byte offset consumed so far.
func (c *ChunkScanner) Offset() int64 {
	return c.offset
}

// Submit consumes the next chunk. Chunks falling entirely inside the
// untouched middle region are discarded, dropping any buffered partial
// line; a chunk straddling the start of the end window is trimmed so
// processing resumes exactly at the window boundary, matching the seek the
// whole-file scanner performs.
func (c *ChunkScanner) Submit(chunk []byte, totalSize int64) error {
	pos := c.offset
	c.offset += int64(len(chunk))

	inMetadataArea := pos < c.startWindow || pos >= totalSize-c.endWindow
	if !inMetadataArea {
		endStart := totalSize - c.endWindow
		if endStart >= pos+int64(len(chunk)) {
			// A gap is being skipped; the buffered line no longer has a
			// continuation.
			c.partial = nil
			return nil
		}
		chunk = chunk[endStart-pos:]
		c.partial = nil
	}

	data := chunk
	if len(c.partial) > 0 {
		data = append(c.partial, chunk...)
		c.partial = nil
	}

	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			// Incomplete trailing line, keep it for the next call.
			c.partial = append([]byte(nil), data...)
			break
		}
		if err := c.parser.parseLine(data[:i+1]); err != nil {
			return err
		}
		data = data[i+1:]
	}
	// A file without a trailing line feed gets no later call to complete
	// the buffered fragment; flush it once the final byte has arrived.
	if c.offset >= totalSize && len(c.partial) > 0 {
		line := c.partial
		c.partial = nil
		return c.parser.parseLine(line)
	}
	return nil
}
