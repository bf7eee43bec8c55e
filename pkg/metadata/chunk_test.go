package metadata_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printworks/jobmeta/pkg/metadata"
)

func chunkWindowOptions() metadata.Options {
	opts := metadata.DefaultOptions()
	opts.StartWindowBytes = 2048
	opts.EndWindowBytes = 1024
	return opts
}

// chunkTestContent lays out metadata in the head and tail with a parse-inert
// middle, sized so the windows do not cover the whole file.
func chunkTestContent() []byte {
	var b bytes.Buffer
	b.WriteString("; printer_model = MK3S\n")
	b.WriteString("; layer_height = 0.15\n")
	b.WriteString("; filament_type = PETG;PETG\n")
	b.WriteString("; nozzle_diameter = 0.4,0.6\n")
	b.WriteString("; thumbnail begin 160x120 20\n")
	b.WriteString("; aGVsbG8gdGh1bWJuYWls\n")
	b.WriteString("; thumbnail end\n")
	b.WriteString("M73 P93 R5\n")
	for b.Len() < 11000 {
		b.WriteString("*\n")
	}
	b.WriteString("; temperature = 280,280\n")
	b.WriteString("; brim_width = 0\n")
	b.WriteString("; ironing = 0") // no trailing line feed
	return b.Bytes()
}

func scanByChunks(t *testing.T, content []byte, chunkSize int, opts metadata.Options) *metadata.Record {
	t.Helper()
	rec := metadata.NewRecord("test.gcode", metadata.ToolpathSchema, nil)
	cs := metadata.NewChunkScanner(rec, opts)
	total := int64(len(content))
	for off := 0; off < len(content); off += chunkSize {
		end := off + chunkSize
		if end > len(content) {
			end = len(content)
		}
		require.NoError(t, cs.Submit(content[off:end], total))
	}
	assert.Equal(t, total, cs.Offset())
	return rec
}

func TestChunkScannerMatchesWholeFileScan(t *testing.T) {
	opts := chunkWindowOptions()
	content := chunkTestContent()

	want, err := scanContent(t, content, opts)
	require.NoError(t, err)
	require.Equal(t, "MK3S", want.Attributes["printer_model"])
	require.Contains(t, want.Thumbnails, "160x120_PNG")
	require.Equal(t, 0, want.Attributes["brim_width"])
	require.Equal(t, 0, want.Attributes["ironing"])

	for _, chunkSize := range []int{1, 3, 100, 1000, 4096, len(content)} {
		got := scanByChunks(t, content, chunkSize, opts)
		assert.Equal(t, want.Attributes, got.Attributes, "chunk size %d", chunkSize)
		assert.Equal(t, want.Thumbnails, got.Thumbnails, "chunk size %d", chunkSize)
	}
}

func TestChunkScannerFlushesUnterminatedFinalLine(t *testing.T) {
	opts := metadata.DefaultOptions()
	content := []byte("; printer_model = MK3S\n; brim_width = 4")

	for _, chunkSize := range []int{1, 16, len(content)} {
		rec := scanByChunks(t, content, chunkSize, opts)
		assert.Equal(t, "MK3S", rec.Attributes["printer_model"], "chunk size %d", chunkSize)
		assert.Equal(t, 4, rec.Attributes["brim_width"], "chunk size %d", chunkSize)
	}
}

func TestChunkScannerDiscardsMiddleChunks(t *testing.T) {
	opts := chunkWindowOptions()
	var b bytes.Buffer
	b.WriteString("; printer_model = MK3S\n")
	for b.Len() < 6000 {
		b.WriteString("*\n")
	}
	b.WriteString("; hidden = 1\n")
	for b.Len() < 11000 {
		b.WriteString("*\n")
	}
	b.WriteString("; ironing = 1\n")
	content := b.Bytes()

	rec := scanByChunks(t, content, 500, opts)
	assert.Equal(t, "MK3S", rec.Attributes["printer_model"])
	assert.NotContains(t, rec.Attributes, "hidden")
	assert.Equal(t, 1, rec.Attributes["ironing"])
}

func TestChunkScannerLargeFileWithoutMetadata(t *testing.T) {
	opts := metadata.DefaultOptions()
	rec := metadata.NewRecord("noise.gcode", metadata.ToolpathSchema, nil)
	cs := metadata.NewChunkScanner(rec, opts)

	chunk := []byte(strings.Repeat("*\n", 32*1024)) // 64 KiB
	total := int64(len(chunk)) * 32                 // 2 MiB
	for i := 0; i < 32; i++ {
		require.NoError(t, cs.Submit(chunk, total))
	}
	assert.Equal(t, total, cs.Offset())
	assert.True(t, rec.Empty())
}
