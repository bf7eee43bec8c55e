package metadata_test

import (
	"archive/zip"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printworks/jobmeta/pkg/metadata"
)

type zipEntry struct {
	name string
	data []byte
}

func writeZip(t *testing.T, path string, entries []zipEntry) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write(e.data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func TestArchiveExtract(t *testing.T) {
	config := "printerModel = SL1\r\n" +
		"printTime = 8720\n" +
		"expTime = 7.5\n" +
		"layerHeight = 0.05\n" +
		"materialName = \"Tough Resin\"\n" +
		"action = print\n" + // not in the schema
		"malformed line without separator\n"
	path := filepath.Join(t.TempDir(), "job.sl1")
	writeZip(t, path, []zipEntry{
		{"config.ini", []byte(config)},
		{"thumbnail/thumbnail800x480.png", []byte("fake png bytes")},
		{"thumbnail/thumbnail400x400.qoi", []byte("fake qoi bytes")},
		{"thumbnail/readme.txt", []byte("not an image")},
		{"1234.png", []byte("layer image, not a thumbnail")},
	})

	rec := metadata.NewRecord(path, metadata.ArchiveSchema, nil)
	require.NoError(t, metadata.NewArchiveExtractor(metadata.DefaultOptions()).ExtractFile(path, rec))

	assert.Equal(t, "SL1", rec.Attributes["printer_model"])
	assert.Equal(t, 8720, rec.Attributes["print_time"])
	assert.Equal(t, 7.5, rec.Attributes["exposure_time"])
	assert.Equal(t, 0.05, rec.Attributes["layer_height"])
	assert.Equal(t, "Tough Resin", rec.Attributes["material_name"])
	assert.NotContains(t, rec.Attributes, "action")

	wantPNG := base64.StdEncoding.EncodeToString([]byte("fake png bytes"))
	wantQOI := base64.StdEncoding.EncodeToString([]byte("fake qoi bytes"))
	assert.Equal(t, []byte(wantPNG), rec.Thumbnails["800x480_PNG"])
	assert.Equal(t, []byte(wantQOI), rec.Thumbnails["400x400_QOI"])
	assert.Len(t, rec.Thumbnails, 2)
}

func TestArchiveExtractFallbackConfigEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.sl1")
	writeZip(t, path, []zipEntry{
		{"prusaslicer.ini", []byte("printerModel = SL1S\n")},
	})

	rec := metadata.NewRecord(path, metadata.ArchiveSchema, nil)
	require.NoError(t, metadata.NewArchiveExtractor(metadata.DefaultOptions()).ExtractFile(path, rec))
	assert.Equal(t, "SL1S", rec.Attributes["printer_model"])
}

func TestArchiveExtractWithoutConfigEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.sl1")
	writeZip(t, path, []zipEntry{
		{"1234.png", []byte("layer image")},
	})

	rec := metadata.NewRecord(path, metadata.ArchiveSchema, nil)
	require.NoError(t, metadata.NewArchiveExtractor(metadata.DefaultOptions()).ExtractFile(path, rec))
	assert.True(t, rec.Empty())
}

func TestArchiveExtractMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.sl1")
	require.NoError(t, os.WriteFile(path, []byte("this is not a zip archive"), 0o644))

	rec := metadata.NewRecord(path, metadata.ArchiveSchema, nil)
	err := metadata.NewArchiveExtractor(metadata.DefaultOptions()).ExtractFile(path, rec)
	assert.ErrorIs(t, err, metadata.ErrMalformedArchive)
}
