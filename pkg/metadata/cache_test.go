package metadata_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printworks/jobmeta/pkg/metadata"
)

func TestCachePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/data", ".job.gcode.cache"),
		metadata.CachePath(filepath.Join("/data", "job.gcode")))
	assert.Equal(t, ".job.sl1.cache", metadata.CachePath("job.sl1"))
}

// cacheFixture writes a source file and a populated record for it.
func cacheFixture(t *testing.T) (string, *metadata.Record) {
	t.Helper()
	src := filepath.Join(t.TempDir(), "job.gcode")
	require.NoError(t, os.WriteFile(src, []byte("; printer_model = MK3S\n"), 0o644))

	rec := metadata.NewRecord(src, metadata.ToolpathSchema, nil)
	rec.Apply("printer_model", "MK3S")
	rec.Apply("brim_width", "3")
	rec.SetThumbnail("640x480_PNG", []byte("cHJldmlldw=="))
	rec.SetThumbnail("100x100_PNG", []byte("aWNvbg=="))
	return src, rec
}

// touch sets a file's times, keeping mtime ordering deterministic.
func touch(t *testing.T, path string, at time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, at, at))
}

func TestFileCacheRoundTrip(t *testing.T) {
	src, rec := cacheFixture(t)
	cm := metadata.NewFileCacheManager(nil, "1.2.3")

	require.NoError(t, cm.Store(src, rec))
	touch(t, src, time.Now().Add(-time.Hour))

	payload, err := cm.Load(src)
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Equal(t, "1.2.3", payload.Version)
	assert.Equal(t, metadata.CacheSchemaVersion, payload.Schema)
	assert.Equal(t, "MK3S", payload.Attributes["printer_model"])
	assert.EqualValues(t, 3, payload.Attributes["brim_width"])
	require.NotNil(t, payload.Preview)
	assert.Equal(t, 640, payload.Preview.Width)
	assert.Equal(t, "cHJldmlldw==", payload.Preview.Data)
	require.NotNil(t, payload.Icon)
	assert.Equal(t, 100, payload.Icon.Width)

	hydrated := metadata.NewRecord(src, metadata.ToolpathSchema, nil)
	payload.Apply(hydrated)
	assert.Equal(t, "MK3S", hydrated.Attributes["printer_model"])
	assert.Equal(t, []byte("cHJldmlldw=="), hydrated.Thumbnails["640x480_PNG"])
	assert.Equal(t, []byte("aWNvbg=="), hydrated.Thumbnails["100x100_PNG"])
}

func TestFileCacheMissingSideFile(t *testing.T) {
	src, _ := cacheFixture(t)
	cm := metadata.NewFileCacheManager(nil, "1.2.3")

	_, err := cm.Load(src)
	assert.ErrorIs(t, err, metadata.ErrCacheInvalid)
}

func TestFileCacheStaleSideFileIgnored(t *testing.T) {
	src, rec := cacheFixture(t)
	cm := metadata.NewFileCacheManager(nil, "1.2.3")
	require.NoError(t, cm.Store(src, rec))

	// Source modified after the side-file was written.
	touch(t, metadata.CachePath(src), time.Now().Add(-time.Hour))
	payload, err := cm.Load(src)
	assert.NoError(t, err)
	assert.Nil(t, payload)
	// Never deleted, only ignored.
	_, statErr := os.Stat(metadata.CachePath(src))
	assert.NoError(t, statErr)
}

func TestFileCacheVersionMismatchIgnored(t *testing.T) {
	src, rec := cacheFixture(t)
	require.NoError(t, metadata.NewFileCacheManager(nil, "1.0.0").Store(src, rec))
	touch(t, src, time.Now().Add(-time.Hour))

	payload, err := metadata.NewFileCacheManager(nil, "2.0.0").Load(src)
	assert.NoError(t, err)
	assert.Nil(t, payload)
	_, statErr := os.Stat(metadata.CachePath(src))
	assert.NoError(t, statErr)
}

func TestFileCacheSchemaMismatchIgnored(t *testing.T) {
	src, _ := cacheFixture(t)
	raw := `{"version":"1.2.3","schema":"0.9","attributes":{"printer_model":"MK3S"}}`
	require.NoError(t, os.WriteFile(metadata.CachePath(src), []byte(raw), 0o644))
	touch(t, src, time.Now().Add(-time.Hour))

	payload, err := metadata.NewFileCacheManager(nil, "1.2.3").Load(src)
	assert.NoError(t, err)
	assert.Nil(t, payload)
	_, statErr := os.Stat(metadata.CachePath(src))
	assert.NoError(t, statErr)
}

func TestFileCacheCorruptSideFile(t *testing.T) {
	src, _ := cacheFixture(t)
	require.NoError(t, os.WriteFile(metadata.CachePath(src), []byte("{not json"), 0o644))
	touch(t, src, time.Now().Add(-time.Hour))

	_, err := metadata.NewFileCacheManager(nil, "1.2.3").Load(src)
	assert.ErrorIs(t, err, metadata.ErrCacheInvalid)
}

func TestFileCacheSkipsEmptyRecord(t *testing.T) {
	src, _ := cacheFixture(t)
	empty := metadata.NewRecord(src, metadata.ToolpathSchema, nil)
	require.NoError(t, metadata.NewFileCacheManager(nil, "1.2.3").Store(src, empty))

	_, err := os.Stat(metadata.CachePath(src))
	assert.True(t, os.IsNotExist(err))
}

func TestNoOpCacheManager(t *testing.T) {
	src, rec := cacheFixture(t)
	cm := &metadata.NoOpCacheManager{}
	require.NoError(t, cm.Store(src, rec))
	payload, err := cm.Load(src)
	assert.NoError(t, err)
	assert.Nil(t, payload)
	_, statErr := os.Stat(metadata.CachePath(src))
	assert.True(t, os.IsNotExist(statErr))
}
