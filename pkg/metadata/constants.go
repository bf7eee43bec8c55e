package metadata

// Constants defining default values for extraction options and the fixed
// parameters of the scan grammar. The window and budget defaults mirror the
// slicer conventions the grammar was built for: metadata is concentrated in
// the first few hundred kilobytes and the trailing tail of a toolpath file.
const (
	// DefaultStartWindowBytes is the byte budget scanned at the start of a
	// toolpath file.
	DefaultStartWindowBytes = 400_000
	// DefaultEndWindowBytes is the byte budget scanned at the end of a
	// toolpath file.
	DefaultEndWindowBytes = 40_000
	// DefaultStatusScanBudget bounds how many bytes of code lines are
	// examined for the M73 status code before that scan is abandoned.
	DefaultStatusScanBudget = 100_000

	// DefaultCacheEnabled is the default state for the cache side-file.
	DefaultCacheEnabled = true

	// CacheFileSuffix is appended (with a leading dot prepended to the file
	// name) to form the cache side-file name.
	CacheFileSuffix = ".cache"
	// CacheSchemaVersion tags the cache side-file structure. A side-file
	// whose version differs from the running tool is treated as absent.
	CacheSchemaVersion = "1.0"

	// DefaultThumbnailFormat is assumed when a thumbnail begin marker
	// carries no format tag.
	DefaultThumbnailFormat = "PNG"
	// MinThumbnailDim is the floor below which an image is never selected
	// for either preview or icon duty.
	MinThumbnailDim = 50
)

// ToolpathExtensions are the file extensions dispatched to the toolpath
// family.
var ToolpathExtensions = []string{".gcode", ".gc", ".g", ".gco"}

// ArchiveExtensions are the file extensions dispatched to the archive
// family.
var ArchiveExtensions = []string{".sl1"}

// PreviewTarget and IconTarget are the two fixed selection targets used
// when persisting thumbnails to the cache side-file.
var (
	PreviewTarget = ImageInfo{Width: 640, Height: 480, Format: "PNG"}
	IconTarget    = ImageInfo{Width: 100, Height: 100, Format: "PNG"}
)
