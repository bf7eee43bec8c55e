package metadata

import "errors"

// Error categories returned by the library. Callers can check against these
// using errors.Is.

var (
	// ErrUnknownFileType indicates the file extension matches neither the
	// toolpath nor the archive family. Returned before any content I/O.
	ErrUnknownFileType = errors.New("unknown print file type")

	// ErrMalformedArchive indicates an archive-family file could not be
	// opened or read as a zip container. Distinct from an archive that opens
	// fine but carries no config entry, which yields empty metadata and no
	// error.
	ErrMalformedArchive = errors.New("malformed print archive")

	// ErrCacheInvalid indicates the cache side-file is missing, unreadable,
	// or structurally invalid. The Extract orchestration absorbs this and
	// falls back to a full scan.
	ErrCacheInvalid = errors.New("invalid metadata cache")

	// ErrThumbnailMismatch indicates a captured thumbnail body whose length
	// disagrees with the length declared on its begin marker.
	ErrThumbnailMismatch = errors.New("thumbnail length mismatch")

	// ErrChunkedUnsupported indicates chunked delivery was attempted on a
	// file family that only supports whole-file extraction.
	ErrChunkedUnsupported = errors.New("chunked scanning not supported for this file family")

	// ErrConfigValidation indicates the provided Options failed validation.
	ErrConfigValidation = errors.New("invalid extraction options")
)
