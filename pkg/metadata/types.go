package metadata

// Family identifies the print file family a source belongs to.
type Family string

const (
	// FamilyToolpath covers plain-text toolpath files produced for
	// filament printers. Metadata lives in comment lines near the start and
	// end of the file.
	FamilyToolpath Family = "toolpath"
	// FamilyArchive covers zip-packaged job files for resin printers.
	// Metadata lives in a config entry, previews as zipped image entries.
	FamilyArchive Family = "archive"
)

// Stage identifies one step of the Extract orchestration. Each stage
// produces its own result so the orchestrator can fold partial failures
// instead of swallowing them wholesale.
type Stage string

const (
	StageCacheLoad   Stage = "cache-load"
	StagePathScan    Stage = "path-scan"
	StageContentScan Stage = "content-scan"
	StageCacheStore  Stage = "cache-store"
)

// StageResult records the outcome of a single orchestration stage.
type StageResult struct {
	Stage Stage
	Err   error
}

// Report summarises one Extract run.
type Report struct {
	CacheHit bool
	Stages   []StageResult
}

// Failed reports whether any stage ended with an error.
func (r Report) Failed() bool {
	for _, s := range r.Stages {
		if s.Err != nil {
			return true
		}
	}
	return false
}
