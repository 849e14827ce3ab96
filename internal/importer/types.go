package importer

import (
	"context"

	"github.com/andresuchdata/eximdesk/internal/domain"
)

// Import sources recorded on runs.
const (
	SourceUpload = "upload"
	SourceDrive  = "drive"
	SourceCLI    = "cli"
)

// Outcome is what happened to one job of a sheet.
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeUpdated
	OutcomeSkipped
)

// JobWriter persists one parsed job. sheet is the name of the file the job was
// read from.
type JobWriter interface {
	ImportJob(ctx context.Context, job *domain.Job, sheet string) (Outcome, error)
}

// Config holds configuration for the import worker pool
type Config struct {
	WorkerCount int // Number of concurrent workers
	// KeepFiles leaves processed sheets on disk.
	KeepFiles bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		WorkerCount: 4,
	}
}

// FileStats summarizes one processed sheet.
type FileStats struct {
	Rows    int
	Created int
	Updated int
	Skipped int
}
