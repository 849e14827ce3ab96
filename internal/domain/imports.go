package domain

import "time"

// ImportRunStatus is the state of a batch sheet import.
type ImportRunStatus string

const (
	ImportPending    ImportRunStatus = "pending"
	ImportProcessing ImportRunStatus = "processing"
	ImportCompleted  ImportRunStatus = "completed"
	ImportFailed     ImportRunStatus = "failed"
)

// ImportFileStatus is the state of one file inside an import run.
type ImportFileStatus string

const (
	FileQueued     ImportFileStatus = "queued"
	FileProcessing ImportFileStatus = "processing"
	FileCompleted  ImportFileStatus = "completed"
	FileFailed     ImportFileStatus = "failed"
)

// ImportRun tracks one batch of job sheets.
type ImportRun struct {
	ID             int64           `json:"id" db:"id"`
	Source         string          `json:"source" db:"source"`
	Status         ImportRunStatus `json:"status" db:"status"`
	TotalFiles     int             `json:"total_files" db:"total_files"`
	ProcessedFiles int             `json:"processed_files" db:"processed_files"`
	TotalRows      int             `json:"total_rows" db:"total_rows"`
	StartedBy      string          `json:"started_by" db:"started_by"`
	StartedAt      time.Time       `json:"started_at" db:"started_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	ErrorMessage   string          `json:"error_message,omitempty" db:"error_message"`
	Files          []*ImportFile   `json:"files,omitempty" db:"-"`
}

// ImportFile tracks the processing of a single sheet.
type ImportFile struct {
	ID           int64            `json:"id" db:"id"`
	RunID        int64            `json:"run_id" db:"run_id"`
	FileName     string           `json:"file_name" db:"file_name"`
	Status       ImportFileStatus `json:"status" db:"status"`
	Rows         int              `json:"rows" db:"rows"`
	ErrorMessage string           `json:"error_message,omitempty" db:"error_message"`
	ProcessedAt  *time.Time       `json:"processed_at,omitempty" db:"processed_at"`
}

// UploadedFile is a sheet saved to local disk awaiting import.
type UploadedFile struct {
	Filename string
	Path     string
	Size     int64
}
