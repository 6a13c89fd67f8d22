package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusProcessing RunStatus = "processing"
	RunStatusSucceeded  RunStatus = "succeeded"
	RunStatusFailed     RunStatus = "failed"
)

// PipelineRun is the audit record of one document processed through the pipeline.
type PipelineRun struct {
	ID          uuid.UUID  `db:"id"`
	RequestID   string     `db:"request_id"`
	DocumentRef string     `db:"document_ref"`
	OutputDir   string     `db:"output_dir"`
	Status      RunStatus  `db:"status"`
	Error       string     `db:"error"`
	OCRFailed   bool       `db:"ocr_failed"`
	StartedAt   time.Time  `db:"started_at"`
	FinishedAt  *time.Time `db:"finished_at"`
}
