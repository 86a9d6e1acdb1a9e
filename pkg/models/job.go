// Package models contains shared data models used across the PaperDigest codebase.
package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

const (
	JobTypeInterpretation = "interpretation"
	JobTypeSearch         = "search"
)

// Job tracks an async interpretation job. The API returns a job id on
// POST /api/v1/interpretations; the client polls GET /api/v1/interpretations/{job_id}
// until status is completed or failed. Result and ErrorMessage are mutually
// exclusive: exactly one is set once the job reaches a terminal status.
type Job struct {
	ID           uuid.UUID  `db:"id"            json:"id"`
	UserID       uuid.UUID  `db:"user_id"       json:"user_id"`
	Type         string     `db:"type"          json:"type"`
	Status       string     `db:"status"        json:"status"`
	Input        JobInput   `db:"input"         json:"input"`
	Result       *JobResult `db:"result"        json:"result,omitempty"`
	ErrorMessage *string    `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time  `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"    json:"updated_at"`
}

// JobInput is the job payload: either a staged file path or inline text.
// When both are set, inline text wins.
type JobInput struct {
	FilePath string `json:"file_path,omitempty"`
	Text     string `json:"text,omitempty"`
}

// JobResult is the assembled output of a completed interpretation job.
// OriginalContent holds at most the first 2,000 bytes of the extracted
// content, with a "..." marker when the content was longer.
type JobResult struct {
	Interpretation  string             `json:"interpretation"`
	OriginalContent string             `json:"original_content"`
	Recommendations []RecommendedPaper `json:"recommendations"`
	ProcessedAt     time.Time          `json:"processed_at"`
	ContentLength   int                `json:"content_length"`
}
