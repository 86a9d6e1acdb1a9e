package models

import (
	"time"

	"github.com/google/uuid"
)

// InterpretationRecord archives a completed interpretation for a user.
// JobID is nullable: history outlives the job it was recorded from.
// Preview fields hold at most 500 bytes and are always a prefix of the
// corresponding full field.
type InterpretationRecord struct {
	ID                    uuid.UUID          `db:"id"                     json:"id"`
	UserID                uuid.UUID          `db:"user_id"                json:"user_id"`
	JobID                 *uuid.UUID         `db:"job_id"                 json:"job_id,omitempty"`
	ContentPreview        string             `db:"content_preview"        json:"content_preview"`
	Content               string             `db:"content"                json:"content"`
	InterpretationPreview string             `db:"interpretation_preview" json:"interpretation_preview"`
	Interpretation        string             `db:"interpretation"         json:"interpretation"`
	Recommendations       []RecommendedPaper `db:"recommendations"        json:"recommendations"`
	CreatedAt             time.Time          `db:"created_at"             json:"created_at"`
}
