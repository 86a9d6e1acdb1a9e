// Package history archives completed interpretations, decoupled from the
// job's terminal transition.
package history

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/ansium/paperdigest/internal/store"
	"github.com/ansium/paperdigest/pkg/models"
	"github.com/google/uuid"
)

// PreviewCap bounds the preview fields of a history record. Previews are
// always a prefix of the corresponding full field.
const PreviewCap = 500

const recordTimeout = 10 * time.Second

// Recorder writes interpretation history records. Record is fire-and-forget:
// failures are logged and never reach the job that produced the result.
type Recorder struct {
	store store.Store
}

// NewRecorder creates a Recorder backed by the given store.
func NewRecorder(st store.Store) *Recorder {
	return &Recorder{store: st}
}

// Record archives one completed result for the user. It uses its own
// timeout-bounded context because it outlives the job's processing.
func (r *Recorder) Record(userID uuid.UUID, jobID uuid.UUID, result *models.JobResult) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	rec := NewRecord(userID, jobID, result)
	if err := r.store.CreateHistory(ctx, rec); err != nil {
		slog.Error("failed to record interpretation history",
			"job_id", jobID, "user_id", userID, "error", err)
		return
	}
	slog.Debug("interpretation history recorded", "job_id", jobID)
}

// NewRecord builds the history record for a completed result, deriving
// bounded previews from the full fields.
func NewRecord(userID uuid.UUID, jobID uuid.UUID, result *models.JobResult) *models.InterpretationRecord {
	jid := jobID
	return &models.InterpretationRecord{
		ID:                    uuid.New(),
		UserID:                userID,
		JobID:                 &jid,
		ContentPreview:        truncate(result.OriginalContent, PreviewCap),
		Content:               result.OriginalContent,
		InterpretationPreview: truncate(result.Interpretation, PreviewCap),
		Interpretation:        result.Interpretation,
		Recommendations:       result.Recommendations,
		CreatedAt:             time.Now().UTC(),
	}
}

// truncate shortens s to maxBytes without splitting UTF-8 runes.
func truncate(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
