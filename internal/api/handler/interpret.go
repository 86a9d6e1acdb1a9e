package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ansium/paperdigest/internal/api/middleware"
	"github.com/ansium/paperdigest/internal/api/response"
	"github.com/ansium/paperdigest/internal/queue"
	"github.com/ansium/paperdigest/internal/store"
	"github.com/ansium/paperdigest/internal/upload"
	"github.com/ansium/paperdigest/internal/worker"
	"github.com/ansium/paperdigest/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxMultipartMemory = 8 << 20

// Submitter accepts a new interpretation job.
type Submitter interface {
	Submit(ctx context.Context, userID uuid.UUID, input models.JobInput) (*models.Job, error)
}

// NewSubmitHandler returns the handler for POST /api/v1/interpretations.
// It accepts either multipart/form-data with a "file" part (optionally a
// "text" field) or a JSON body with a "text" field. Responds 202 with the
// pending job; clients poll for the terminal state.
func NewSubmitHandler(svc Submitter, stagingDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		var input models.JobInput

		contentType := r.Header.Get("Content-Type")
		if strings.HasPrefix(contentType, "multipart/form-data") {
			if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid multipart body", nil)
				return
			}
			input.Text = r.FormValue("text")

			file, header, err := r.FormFile("file")
			if err == nil {
				defer file.Close()
				path, err := upload.Save(stagingDir, header.Filename, file)
				if err != nil {
					response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Could not stage uploaded file", nil)
					return
				}
				input.FilePath = path
			}
		} else {
			var req struct {
				Text string `json:"text"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
				return
			}
			input.Text = req.Text
		}

		job, err := svc.Submit(r.Context(), userID, input)
		if err != nil {
			if errors.Is(err, worker.ErrEmptyInput) {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"Either text or a file is required", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to create job", nil)
			return
		}

		response.Accepted(w, jobResponse(job))
	}
}

// NewPollHandler returns the handler for GET /api/v1/interpretations/{jobID}.
// In-flight jobs answer from the Redis status mirror; terminal jobs are read
// from the store so the result or error is included.
func NewPollHandler(st store.Store, q queue.Queue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid job id", nil)
			return
		}

		if status, found, err := q.GetJobStatus(r.Context(), jobID); err == nil && found &&
			status != models.JobStatusCompleted && status != models.JobStatusFailed {
			response.JSON(w, map[string]any{"id": jobID, "status": status})
			return
		}

		job, err := st.GetJob(r.Context(), jobID, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load job", nil)
			return
		}

		response.JSON(w, jobResponse(job))
	}
}

func jobResponse(job *models.Job) map[string]any {
	resp := map[string]any{
		"id":         job.ID,
		"type":       job.Type,
		"status":     job.Status,
		"created_at": job.CreatedAt,
		"updated_at": job.UpdatedAt,
	}
	if job.Result != nil {
		resp["result"] = job.Result
	}
	if job.ErrorMessage != nil {
		resp["error_message"] = *job.ErrorMessage
	}
	return resp
}
