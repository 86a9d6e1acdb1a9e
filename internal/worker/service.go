package worker

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/ansium/paperdigest/internal/queue"
	"github.com/ansium/paperdigest/internal/store"
	"github.com/ansium/paperdigest/pkg/models"
	"github.com/google/uuid"
)

// ErrEmptyInput is returned when a submission carries neither text nor a file.
var ErrEmptyInput = errors.New("job input must include text or a file")

// Service accepts new jobs: it persists a pending record and pushes a task
// onto the queue for the pool to pick up.
type Service struct {
	store store.Store
	queue queue.Queue
}

// NewService creates a job submission service.
func NewService(st store.Store, q queue.Queue) *Service {
	return &Service{store: st, queue: q}
}

// Submit creates a pending job and enqueues it. Returns the job immediately;
// the caller polls for the terminal state.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, input models.JobInput) (*models.Job, error) {
	if input.Text == "" && input.FilePath == "" {
		return nil, ErrEmptyInput
	}

	now := time.Now().UTC()
	job := &models.Job{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      models.JobTypeInterpretation,
		Status:    models.JobStatusPending,
		Input:     input,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}
	_ = s.queue.SetJobStatus(ctx, job.ID, models.JobStatusPending, statusTTL)

	if err := s.queue.Enqueue(ctx, queue.Task{JobID: job.ID, UserID: userID}); err != nil {
		return nil, fmt.Errorf("enqueueing job: %w", err)
	}

	return job, nil
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
