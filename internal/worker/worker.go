// Package worker runs the interpretation job pipeline: it pulls jobs off the
// queue, drives each one through the extract -> interpret -> search steps,
// and persists the terminal status with retry on unexpected failure.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ansium/paperdigest/internal/config"
	"github.com/ansium/paperdigest/internal/queue"
	"github.com/ansium/paperdigest/internal/store"
	"github.com/ansium/paperdigest/pkg/models"
	"github.com/google/uuid"
)

const (
	// previewCap bounds the original-content excerpt stored on the result.
	previewCap = 2000

	// dequeueBlock is how long a worker blocks on an empty queue before
	// re-checking for shutdown.
	dequeueBlock = 5 * time.Second

	// statusTTL keeps the Redis status mirror alive long enough for pollers.
	statusTTL = 30 * time.Minute
)

// errNoContent marks the terminal, non-retryable empty-content failure.
var errNoContent = errors.New("could not extract content")

// Extractor produces the job's plain-text content.
type Extractor interface {
	Content(filePath, text string) string
}

// Interpreter generates the interpretation text. Degraded outcomes (service
// not configured, empty response) come back as text with a nil error;
// transport failures come back as errors and count against the retry budget.
type Interpreter interface {
	Interpret(ctx context.Context, content string) (string, error)
}

// Searcher returns related works; it degrades to an empty list on failure.
type Searcher interface {
	Related(ctx context.Context, content string) []models.RecommendedPaper
}

// Recorder archives a completed result. Called fire-and-forget; failures
// must not reach the job.
type Recorder interface {
	Record(userID uuid.UUID, jobID uuid.UUID, result *models.JobResult)
}

// Pool executes jobs with a fixed number of workers. Jobs for different ids
// run fully in parallel; a single job's steps are sequential except for the
// bounded-wait search fan-out.
type Pool struct {
	store       store.Store
	queue       queue.Queue
	extractor   Extractor
	interpreter Interpreter
	searcher    Searcher
	recorder    Recorder
	cfg         config.WorkerConfig
	searchWait  time.Duration
}

// NewPool creates a worker pool.
func NewPool(st store.Store, q queue.Queue, ex Extractor, in Interpreter, se Searcher, rec Recorder,
	cfg config.WorkerConfig, searchWait time.Duration) *Pool {
	return &Pool{
		store:       st,
		queue:       q,
		extractor:   ex,
		interpreter: in,
		searcher:    se,
		recorder:    rec,
		cfg:         cfg,
		searchWait:  searchWait,
	}
}

// Run starts the configured number of workers and blocks until ctx is
// cancelled and all workers have drained.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.work(ctx, id)
		}(i)
	}
	wg.Wait()
}

func (p *Pool) work(ctx context.Context, id int) {
	slog.Info("worker started", "worker", id)
	for {
		task, err := p.queue.Dequeue(ctx, dequeueBlock)
		if errors.Is(err, queue.ErrEmpty) {
			if ctx.Err() != nil {
				slog.Info("worker stopping", "worker", id)
				return
			}
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("worker stopping", "worker", id)
				return
			}
			slog.Error("dequeue failed", "worker", id, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		p.process(ctx, task)

		if ctx.Err() != nil {
			slog.Info("worker stopping", "worker", id)
			return
		}
	}
}

// process runs one job to a terminal state, retrying the whole pipeline on
// unexpected failure up to the retry budget. Empty-content failures are
// terminal immediately.
func (p *Pool) process(ctx context.Context, task queue.Task) {
	for attempt := 0; ; attempt++ {
		err := p.runJob(ctx, task)
		if err == nil {
			return
		}

		p.fail(ctx, task.JobID, err.Error())

		if errors.Is(err, errNoContent) {
			slog.Warn("job failed: no content", "job_id", task.JobID)
			return
		}
		if attempt >= p.cfg.MaxRetries {
			slog.Error("job failed permanently", "job_id", task.JobID,
				"attempts", attempt+1, "error", err)
			return
		}

		slog.Warn("job attempt failed, retrying", "job_id", task.JobID,
			"attempt", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.cfg.RetryDelay):
		}
	}
}

// runJob executes one attempt of the full pipeline. It recovers panics into
// errors so the retry policy applies uniformly.
func (p *Pool) runJob(ctx context.Context, task queue.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	job, err := p.store.GetJob(ctx, task.JobID, task.UserID)
	if err != nil {
		return fmt.Errorf("loading job: %w", err)
	}
	if job.Status == models.JobStatusCompleted {
		// Redelivered terminal job; nothing to do.
		return nil
	}

	if err := p.transition(ctx, job.ID, models.JobStatusProcessing); err != nil {
		return fmt.Errorf("marking job processing: %w", err)
	}

	content := p.extractor.Content(job.Input.FilePath, job.Input.Text)
	if content == "" {
		return errNoContent
	}

	interpretation, err := p.interpreter.Interpret(ctx, content)
	if err != nil {
		return fmt.Errorf("interpreting content: %w", err)
	}

	recommendations := p.searchRelated(ctx, content)

	result := &models.JobResult{
		Interpretation:  interpretation,
		OriginalContent: preview(content),
		Recommendations: recommendations,
		ProcessedAt:     time.Now().UTC(),
		ContentLength:   len(content),
	}

	if err := p.store.UpdateJobStatus(ctx, job.ID, models.JobStatusCompleted, store.WithResult(result)); err != nil {
		return fmt.Errorf("storing result: %w", err)
	}
	_ = p.queue.SetJobStatus(ctx, job.ID, models.JobStatusCompleted, statusTTL)

	go p.recorder.Record(job.UserID, job.ID, result)

	slog.Info("job completed", "job_id", job.ID,
		"content_length", result.ContentLength,
		"recommendations", len(result.Recommendations))
	return nil
}

// searchRelated dispatches the literature search as its own unit of work and
// waits at most searchWait for it. An expired wait yields an empty list, not
// a job failure.
func (p *Pool) searchRelated(ctx context.Context, content string) []models.RecommendedPaper {
	searchCtx, cancel := context.WithTimeout(ctx, p.searchWait)
	defer cancel()

	ch := make(chan []models.RecommendedPaper, 1)
	go func() {
		ch <- p.searcher.Related(searchCtx, content)
	}()

	select {
	case papers := <-ch:
		if papers == nil {
			return []models.RecommendedPaper{}
		}
		return papers
	case <-searchCtx.Done():
		slog.Warn("literature search wait expired")
		return []models.RecommendedPaper{}
	}
}

func (p *Pool) transition(ctx context.Context, jobID uuid.UUID, status string) error {
	if err := p.store.UpdateJobStatus(ctx, jobID, status); err != nil {
		return err
	}
	_ = p.queue.SetJobStatus(ctx, jobID, status, statusTTL)
	return nil
}

func (p *Pool) fail(ctx context.Context, jobID uuid.UUID, msg string) {
	if err := p.store.UpdateJobStatus(ctx, jobID, models.JobStatusFailed, store.WithErrorMessage(msg)); err != nil {
		slog.Error("failed to mark job failed", "job_id", jobID, "error", err)
	}
	_ = p.queue.SetJobStatus(ctx, jobID, models.JobStatusFailed, statusTTL)
}

// preview returns the first previewCap bytes of content with a marker when
// content was longer.
func preview(content string) string {
	if len(content) <= previewCap {
		return content
	}
	return truncate(content, previewCap) + "..."
}
