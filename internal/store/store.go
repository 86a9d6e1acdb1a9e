package store

import (
	"context"
	"errors"

	"github.com/ansium/paperdigest/pkg/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")
var ErrInvalidTransition = errors.New("invalid job status transition")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error
	GetDefaultUser(ctx context.Context) (*models.User, error)

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error

	CreateHistory(ctx context.Context, rec *models.InterpretationRecord) error
	ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.InterpretationRecord, int, error)
}

// JobUpdate carries the optional fields of a status update. At most one of
// ErrorMessage and Result may be set.
type JobUpdate struct {
	ErrorMessage *string
	Result       *models.JobResult
}

type JobUpdateOption func(*JobUpdate)

func WithErrorMessage(msg string) JobUpdateOption {
	return func(p *JobUpdate) {
		p.ErrorMessage = &msg
	}
}

func WithResult(result *models.JobResult) JobUpdateOption {
	return func(p *JobUpdate) {
		p.Result = result
	}
}
