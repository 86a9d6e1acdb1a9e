package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ansium/paperdigest/internal/api"
	mw "github.com/ansium/paperdigest/internal/api/middleware"
	"github.com/ansium/paperdigest/internal/queue"
	"github.com/ansium/paperdigest/internal/store"
	"github.com/ansium/paperdigest/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testAPIKey = "pd_test_0123456789abcdef"

// routerStore serves the auth middleware with a single seeded key.
type routerStore struct {
	key *models.APIKey
}

func (s *routerStore) Ping(ctx context.Context) error { return nil }

func (s *routerStore) GetDefaultUser(ctx context.Context) (*models.User, error) {
	return nil, store.ErrNotFound
}

func (s *routerStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	if s.key != nil && s.key.KeyPrefix == prefix {
		return []*models.APIKey{s.key}, nil
	}
	return nil, nil
}

func (s *routerStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error { return nil }

func (s *routerStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error { return nil }

func (s *routerStore) CreateJob(ctx context.Context, job *models.Job) error { return nil }

func (s *routerStore) GetJob(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Job, error) {
	return nil, store.ErrNotFound
}

func (s *routerStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...store.JobUpdateOption) error {
	return nil
}

func (s *routerStore) CreateHistory(ctx context.Context, rec *models.InterpretationRecord) error {
	return nil
}

func (s *routerStore) ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.InterpretationRecord, int, error) {
	return nil, 0, nil
}

type routerQueue struct{}

func (q *routerQueue) Enqueue(ctx context.Context, task queue.Task) error { return nil }

func (q *routerQueue) Dequeue(ctx context.Context, block time.Duration) (queue.Task, error) {
	return queue.Task{}, queue.ErrEmpty
}

func (q *routerQueue) SetJobStatus(ctx context.Context, jobID uuid.UUID, status string, ttl time.Duration) error {
	return nil
}

func (q *routerQueue) GetJobStatus(ctx context.Context, jobID uuid.UUID) (string, bool, error) {
	return "", false, nil
}

func (q *routerQueue) IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	return 1, nil
}

func (q *routerQueue) Ping(ctx context.Context) error { return nil }
func (q *routerQueue) Close() error                   { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testAPIKey), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now().UTC()

	st := &routerStore{key: &models.APIKey{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Name:      "test",
		KeyHash:   string(hash),
		KeyPrefix: testAPIKey[:8],
		CreatedAt: now,
		UpdatedAt: now,
	}}

	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

	return api.NewRouter(api.Dependencies{
		Auth:           mw.NewAuth(st),
		RateLimit:      mw.NewRateLimit(&routerQueue{}, 60),
		HealthHandler:  ok,
		SubmitHandler:  ok,
		PollJobHandler: ok,
		HistoryHandler: ok,
	})
}

func TestHealthIsPublic(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/interpretations"},
		{http.MethodGet, "/api/v1/interpretations/" + uuid.NewString()},
		{http.MethodGet, "/api/v1/history"},
	}
	for _, rt := range routes {
		req := httptest.NewRequest(rt.method, rt.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", rt.method, rt.path)
	}
}

func TestProtectedRoutesAcceptValidKey(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("X-RateLimit-Limit"))
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNilHandlerReturnsNotImplemented(t *testing.T) {
	router := api.NewRouter(api.Dependencies{
		Auth:      mw.NewAuth(&routerStore{}),
		RateLimit: mw.NewRateLimit(&routerQueue{}, 60),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
