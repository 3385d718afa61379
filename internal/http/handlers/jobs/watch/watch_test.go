package watch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/nameparse-bff/internal/backend"
	"github.com/magabrotheeeer/nameparse-bff/internal/jobs"
	"github.com/magabrotheeeer/nameparse-bff/internal/models"
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
)

// fetcher возвращает статусы по очереди, повторяя последний.
type fetcher struct {
	mu       sync.Mutex
	statuses []models.JobStatus
	err      error
}

func (f *fetcher) next() models.JobStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return s
}

func (f *fetcher) List(context.Context) ([]models.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.Job{{ID: "j1", Status: f.next()}}, nil
}

func (f *fetcher) Get(context.Context, string) (*models.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Job{ID: "j1", Status: f.next()}, nil
}

type service struct{ f *fetcher }

func (s service) Poller(_ session.Scope, jobID string, opts ...jobs.Option) *jobs.Poller {
	opts = append(opts, jobs.WithInterval(10*time.Millisecond))
	return jobs.NewPoller(s.f, jobID, newNoopLogger(), opts...)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func watch(t *testing.T, f *fetcher, query string) string {
	t.Helper()
	srv := httptest.NewServer(New(newNoopLogger(), service{f: f}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+query, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestWatchHandler_StreamsUntilTerminal(t *testing.T) {
	f := &fetcher{statuses: []models.JobStatus{models.JobPending, models.JobProcessing, models.JobCompleted}}

	body := watch(t, f, "?id=j1")

	assert.Equal(t, 3, strings.Count(body, "event: jobs\n"))
	assert.Contains(t, body, `"status":"pending"`)
	assert.Contains(t, body, `"status":"completed"`)
	assert.True(t, strings.HasSuffix(body, "event: done\ndata: {\"status\":\"OK\"}\n\n"))
}

func TestWatchHandler_AlreadyTerminal(t *testing.T) {
	f := &fetcher{statuses: []models.JobStatus{models.JobFailed}}

	body := watch(t, f, "")

	assert.Equal(t, 1, strings.Count(body, "event: jobs\n"))
	assert.Contains(t, body, "event: done\n")
}

func TestWatchHandler_InitialErrorIsReported(t *testing.T) {
	f := &fetcher{err: backend.ErrNotFound}

	body := watch(t, f, "?id=missing")

	assert.Contains(t, body, "event: error\n")
	assert.Contains(t, body, `"error":"not found"`)
	assert.NotContains(t, body, "event: done")
}
