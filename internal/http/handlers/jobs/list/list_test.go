package list

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/nameparse-bff/internal/backend"
	"github.com/magabrotheeeer/nameparse-bff/internal/models"
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, scope session.Scope) ([]models.Job, error) {
	args := m.Called(ctx, scope)
	jobs, _ := args.Get(0).([]models.Job)
	return jobs, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestListHandler(t *testing.T) {
	tests := []struct {
		name           string
		jobs           []models.Job
		err            error
		wantStatusCode int
		wantBody       []string
	}{
		{
			name:           "jobs still running",
			jobs:           []models.Job{{ID: "j1", Status: models.JobProcessing}, {ID: "j2", Status: models.JobCompleted}},
			wantStatusCode: http.StatusOK,
			wantBody:       []string{`"id":"j1"`, `"all_terminal":false`},
		},
		{
			name:           "no jobs",
			jobs:           []models.Job{},
			wantStatusCode: http.StatusOK,
			wantBody:       []string{`"jobs":[]`, `"all_terminal":true`},
		},
		{
			name:           "not logged in",
			err:            backend.ErrUnauthorized,
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       []string{"unauthorized"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("List", mock.Anything, mock.Anything).Return(tt.jobs, tt.err).Once()

			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil))

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
			svc.AssertExpectations(t)
		})
	}
}
