package checkout

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/nameparse-bff/internal/models"
	"github.com/magabrotheeeer/nameparse-bff/internal/services/account"
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreateCheckout(ctx context.Context, scope session.Scope, req models.CheckoutRequest) (string, error) {
	args := m.Called(ctx, scope, req)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCheckoutHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		wantStatusCode int
		wantBody       string
	}{
		{
			name: "checkout created",
			body: `{"plan":"STANDARD","interval":"month"}`,
			setupMock: func(m *MockService) {
				m.On("CreateCheckout", mock.Anything, mock.Anything,
					models.CheckoutRequest{Plan: models.PlanStandard, Interval: "month"}).
					Return("https://pay.example/cs_2", nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantBody:       `"checkout_url":"https://pay.example/cs_2"`,
		},
		{
			name:           "free plan cannot be bought",
			body:           `{"plan":"FREE"}`,
			setupMock:      func(*MockService) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantBody:       "field Plan must be one of [STANDARD ENTERPRISE]",
		},
		{
			name: "anonymous visitor",
			body: `{"plan":"ENTERPRISE"}`,
			setupMock: func(m *MockService) {
				m.On("CreateCheckout", mock.Anything, mock.Anything, mock.Anything).
					Return("", account.ErrNoSession).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
			wantBody:       "unauthorized",
		},
		{
			name:           "broken json",
			body:           `{"plan":`,
			setupMock:      func(*MockService) {},
			wantStatusCode: http.StatusBadRequest,
			wantBody:       "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/checkout", strings.NewReader(tt.body))
			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
