package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/nameparse-bff/internal/config"
	"github.com/magabrotheeeer/nameparse-bff/internal/guard"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/middlewarectx"
	"github.com/magabrotheeeer/nameparse-bff/internal/models"
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

type stubSources struct {
	account guard.Account
	grace   bool
	pending bool
}

func (s stubSources) Account(context.Context) guard.Account    { return s.account }
func (s stubSources) GraceActive(context.Context) bool         { return s.grace }
func (s stubSources) PendingRegistration(context.Context) bool { return s.pending }
func (s stubSources) Sources(session.Scope) guard.Sources      { return s }

type stubResolver struct {
	scope session.Scope
	err   error
}

func (s stubResolver) Resolve(http.ResponseWriter, *http.Request) (session.Scope, error) {
	return s.scope, s.err
}

func TestSessionMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		resolver       stubResolver
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "scope in context",
			resolver:       stubResolver{scope: session.Scope{SessionID: "s", DeviceID: "d"}},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
		{
			name:           "resolver error",
			resolver:       stubResolver{err: errors.New("entropy exhausted")},
			wantStatusCode: http.StatusInternalServerError,
			wantCalled:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				assert.Equal(t, tt.resolver.scope, middlewarectx.Scope(r.Context()))
				w.WriteHeader(http.StatusOK)
			})

			rec := httptest.NewRecorder()
			middlewarectx.SessionMiddleware(tt.resolver, newNoopLogger())(next).
				ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
		})
	}
}

func TestRouteGuard(t *testing.T) {
	free := &models.User{ID: "u", Plan: models.PlanFree}
	enterprise := &models.User{ID: "u", Plan: models.PlanEnterprise}

	activating := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "activating")
	})

	tests := []struct {
		name           string
		sources        stubSources
		requireSub     bool
		activating     http.Handler
		wantStatusCode int
		wantLocation   string
		wantBody       string
		wantCalled     bool
	}{
		{
			name:           "anonymous redirected to login with next",
			sources:        stubSources{},
			wantStatusCode: http.StatusFound,
			wantLocation:   "/login?next=%2Fdashboard%2Fjobs%3Fpage%3D2",
		},
		{
			name:           "anonymous in grace sees activating page",
			sources:        stubSources{grace: true},
			activating:     activating,
			wantStatusCode: http.StatusOK,
			wantBody:       "activating",
		},
		{
			name:           "anonymous with pending registration gets accepted",
			sources:        stubSources{pending: true},
			wantStatusCode: http.StatusAccepted,
			wantBody:       `"decision":"activating"`,
		},
		{
			name:           "free user redirected to pricing",
			sources:        stubSources{account: guard.Account{User: free}},
			requireSub:     true,
			wantStatusCode: http.StatusFound,
			wantLocation:   "/pricing",
		},
		{
			name:           "free user in grace passes",
			sources:        stubSources{account: guard.Account{User: free}, grace: true},
			requireSub:     true,
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
		{
			name:           "enterprise passes without subscription",
			sources:        stubSources{account: guard.Account{User: enterprise}},
			requireSub:     true,
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
		{
			name:           "free user passes when subscription not required",
			sources:        stubSources{account: guard.Account{User: free}},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				acc, ok := middlewarectx.Account(r.Context())
				assert.True(t, ok)
				assert.Equal(t, tt.sources.account, acc)
				w.WriteHeader(http.StatusOK)
			})

			cfg := middlewarectx.GuardConfig{
				RequireSubscription: tt.requireSub,
				LoginPath:           "/login",
				PricingPath:         "/pricing",
				Activating:          tt.activating,
			}
			h := middlewarectx.RouteGuard(tt.sources, cfg, newNoopLogger(), nil)(next)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/jobs?page=2", nil))

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			}
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name           string
		account        *guard.Account
		wantStatusCode int
	}{
		{name: "no account", wantStatusCode: http.StatusForbidden},
		{
			name:           "plan-less user is not admin",
			account:        &guard.Account{User: &models.User{ID: "u"}},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "admin",
			account:        &guard.Account{User: &models.User{ID: "u", Role: models.RoleAdmin}},
			wantStatusCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.account != nil {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.AccountKey, *tt.account))
			}

			rec := httptest.NewRecorder()
			middlewarectx.RequireAdmin(newNoopLogger())(next).ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatusCode, rec.Code)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := middlewarectx.RateLimitMiddleware(config.RateLimit{RPS: 0.001, Burst: 2}, newNoopLogger())(next)

	serve := func(deviceID, remoteAddr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
		req.RemoteAddr = remoteAddr
		if deviceID != "" {
			req = req.WithContext(session.WithScope(req.Context(), session.Scope{SessionID: "s", DeviceID: deviceID}))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	codes := make([]int, 0, 3)
	for range 3 {
		codes = append(codes, serve("did-1", "10.0.0.1:1000"))
	}
	require.Len(t, codes, 3)
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// другой посетитель с того же адреса не зависит от чужого лимита
	assert.Equal(t, http.StatusOK, serve("did-2", "10.0.0.1:1000"))

	// без сессии ключом служит адрес клиента
	assert.Equal(t, http.StatusOK, serve("", "10.0.0.2:1000"))
	assert.Equal(t, http.StatusOK, serve("", "10.0.0.2:2000"))
	assert.Equal(t, http.StatusTooManyRequests, serve("", "10.0.0.2:3000"))
}
