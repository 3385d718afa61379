package backend

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/nameparse-bff/internal/config"
	"github.com/magabrotheeeer/nameparse-bff/internal/models"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func setupClient(t *testing.T, router http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return New(config.Backend{
		BaseURL:         srv.URL + "/",
		TimeoutBackend:  time.Second,
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
	}, newNoopLogger(), nil)
}

func TestClient_Me(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid token"})
			return
		}
		writeJSON(w, http.StatusOK, models.User{ID: "u-1", Email: "a@b.c", Plan: models.PlanStandard})
	})
	client := setupClient(t, r)

	user, err := client.Me(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, models.PlanStandard, user.Plan)

	user, err = client.Me(context.Background(), "bad")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_RegisterWithCheckout(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var reg models.Registration
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reg))
		assert.Equal(t, models.PlanStandard, reg.Plan)

		writeJSON(w, http.StatusCreated, map[string]any{
			"access_token":  "a",
			"refresh_token": "r",
			"user":          models.User{ID: "u-2", Plan: models.PlanFree},
			"checkout_url":  "https://checkout.stripe.com/c/pay/cs_test",
		})
	})
	client := setupClient(t, r)

	res, err := client.Register(context.Background(), models.Registration{
		Email: "new@example.com", Password: "password1", Plan: models.PlanStandard,
	})
	require.NoError(t, err)
	assert.Equal(t, "a", res.AccessToken)
	assert.Equal(t, "r", res.RefreshToken)
	assert.Equal(t, "u-2", res.User.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test", res.CheckoutURL)
}

func TestClient_APIError(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Incorrect email or password"})
	})
	client := setupClient(t, r)

	_, err := client.Login(context.Background(), models.Credentials{Email: "a@b.c", Password: "x"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Incorrect email or password", apiErr.Message)
}

func TestClient_JobsEndpoints(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/jobs", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []models.Job{{ID: "1", Status: models.JobCompleted}, {ID: "2", Status: models.JobProcessing}})
	})
	r.Get("/jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != "1" {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Job not found"})
			return
		}
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, models.Job{ID: "1", Status: models.JobCompleted, Progress: 100})
	})
	r.Delete("/jobs/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/jobs/{id}/download", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="parsed.csv"`)
		_, _ = io.WriteString(w, "first,last\nAda,Lovelace\n")
	})
	client := setupClient(t, r)
	ctx := context.Background()

	jobs, err := client.ListJobs(ctx, "t")
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	job, err := client.GetJob(ctx, "", "1")
	require.NoError(t, err)
	assert.Equal(t, models.JobCompleted, job.Status)

	_, err = client.GetJob(ctx, "", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, client.DeleteJob(ctx, "t", "1"))

	dl, err := client.DownloadJob(ctx, "t", "1")
	require.NoError(t, err)
	defer dl.Body.Close()
	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, "first,last\nAda,Lovelace\n", string(body))
	assert.Equal(t, "text/csv", dl.ContentType)
	assert.Contains(t, dl.ContentDisposition, "parsed.csv")
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	r := chi.NewRouter()
	r.Get("/billing/subscription", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusBadGateway, map[string]string{"detail": "upstream"})
	})
	client := setupClient(t, r)
	ctx := context.Background()

	for range 2 {
		_, err := client.SubscriptionStatus(ctx, "t")
		assert.ErrorIs(t, err, ErrUnavailable)
	}

	// предохранитель разомкнут: запрос до сервера не доходит
	_, err := client.SubscriptionStatus(ctx, "t")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	r := chi.NewRouter()
	r.Get("/auth/me", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	client := setupClient(t, r)

	for range 5 {
		_, err := client.Me(context.Background(), "expired")
		assert.ErrorIs(t, err, ErrUnauthorized)
	}
	assert.Equal(t, int32(5), hits.Load())
}

func TestClient_CheckoutAndRefresh(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/billing/checkout-session", func(w http.ResponseWriter, r *http.Request) {
		var req models.CheckoutRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(w, http.StatusOK, map[string]string{"checkout_url": "https://pay.example/" + string(req.Plan)})
	})
	r.Post("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, models.Tokens{AccessToken: "new-a", RefreshToken: "new-r"})
	})
	r.Post("/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	client := setupClient(t, r)
	ctx := context.Background()

	url, err := client.CreateCheckoutSession(ctx, "t", models.CheckoutRequest{Plan: models.PlanEnterprise})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/ENTERPRISE", url)

	tokens, err := client.Refresh(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, "new-a", tokens.AccessToken)

	assert.NoError(t, client.Logout(ctx, *tokens))
}
