// Package decision отдаёт разовое решение о доступе к разделу SPA.
package decision

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/nameparse-bff/internal/guard"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/middlewarectx"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/response"
	"github.com/magabrotheeeer/nameparse-bff/internal/metrics"
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
)

// Service выдаёт источники проверки для посетителя.
type Service interface {
	Sources(scope session.Scope) guard.Sources
}

type Handler struct {
	log     *slog.Logger
	service Service
	metrics *metrics.Metrics
}

func New(log *slog.Logger, service Service, m *metrics.Metrics) *Handler {
	return &Handler{log: log, service: service, metrics: m}
}

// ServeHTTP godoc
// @Summary Решение о доступе
// @Tags Access
// @Produce  json
// @Param require_subscription query bool false "Раздел требует подписки, по умолчанию true"
// @Success 200 {object} response.Response
// @Router /access [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.decision"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	requireSub := requireSubscription(r)
	src := h.service.Sources(middlewarectx.Scope(r.Context()))

	decision, in := guard.Evaluate(r.Context(), src, requireSub)
	h.metrics.GuardDecision(decision.String())
	log.Debug("access decision", slog.String("decision", decision.String()), slog.String("signal", in.Signal.String()))

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"decision":                decision,
		"signal":                  in.Signal.String(),
		"user":                    in.User,
		"has_active_subscription": in.HasActiveSubscription,
	}))
}

// requireSubscription читает флаг раздела. Без параметра подписка требуется.
func requireSubscription(r *http.Request) bool {
	if b, err := strconv.ParseBool(r.URL.Query().Get("require_subscription")); err == nil {
		return b
	}
	return true
}
