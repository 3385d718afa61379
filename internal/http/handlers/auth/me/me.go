// Package me отдаёт текущего пользователя вместе с признаком подписки и
// состоянием окна после оплаты. Подтверждённый платный тариф закрывает окно.
package me

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/nameparse-bff/internal/guard"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/middlewarectx"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/response"
	"github.com/magabrotheeeer/nameparse-bff/internal/services/account"
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
)

// Service описывает чтение состояния учётной записи.
type Service interface {
	Account(ctx context.Context, scope session.Scope) guard.Account
	GraceState(ctx context.Context, scope session.Scope) account.GraceState
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response "Сессии нет"
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	scope := middlewarectx.Scope(r.Context())
	acc := h.service.Account(r.Context(), scope)
	grace := h.service.GraceState(r.Context(), scope)

	if acc.User == nil {
		log.Debug("no authenticated user", slog.Bool("grace_active", grace.Active))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Response{
			Status: response.StatusError,
			Error:  "unauthorized",
			Data:   map[string]any{"grace": graceView(grace)},
		})
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user":                    acc.User,
		"has_active_subscription": acc.HasActiveSubscription,
		"grace":                   graceView(grace),
	}))
}

func graceView(g account.GraceState) map[string]any {
	return map[string]any{
		"active":       g.Active,
		"remaining_ms": g.Remaining.Milliseconds(),
	}
}
