// Package success обрабатывает возврат со страницы оплаты.
//
// Окно после оплаты открывается до ответа клиенту, чтобы первая же проверка
// маршрута после перехода на панель видела его. Если регистрация ждала
// оплаты, её токены становятся сессией посетителя.
package success

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/nameparse-bff/internal/http/apierr"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/middlewarectx"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/response"
	"github.com/magabrotheeeer/nameparse-bff/internal/lib/sl"
	"github.com/magabrotheeeer/nameparse-bff/internal/models"
	"github.com/magabrotheeeer/nameparse-bff/internal/services/account"
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
)

// Service описывает завершение оплаты.
type Service interface {
	CompletePayment(ctx context.Context, scope session.Scope) (*models.User, error)
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
// @Summary Возврат после оплаты
// @Description Открывает окно ожидания вебхука и завершает отложенную регистрацию.
// @Tags Billing
// @Produce  json
// @Success 200 {object} response.Response
// @Router /billing/success [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.success"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	scope := middlewarectx.Scope(r.Context())
	user, err := h.service.CompletePayment(r.Context(), scope)
	if err != nil {
		log.Error("failed to complete payment", sl.Err(err))
		apierr.Render(w, r, err)
		return
	}

	grace := h.service.GraceState(r.Context(), scope)
	log.Info("payment completed", slog.Bool("authenticated", user != nil), slog.Bool("grace_active", grace.Active))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user": user,
		"grace": map[string]any{
			"active":       grace.Active,
			"remaining_ms": grace.Remaining.Milliseconds(),
		},
	}))
}
