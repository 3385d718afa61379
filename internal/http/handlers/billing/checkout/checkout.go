// Package checkout реализует HTTP-обработчик создания сессии оплаты.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/nameparse-bff/internal/http/apierr"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/middlewarectx"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/response"
	"github.com/magabrotheeeer/nameparse-bff/internal/lib/sl"
	"github.com/magabrotheeeer/nameparse-bff/internal/models"
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
)

// Service описывает создание сессии оплаты.
type Service interface {
	CreateCheckout(ctx context.Context, scope session.Scope, req models.CheckoutRequest) (string, error)
}

// Handler обрабатывает запросы на оплату тарифа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Оплата тарифа
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param request body models.CheckoutRequest true "Тариф и период"
// @Success 200 {object} response.Response "В data.checkout_url адрес страницы оплаты"
// @Failure 401 {object} response.Response "Сессии нет"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Router /billing/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		var verrs validator.ValidationErrors
		errors.As(err, &verrs)
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	url, err := h.service.CreateCheckout(r.Context(), middlewarectx.Scope(r.Context()), req)
	if err != nil {
		log.Error("failed to create checkout session", sl.Err(err))
		apierr.Render(w, r, err)
		return
	}

	log.Info("checkout session created", slog.String("plan", string(req.Plan)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"checkout_url": url,
	}))
}
