// Package register реализует HTTP-обработчик регистрации.
//
// Если backend вернул адрес оплаты, сессия не устанавливается: клиент
// получает checkout_url и уходит на страницу провайдера, а BFF хранит
// запись о незавершённой регистрации до его возвращения.
package register

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
	"github.com/magabrotheeeer/nameparse-bff/internal/services/account"
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
)

// Service описывает операцию регистрации.
type Service interface {
	Register(ctx context.Context, scope session.Scope, reg models.Registration) (*account.RegisterResult, error)
}

// Handler обрабатывает запросы регистрации.
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
// @Summary Регистрация пользователя
// @Description Создаёт пользователя. Для платного тарифа возвращает checkout_url вместо сессии.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.Registration true "Данные регистрации"
// @Success 200 {object} response.Response "Нужна оплата, в data.checkout_url адрес провайдера"
// @Success 201 {object} response.Response "Пользователь создан, сессия установлена"
// @Failure 400 {object} response.Response "Некорректный JSON"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.Registration
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

	res, err := h.service.Register(r.Context(), middlewarectx.Scope(r.Context()), req)
	if err != nil {
		log.Error("registration failed", sl.Err(err))
		apierr.Render(w, r, err)
		return
	}

	if res.CheckoutURL != "" {
		log.Info("registration awaits checkout", slog.String("plan", string(req.Plan)))
		render.JSON(w, r, response.StatusOKWithData(map[string]any{
			"user":         res.User,
			"checkout_url": res.CheckoutURL,
		}))
		return
	}

	log.Info("user registered")
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user": res.User,
	}))
}
