// Package login реализует HTTP-обработчик входа пользователя.
//
// Учётные данные передаются в backend, полученные токены сохраняются в
// долговременном пространстве посетителя. Сами токены браузеру не отдаются.
package login

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

// Handler обрабатывает HTTP-запросы входа.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис учётной записи
	validate *validator.Validate // Валидатор входных данных
}

// Service описывает операцию входа.
type Service interface {
	Login(ctx context.Context, scope session.Scope, creds models.Credentials) (*models.User, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет учётные данные на backend и устанавливает сессию посетителя.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.Credentials true "Учетные данные пользователя"
// @Success 200 {object} response.Response "Успешный вход"
// @Failure 400 {object} response.Response "Некорректный JSON"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 401 {object} response.Response "Неверные учетные данные"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.Credentials
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

	user, err := h.service.Login(r.Context(), middlewarectx.Scope(r.Context()), req)
	if err != nil {
		log.Error("login failed", sl.Err(err))
		apierr.Render(w, r, err)
		return
	}

	log.Info("login success", slog.String("email", req.Email))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user": user,
	}))
}
