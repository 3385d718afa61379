// Package read реализует HTTP-обработчик получения задачи по ID.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/nameparse-bff/internal/http/apierr"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/middlewarectx"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/response"
	"github.com/magabrotheeeer/nameparse-bff/internal/lib/sl"
	"github.com/magabrotheeeer/nameparse-bff/internal/models"
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
)

// Handler обрабатывает запросы на получение задачи по идентификатору.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение задачи.
type Service interface {
	Get(ctx context.Context, scope session.Scope, id string) (*models.Job, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Задача по ID
// @Tags Jobs
// @Produce  json
// @Param id path string true "ID задачи"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response "Задача не найдена"
// @Router /jobs/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.jobs.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		log.Error("empty job id in url")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("job id is required"))
		return
	}

	job, err := h.service.Get(r.Context(), middlewarectx.Scope(r.Context()), id)
	if err != nil {
		log.Error("failed to read job", slog.String("job_id", id), sl.Err(err))
		apierr.Render(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"job": job,
	}))
}
