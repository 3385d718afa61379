// Package remove реализует HTTP-обработчик удаления задачи.
package remove

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
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
)

// Handler обрабатывает HTTP-запросы на удаление задачи.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service определяет метод удаления задачи.
type Service interface {
	Delete(ctx context.Context, scope session.Scope, id string) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить задачу
// @Tags Jobs
// @Produce  json
// @Param id path string true "ID задачи"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response "Задача не найдена"
// @Router /jobs/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.jobs.remove"

	id := chi.URLParam(r, "id")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("job_id", id),
	)

	if err := h.service.Delete(r.Context(), middlewarectx.Scope(r.Context()), id); err != nil {
		log.Error("failed to delete job", sl.Err(err))
		apierr.Render(w, r, err)
		return
	}

	log.Info("job deleted")
	render.JSON(w, r, response.OK())
}
