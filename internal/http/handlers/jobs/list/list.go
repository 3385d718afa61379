// Package list отдаёт задачи обработки посетителя.
package list

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
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
)

type Service interface {
	List(ctx context.Context, scope session.Scope) ([]models.Job, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список задач
// @Tags Jobs
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response "Сессии нет"
// @Router /jobs [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.jobs.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	jobs, err := h.service.List(r.Context(), middlewarectx.Scope(r.Context()))
	if err != nil {
		log.Error("failed to list jobs", sl.Err(err))
		apierr.Render(w, r, err)
		return
	}

	log.Debug("jobs listed", slog.Int("count", len(jobs)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"jobs":         jobs,
		"all_terminal": models.AllTerminal(jobs),
	}))
}
