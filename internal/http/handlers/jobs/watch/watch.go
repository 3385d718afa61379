// Package watch отдаёт поток состояний задач, пока они не завершатся.
//
// Первое чтение выполняется сразу, и его ошибка отправляется клиенту
// событием error. Дальше опрос идёт с периодом Poller, ошибки отдельных
// опросов пропускаются. Когда все задачи терминальны, отправляется done и
// поток закрывается.
package watch

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/nameparse-bff/internal/http/apierr"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/middlewarectx"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/response"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/sse"
	"github.com/magabrotheeeer/nameparse-bff/internal/jobs"
	"github.com/magabrotheeeer/nameparse-bff/internal/lib/sl"
	"github.com/magabrotheeeer/nameparse-bff/internal/models"
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
)

type Service interface {
	Poller(scope session.Scope, jobID string, opts ...jobs.Option) *jobs.Poller
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Поток состояний задач
// @Description Server-sent events: jobs при каждом опросе, error при ошибке первого чтения, done по завершении.
// @Tags Jobs
// @Produce  text/event-stream
// @Param id query string false "ID задачи, без него опрашивается весь список"
// @Router /jobs/watch [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.jobs.watch"

	jobID := r.URL.Query().Get("id")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("job_id", jobID),
	)

	stream, err := sse.New(w)
	if err != nil {
		log.Error("failed to open event stream", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("streaming unsupported"))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	send := func(event string, data any) {
		if err := stream.Send(event, data); err != nil {
			log.Debug("client went away", sl.Err(err))
			cancel()
		}
	}

	poller := h.service.Poller(middlewarectx.Scope(ctx), jobID, jobs.WithOnUpdate(func(list []models.Job) {
		send("jobs", list)
	}))

	list, err := poller.FetchOnce(ctx)
	if err != nil {
		log.Error("failed to fetch jobs", sl.Err(err))
		_, msg := apierr.Status(err)
		send("error", response.Error(msg))
		return
	}
	send("jobs", list)
	if models.AllTerminal(list) {
		send("done", response.OK())
		return
	}

	task := poller.Start(ctx)
	defer task.Stop()

	select {
	case <-ctx.Done():
	case <-task.Done():
		if task.Finished() {
			send("done", response.OK())
		}
	}
}
