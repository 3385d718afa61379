// Package download отдаёт результат задачи потоком, не буферизуя файл в памяти.
package download

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/nameparse-bff/internal/backend"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/apierr"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/middlewarectx"
	"github.com/magabrotheeeer/nameparse-bff/internal/lib/sl"
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
)

type Service interface {
	Download(ctx context.Context, scope session.Scope, id string) (*backend.Download, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Скачать результат задачи
// @Tags Jobs
// @Produce  octet-stream
// @Param id path string true "ID задачи"
// @Router /jobs/{id}/download [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.jobs.download"

	id := chi.URLParam(r, "id")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("job_id", id),
	)

	dl, err := h.service.Download(r.Context(), middlewarectx.Scope(r.Context()), id)
	if err != nil {
		log.Error("failed to open download", sl.Err(err))
		apierr.Render(w, r, err)
		return
	}
	defer dl.Body.Close()

	contentType := dl.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if dl.ContentDisposition != "" {
		w.Header().Set("Content-Disposition", dl.ContentDisposition)
	}
	if dl.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(dl.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, dl.Body)
	if err != nil {
		// заголовки уже отправлены, остаётся только записать в лог
		log.Error("download interrupted", slog.Int64("bytes", n), sl.Err(err))
		return
	}
	log.Info("download served", slog.Int64("bytes", n))
}
