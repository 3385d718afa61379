// Package stream держит открытым поток решений о доступе для одной вкладки
// SPA. Решение пересчитывается по таймеру, клиент получает только изменения.
package stream

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/nameparse-bff/internal/guard"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/middlewarectx"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/response"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/sse"
	"github.com/magabrotheeeer/nameparse-bff/internal/lib/sl"
	"github.com/magabrotheeeer/nameparse-bff/internal/metrics"
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
)

// KeepAlive — период комментариев, не дающих прокси закрыть поток.
const KeepAlive = 15 * time.Second

// Service выдаёт источники проверки для посетителя.
type Service interface {
	Sources(scope session.Scope) guard.Sources
}

// Event — содержимое события decision.
type Event struct {
	Decision              guard.Decision `json:"decision"`
	Signal                string         `json:"signal"`
	Authenticated         bool           `json:"authenticated"`
	HasActiveSubscription bool           `json:"has_active_subscription"`
}

type Handler struct {
	log     *slog.Logger
	service Service
	cfg     guard.WatcherConfig
	metrics *metrics.Metrics
}

func New(log *slog.Logger, service Service, cfg guard.WatcherConfig, m *metrics.Metrics) *Handler {
	return &Handler{log: log, service: service, cfg: cfg, metrics: m}
}

// ServeHTTP godoc
// @Summary Поток решений о доступе
// @Description Server-sent events с событием decision при каждом изменении решения.
// @Tags Access
// @Produce  text/event-stream
// @Param require_subscription query bool false "Раздел требует подписки"
// @Router /access/stream [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.stream"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	cfg := h.cfg
	cfg.RequireSubscription = true
	if b, err := strconv.ParseBool(r.URL.Query().Get("require_subscription")); err == nil {
		cfg.RequireSubscription = b
	}

	stream, err := sse.New(w)
	if err != nil {
		log.Error("failed to open event stream", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("streaming unsupported"))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go keepAlive(ctx, stream, cancel)

	src := h.service.Sources(middlewarectx.Scope(r.Context()))
	watcher := guard.NewWatcher(ctx, src, cfg, log)

	err = watcher.Run(ctx, func(d guard.Decision, in guard.Input) {
		h.metrics.GuardDecision(d.String())
		ev := Event{
			Decision:              d,
			Signal:                in.Signal.String(),
			Authenticated:         in.User != nil,
			HasActiveSubscription: in.HasActiveSubscription,
		}
		if err := stream.Send("decision", ev); err != nil {
			log.Debug("client went away", sl.Err(err))
			cancel()
		}
	})
	if err != nil {
		log.Error("watcher stopped", sl.Err(err))
	}
}

func keepAlive(ctx context.Context, stream *sse.Writer, cancel context.CancelFunc) {
	ticker := time.NewTicker(KeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := stream.Comment("keep-alive"); err != nil {
				cancel()
				return
			}
		}
	}
}
