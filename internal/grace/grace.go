// Package grace реализует льготный период после оплаты: окно, в течение
// которого пользователь считается оплатившим, пока вебхук платёжного
// провайдера не дошёл до backend.
//
// Состояний два: Inactive и Active.
//
//	Inactive --Start--> Active
//	Active   --Start--> Active    (часы перезапускаются, окна не суммируются)
//	Active   --Clear--> Inactive
//	Active   --IsActive после истечения--> Inactive (запись удаляется при чтении)
//
// Таймеров нет: окно истекает только тогда, когда кто-то его читает.
package grace

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/nameparse-bff/internal/lib/sl"
	"github.com/magabrotheeeer/nameparse-bff/internal/metrics"
	"github.com/magabrotheeeer/nameparse-bff/internal/statestore"
)

// DefaultDuration — длительность окна по умолчанию.
const DefaultDuration = 180 * time.Second

// RecordKey — ключ записи в сессионном пространстве.
const RecordKey = "grace_period"

// Record — запись о начале окна. StartedAt в миллисекундах Unix.
type Record struct {
	StartedAt int64 `json:"startedAt"`
}

// Valid отвергает записи без времени начала.
func (r Record) Valid() bool {
	return r.StartedAt > 0
}

// IsExpired сообщает, истекло ли окно rec к моменту now.
func IsExpired(rec Record, now time.Time, duration time.Duration) bool {
	return elapsed(rec, now) >= duration
}

// Remaining возвращает остаток окна, не меньше нуля и не больше duration.
func Remaining(rec Record, now time.Time, duration time.Duration) time.Duration {
	left := duration - elapsed(rec, now)
	switch {
	case left < 0:
		return 0
	case left > duration:
		return duration
	}
	return left
}

func elapsed(rec Record, now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(rec.StartedAt))
}

// Gate управляет окном в одном сессионном пространстве ключей.
type Gate struct {
	store    statestore.Store
	log      *slog.Logger
	now      func() time.Time
	duration time.Duration
	metrics  *metrics.Metrics
}

// Option настраивает Gate.
type Option func(*Gate)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithDuration задаёт длительность окна.
func WithDuration(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.duration = d
		}
	}
}

// WithMetrics подключает счётчики.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) { g.metrics = m }
}

// New создаёт Gate поверх store.
func New(store statestore.Store, log *slog.Logger, opts ...Option) *Gate {
	g := &Gate{
		store:    store,
		log:      log,
		now:      time.Now,
		duration: DefaultDuration,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Duration возвращает длительность окна.
func (g *Gate) Duration() time.Duration {
	return g.duration
}

// Start открывает окно от текущего момента, перезаписывая предыдущее.
// Вызывать синхронно сразу после сигнала об оплате, до любых проверок доступа.
func (g *Gate) Start(ctx context.Context) error {
	const op = "grace.Start"
	rec := Record{StartedAt: g.now().UnixMilli()}
	// запись живёт чуть дольше окна, чтобы истечение наблюдалось чтением, а не пропажей ключа
	if err := g.store.Set(ctx, RecordKey, rec, 2*g.duration); err != nil {
		g.log.Error("failed to start grace period", sl.Op(op), sl.Err(err))
		return err
	}
	g.metrics.GraceEvent("started")
	g.log.Debug("grace period started", sl.Op(op), slog.Int64("started_at", rec.StartedAt))
	return nil
}

// IsActive сообщает, открыто ли окно. Истёкшую или повреждённую запись удаляет.
// Ошибки хранилища трактуются как отсутствие окна.
func (g *Gate) IsActive(ctx context.Context) bool {
	const op = "grace.IsActive"
	rec, ok := g.load(ctx)
	if !ok {
		return false
	}
	if IsExpired(rec, g.now(), g.duration) {
		g.metrics.GraceEvent("expired")
		if err := g.store.Invalidate(ctx, RecordKey); err != nil {
			g.log.Warn("failed to remove expired grace period", sl.Op(op), sl.Err(err))
		}
		return false
	}
	return true
}

// Clear закрывает окно независимо от его возраста. Без записи ничего
// не делает и событие cleared не считает.
func (g *Gate) Clear(ctx context.Context) error {
	const op = "grace.Clear"
	var rec Record
	found, err := g.store.Get(ctx, RecordKey, &rec)
	if err == nil && !found {
		return nil
	}
	if err := g.store.Invalidate(ctx, RecordKey); err != nil {
		g.log.Error("failed to clear grace period", sl.Op(op), sl.Err(err))
		return err
	}
	if found {
		g.metrics.GraceEvent("cleared")
	}
	return nil
}

// Remaining возвращает остаток окна для отображения. Для решений о доступе
// используется только IsActive.
func (g *Gate) Remaining(ctx context.Context) time.Duration {
	rec, ok := g.load(ctx)
	if !ok {
		return 0
	}
	return Remaining(rec, g.now(), g.duration)
}

func (g *Gate) load(ctx context.Context) (Record, bool) {
	const op = "grace.load"
	var rec Record
	found, err := g.store.Get(ctx, RecordKey, &rec)
	switch {
	case errors.Is(err, statestore.ErrCorrupted):
		g.discardCorrupted(ctx)
		return Record{}, false
	case err != nil:
		g.log.Warn("failed to read grace period", sl.Op(op), sl.Err(err))
		return Record{}, false
	case !found:
		return Record{}, false
	case !rec.Valid():
		g.discardCorrupted(ctx)
		return Record{}, false
	}
	return rec, true
}

func (g *Gate) discardCorrupted(ctx context.Context) {
	g.metrics.GraceEvent("corrupted")
	if err := g.store.Invalidate(ctx, RecordKey); err != nil {
		g.log.Warn("failed to remove corrupted grace period", sl.Op("grace.discardCorrupted"), sl.Err(err))
	}
}
