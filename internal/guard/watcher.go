package guard

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultRecheckInterval = 5 * time.Second
	DefaultPendingDelay    = 60 * time.Second
)

// WatcherConfig — параметры длительной проверки маршрута.
type WatcherConfig struct {
	RequireSubscription bool
	// RecheckInterval — период повторной проверки окна после оплаты:
	// окно закрывается само по времени, и без опроса этого никто не заметит.
	RecheckInterval time.Duration
	// PendingDelay — задержка перед завершением проверки, если найдена
	// запись незавершённой регистрации.
	PendingDelay time.Duration
}

// Watcher — проверка маршрута для одного открытого клиента: признак
// льготного доступа читается при создании, дальше пересчитывается по таймеру.
// Все таймеры принадлежат Run и останавливаются вместе с ним.
type Watcher struct {
	src            Sources
	cfg            WatcherConfig
	log            *slog.Logger
	in             Input
	pendingPresent bool
}

// NewWatcher создаёт Watcher и сразу читает окно после оплаты и запись
// о регистрации, чтобы первая же проверка видела уже открытое окно.
func NewWatcher(ctx context.Context, src Sources, cfg WatcherConfig, log *slog.Logger) *Watcher {
	if cfg.RecheckInterval <= 0 {
		cfg.RecheckInterval = DefaultRecheckInterval
	}
	if cfg.PendingDelay <= 0 {
		cfg.PendingDelay = DefaultPendingDelay
	}
	graceActive := src.GraceActive(ctx)
	pending := src.PendingRegistration(ctx)
	return &Watcher{
		src: src,
		cfg: cfg,
		log: log,
		in: Input{
			AuthLoading:         true,
			CheckingPending:     true,
			Signal:              Resolve(graceActive, pending),
			RequireSubscription: cfg.RequireSubscription,
		},
		pendingPresent: pending,
	}
}

// Signal возвращает признак, вычисленный при создании.
func (w *Watcher) Signal() Signal {
	return w.in.Signal
}

// Run пересчитывает решение до отмены ctx и вызывает emit при каждом его изменении.
// emit вызывается только из горутины Run.
func (w *Watcher) Run(ctx context.Context, emit func(Decision, Input)) error {
	const op = "guard.Watcher.Run"
	log := w.log.With(slog.String("op", op))

	last := Decision(-1)
	publish := func() {
		d := Decide(w.in)
		if d == last {
			return
		}
		last = d
		log.Debug("route decision changed", slog.String("decision", d.String()), slog.String("signal", w.in.Signal.String()))
		emit(d, w.in)
	}

	var pendingC <-chan time.Time
	if w.pendingPresent {
		timer := time.NewTimer(w.cfg.PendingDelay)
		defer timer.Stop()
		pendingC = timer.C
	} else {
		w.in.CheckingPending = false
	}

	accounts := make(chan Account, 1)
	fetching := true
	go w.fetchAccount(ctx, accounts)

	publish()

	ticker := time.NewTicker(w.cfg.RecheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case acc := <-accounts:
			fetching = false
			w.in.Account = acc
			w.in.AuthLoading = false
			w.recheck(ctx)
			publish()

		case <-pendingC:
			pendingC = nil
			w.in.CheckingPending = false
			w.recheck(ctx)
			publish()

		case <-ticker.C:
			w.recheck(ctx)
			if !fetching && w.awaitingActivation() {
				fetching = true
				go w.fetchAccount(ctx, accounts)
			}
			publish()
		}
	}
}

func (w *Watcher) recheck(ctx context.Context) {
	w.in.Signal = Resolve(w.src.GraceActive(ctx), w.src.PendingRegistration(ctx))
}

// awaitingActivation: льготный доступ ещё действует, а backend пока
// не подтвердил пользователя или подписку.
func (w *Watcher) awaitingActivation() bool {
	if !w.in.Signal.Active() {
		return false
	}
	return w.in.User == nil || !w.in.HasActiveSubscription
}

func (w *Watcher) fetchAccount(ctx context.Context, out chan<- Account) {
	out <- w.src.Account(ctx)
}
