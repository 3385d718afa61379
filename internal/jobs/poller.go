// Package jobs держит локальную копию задач обработки и обновляет её
// опросом backend, пока есть за чем наблюдать.
package jobs

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/magabrotheeeer/nameparse-bff/internal/lib/sl"
	"github.com/magabrotheeeer/nameparse-bff/internal/metrics"
	"github.com/magabrotheeeer/nameparse-bff/internal/models"
)

// DefaultInterval — период опроса по умолчанию.
const DefaultInterval = 2 * time.Second

// Fetcher получает задачи из backend.
type Fetcher interface {
	// List возвращает все задачи пользователя.
	List(ctx context.Context) ([]models.Job, error)
	// Get возвращает одну задачу, доступно и без входа.
	Get(ctx context.Context, id string) (*models.Job, error)
}

// Poller опрашивает либо одну задачу (jobID != ""), либо весь список.
type Poller struct {
	fetcher  Fetcher
	jobID    string
	interval time.Duration
	log      *slog.Logger
	metrics  *metrics.Metrics
	onUpdate func([]models.Job)

	mu   sync.Mutex
	jobs []models.Job
	task *Task
}

// Option настраивает Poller.
type Option func(*Poller)

// WithInterval задаёт период опроса.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithMetrics подключает счётчики.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Poller) { p.metrics = m }
}

// WithOnUpdate вызывает fn после каждого успешного опроса в цикле.
func WithOnUpdate(fn func([]models.Job)) Option {
	return func(p *Poller) { p.onUpdate = fn }
}

// NewPoller создаёт Poller. Пустой jobID означает опрос всего списка.
func NewPoller(fetcher Fetcher, jobID string, log *slog.Logger, opts ...Option) *Poller {
	p := &Poller{
		fetcher:  fetcher,
		jobID:    jobID,
		interval: DefaultInterval,
		log:      log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchOnce выполняет один запрос и целиком заменяет локальную копию.
// Ошибка возвращается вызывающему: при ручном обновлении её нужно показать пользователю.
func (p *Poller) FetchOnce(ctx context.Context) ([]models.Job, error) {
	var (
		jobs []models.Job
		err  error
	)
	if p.jobID != "" {
		var job *models.Job
		job, err = p.fetcher.Get(ctx, p.jobID)
		if job != nil {
			jobs = []models.Job{*job}
		}
	} else {
		jobs, err = p.fetcher.List(ctx)
	}
	p.metrics.JobFetch(err == nil)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.jobs = jobs
	p.mu.Unlock()
	return slices.Clone(jobs), nil
}

// Jobs возвращает копию последнего полученного набора.
func (p *Poller) Jobs() []models.Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.jobs)
}

// Start запускает опрос с периодом interval. Ранее запущенный цикл
// останавливается. Цикл сам завершается, когда все задачи терминальны.
func (p *Poller) Start(ctx context.Context) *Task {
	taskCtx, cancel := context.WithCancel(ctx)
	task := &Task{cancel: cancel, done: make(chan struct{})}

	// замена под блокировкой: каждый вытесненный цикл достаётся ровно одному Start
	p.mu.Lock()
	prev := p.task
	p.task = task
	p.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}
	go p.loop(taskCtx, task)
	return task
}

// Stop останавливает текущий цикл и дожидается его завершения.
func (p *Poller) Stop() {
	p.mu.Lock()
	task := p.task
	p.task = nil
	p.mu.Unlock()

	if task != nil {
		task.Stop()
	}
}

func (p *Poller) loop(ctx context.Context, task *Task) {
	const op = "jobs.Poller.loop"
	defer close(task.done)
	defer task.cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		jobs, err := p.FetchOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// опрос best-effort: следующий тик повторит запрос
			p.log.Debug("job poll failed", sl.Op(op), slog.String("job_id", p.jobID), sl.Err(err))
			continue
		}
		if p.onUpdate != nil {
			p.onUpdate(jobs)
		}
		if models.AllTerminal(jobs) {
			p.log.Debug("all jobs reached terminal state, polling stopped", sl.Op(op), slog.Int("jobs", len(jobs)))
			task.finished.Store(true)
			return
		}
	}
}
