// Package processing открывает посетителю задачи обработки файлов на
// backend от имени его сессии.
package processing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/nameparse-bff/internal/backend"
	"github.com/magabrotheeeer/nameparse-bff/internal/jobs"
	"github.com/magabrotheeeer/nameparse-bff/internal/models"
	"github.com/magabrotheeeer/nameparse-bff/internal/session"
)

// Backend описывает вызовы внешнего API для задач.
type Backend interface {
	ListJobs(ctx context.Context, token string) ([]models.Job, error)
	GetJob(ctx context.Context, token, id string) (*models.Job, error)
	DeleteJob(ctx context.Context, token, id string) error
	DownloadJob(ctx context.Context, token, id string) (*backend.Download, error)
}

// TokenSource выдаёт access-токен посетителя.
type TokenSource interface {
	AccessToken(ctx context.Context, scope session.Scope) string
}

// Service — операции над задачами посетителя.
type Service struct {
	backend  Backend
	tokens   TokenSource
	log      *slog.Logger
	pollOpts []jobs.Option
}

// New создаёт Service. pollOpts применяются к каждому создаваемому Poller.
func New(b Backend, tokens TokenSource, log *slog.Logger, pollOpts ...jobs.Option) *Service {
	return &Service{backend: b, tokens: tokens, log: log, pollOpts: pollOpts}
}

// List возвращает задачи посетителя.
func (s *Service) List(ctx context.Context, scope session.Scope) ([]models.Job, error) {
	const op = "processing.List"
	list, err := s.backend.ListJobs(ctx, s.tokens.AccessToken(ctx, scope))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if list == nil {
		list = []models.Job{}
	}
	return list, nil
}

// Get возвращает задачу. Задачи без владельца доступны и без входа.
func (s *Service) Get(ctx context.Context, scope session.Scope, id string) (*models.Job, error) {
	const op = "processing.Get"
	job, err := s.backend.GetJob(ctx, s.tokens.AccessToken(ctx, scope), id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return job, nil
}

// Delete удаляет задачу.
func (s *Service) Delete(ctx context.Context, scope session.Scope, id string) error {
	const op = "processing.Delete"
	if err := s.backend.DeleteJob(ctx, s.tokens.AccessToken(ctx, scope), id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Download открывает поток с результатом задачи. Body закрывает вызывающий.
func (s *Service) Download(ctx context.Context, scope session.Scope, id string) (*backend.Download, error) {
	const op = "processing.Download"
	dl, err := s.backend.DownloadJob(ctx, s.tokens.AccessToken(ctx, scope), id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return dl, nil
}

// Poller создаёт опрос задач посетителя. Пустой jobID — опрос всего списка.
func (s *Service) Poller(scope session.Scope, jobID string, opts ...jobs.Option) *jobs.Poller {
	all := append(append([]jobs.Option{}, s.pollOpts...), opts...)
	return jobs.NewPoller(&fetcher{svc: s, scope: scope}, jobID, s.log, all...)
}

type fetcher struct {
	svc   *Service
	scope session.Scope
}

func (f *fetcher) List(ctx context.Context) ([]models.Job, error) {
	return f.svc.List(ctx, f.scope)
}

func (f *fetcher) Get(ctx context.Context, id string) (*models.Job, error) {
	return f.svc.Get(ctx, f.scope, id)
}
