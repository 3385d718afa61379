package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/magabrotheeeer/nameparse-bff/internal/models"
)

// ListJobs возвращает задачи пользователя.
func (c *Client) ListJobs(ctx context.Context, token string) ([]models.Job, error) {
	var jobs []models.Job
	if err := c.do(ctx, "jobs.list", http.MethodGet, "/jobs", token, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob возвращает задачу по идентификатору. token может быть пустым.
func (c *Client) GetJob(ctx context.Context, token, id string) (*models.Job, error) {
	var job models.Job
	if err := c.do(ctx, "jobs.get", http.MethodGet, "/jobs/"+url.PathEscape(id), token, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// DeleteJob удаляет задачу и её результаты.
func (c *Client) DeleteJob(ctx context.Context, token, id string) error {
	return c.do(ctx, "jobs.delete", http.MethodDelete, "/jobs/"+url.PathEscape(id), token, nil, nil)
}

// Download — поток с результатом задачи. Body закрывает вызывающий.
type Download struct {
	Body               io.ReadCloser
	ContentType        string
	ContentDisposition string
	ContentLength      int64
}

// DownloadJob открывает поток с результатом задачи.
func (c *Client) DownloadJob(ctx context.Context, token, id string) (_ *Download, err error) {
	const operation = "jobs.download"
	op := "backend." + operation
	defer func() { c.metrics.BackendCall(operation, err) }()

	req, err := c.newRequest(ctx, http.MethodGet, "/jobs/"+url.PathEscape(id)+"/download", token, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Download{
		Body:               resp.Body,
		ContentType:        resp.Header.Get("Content-Type"),
		ContentDisposition: resp.Header.Get("Content-Disposition"),
		ContentLength:      resp.ContentLength,
	}, nil
}
