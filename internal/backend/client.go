// Package backend — клиент внешнего REST API, которое выполняет
// аутентификацию, биллинг и обработку файлов.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/magabrotheeeer/nameparse-bff/internal/config"
	"github.com/magabrotheeeer/nameparse-bff/internal/metrics"
)

var (
	// ErrUnauthorized — токен отсутствует, истёк или отозван.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable — backend недоступен или предохранитель разомкнут.
	ErrUnavailable = errors.New("backend unavailable")
)

// APIError — ответ backend с кодом 4xx, кроме 401 и 404.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Message)
}

// Client выполняет запросы к backend через общий предохранитель.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	log        *slog.Logger
	metrics    *metrics.Metrics
}

// New создаёт клиента backend.
func New(cfg config.Backend, log *slog.Logger, m *metrics.Metrics) *Client {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	settings := gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("backend circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	timeout := cfg.TimeoutBackend
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		breaker:    gobreaker.NewCircuitBreaker[*http.Response](settings),
		log:        log,
		metrics:    m,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body any) (*http.Request, error) {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		buf = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// send выполняет запрос. 5xx и сетевые ошибки считаются сбоями предохранителя,
// ответы 4xx — нет.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			msg := readMessage(resp)
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, msg)
		}
		return resp, nil
	})
	if err != nil {
		if req.Context().Err() != nil {
			return nil, req.Context().Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return resp, nil
}

// do выполняет JSON-запрос и декодирует ответ в out (если out != nil).
func (c *Client) do(ctx context.Context, operation, method, path, token string, body, out any) (err error) {
	op := "backend." + operation
	defer func() { c.metrics.BackendCall(operation, err) }()

	req, err := c.newRequest(ctx, method, path, token, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	resp, err := c.send(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if err = checkStatus(resp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= http.StatusBadRequest:
		return &APIError{StatusCode: resp.StatusCode, Message: readMessage(resp)}
	}
	return nil
}

// readMessage достаёт текст ошибки из тела ответа и закрывает его.
func readMessage(resp *http.Response) string {
	defer resp.Body.Close()
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		for _, s := range []string{payload.Detail, payload.Message, payload.Error} {
			if s != "" {
				return s
			}
		}
	}
	if len(data) == 0 {
		return http.StatusText(resp.StatusCode)
	}
	return strings.TrimSpace(string(data))
}
