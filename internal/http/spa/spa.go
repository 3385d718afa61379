// Package spa раздаёт собранный фронтенд. Неизвестные пути отдают
// index.html, чтобы маршрутизацию выполнял клиент.
package spa

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/magabrotheeeer/nameparse-bff/internal/config"
	"github.com/magabrotheeeer/nameparse-bff/internal/lib/sl"
)

// Handler раздаёт статику из каталога сборки.
type Handler struct {
	log   *slog.Logger
	root  fs.FS
	index string
	files http.Handler
}

// New создаёт Handler для каталога cfg.StaticDir.
func New(cfg config.SPA, log *slog.Logger) *Handler {
	return NewFS(os.DirFS(cfg.StaticDir), cfg.IndexPage, log)
}

// NewFS создаёт Handler поверх произвольной файловой системы.
func NewFS(root fs.FS, index string, log *slog.Logger) *Handler {
	if index == "" {
		index = "index.html"
	}
	return &Handler{
		log:   log,
		root:  root,
		index: index,
		files: http.FileServerFS(root),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name != "" {
		if st, err := fs.Stat(h.root, name); err == nil && !st.IsDir() {
			h.files.ServeHTTP(w, r)
			return
		}
	}
	h.Page(h.index).ServeHTTP(w, r)
}

// Page возвращает обработчик, всегда отдающий файл name без кэширования.
func (h *Handler) Page(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := fs.ReadFile(h.root, name)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, fs.ErrNotExist) {
				status = http.StatusNotFound
			}
			h.log.Error("failed to read page", sl.Op("spa.Page"), slog.String("page", name), sl.Err(err))
			http.Error(w, http.StatusText(status), status)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(data)
	})
}
