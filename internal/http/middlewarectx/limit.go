package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/nameparse-bff/internal/config"
	"github.com/magabrotheeeer/nameparse-bff/internal/http/response"
)

const (
	limiterIdleTTL  = 10 * time.Minute
	limiterSweepGap = time.Minute
)

type visitorLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitorLimiters хранит отдельное ведро токенов на посетителя.
// Ведра без запросов дольше limiterIdleTTL удаляются.
type visitorLimiters struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	now       func() time.Time
	visitors  map[string]*visitorLimiter
	lastSweep time.Time
}

func (v *visitorLimiters) allow(key string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	if now.Sub(v.lastSweep) >= limiterSweepGap {
		for k, vl := range v.visitors {
			if now.Sub(vl.lastSeen) >= limiterIdleTTL {
				delete(v.visitors, k)
			}
		}
		v.lastSweep = now
	}

	vl, ok := v.visitors[key]
	if !ok {
		vl = &visitorLimiter{limiter: rate.NewLimiter(v.limit, v.burst)}
		v.visitors[key] = vl
	}
	vl.lastSeen = now
	return vl.limiter.AllowN(now, 1)
}

// RateLimitMiddleware ограничивает частоту запросов к API для каждого посетителя
// отдельно: по устройству из SessionMiddleware, без него по адресу клиента.
func RateLimitMiddleware(cfg config.RateLimit, log *slog.Logger) func(http.Handler) http.Handler {
	limit := rate.Limit(cfg.RPS)
	if cfg.RPS <= 0 {
		limit = rate.Inf
	}
	limiters := &visitorLimiters{
		limit:    limit,
		burst:    max(cfg.Burst, 1),
		now:      time.Now,
		visitors: make(map[string]*visitorLimiter),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := visitorKey(r)
			if !limiters.allow(key) {
				log.Warn("too many requests", slog.String("path", r.URL.Path), slog.String("visitor", key))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func visitorKey(r *http.Request) string {
	if scope := Scope(r.Context()); scope.DeviceID != "" {
		return "device:" + scope.DeviceID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
