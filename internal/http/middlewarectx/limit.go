package middlewarectx

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/notegenius/internal/http/response"
)

const (
	limiterIdleTTL    = 3 * time.Minute
	limiterPruneAbove = 10000
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PeerAddr ключ контекста с адресом TCP-пира до обработки заголовков прокси.
const PeerAddr Key = "peer_addr"

// RateLimiter ограничивает частоту запросов с одного адреса (token bucket).
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	trusted  []*net.IPNet
	now      func() time.Time
}

// NewRateLimiter создает RateLimiter. rps <= 0 отключает ограничение.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// TrustProxies задает подсети прокси, которым разрешено передавать адрес клиента
// в X-Forwarded-For, X-Real-IP и True-Client-IP. Для остальных пиров заголовки игнорируются.
func (l *RateLimiter) TrustProxies(cidrs []string) error {
	const op = "middlewarectx.RateLimiter.TrustProxies"
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		nets = append(nets, n)
	}
	l.trusted = nets
	return nil
}

func (l *RateLimiter) isTrusted(host string) bool {
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, n := range l.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// Allow расходует токен клиента key.
func (l *RateLimiter) Allow(key string) bool {
	if l.rps <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.visitors) > limiterPruneAbove {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(l.visitors, k)
			}
		}
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// RateLimitMiddleware отвечает 429, когда клиент исчерпал лимит.
func RateLimitMiddleware(log *slog.Logger, limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiter.clientKey(r)
			if !limiter.Allow(key) {
				log.Warn("too many requests", slog.String("client", key), slog.String("path", r.URL.Path))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("Too many requests, please try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CapturePeer сохраняет исходный RemoteAddr в контексте. Подключается до middleware.RealIP.
func CapturePeer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), PeerAddr, r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientKey адрес TCP-пира, либо адрес из заголовков, если пир доверенный прокси.
func (l *RateLimiter) clientKey(r *http.Request) string {
	peer, ok := r.Context().Value(PeerAddr).(string)
	if !ok || peer == "" {
		peer = r.RemoteAddr
	}
	peerHost := hostOf(peer)
	if l.isTrusted(peerHost) {
		return hostOf(r.RemoteAddr)
	}
	return peerHost
}

func hostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
