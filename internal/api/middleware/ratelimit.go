package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"github.com/webchat/chat-relay/internal/pkg/response"
	"go.uber.org/zap"
)

// RateLimiter counts requests per client IP in fixed windows.
type RateLimiter struct {
	visitors *cache.Cache
	limit    int
	window   time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: cache.New(window, 2*window),
		limit:    limit,
		window:   window,
	}
}

// allow records one request for ip and reports whether it is within the limit.
// The first request of a window sets its expiry; later ones only increment.
func (rl *RateLimiter) allow(ip string) bool {
	if err := rl.visitors.Add(ip, 1, rl.window); err == nil {
		return true
	}

	count, err := rl.visitors.IncrementInt(ip, 1)
	if err != nil {
		// expired between Add and IncrementInt
		rl.visitors.Set(ip, 1, rl.window)
		return true
	}
	return count <= rl.limit
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.allow(ip) {
			ctxzap.Warn(r.Context(), "rate limit exceeded", zap.String("ip", ip))
			w.Header().Set("Retry-After", rl.retryAfter())
			response.Error(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) retryAfter() string {
	return strconv.Itoa(max(1, int(rl.window.Seconds())))
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
