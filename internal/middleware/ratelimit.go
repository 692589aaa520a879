package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"taskManager/internal/logger"

	"go.uber.org/zap"
)

const rateWindow = time.Minute

type window struct {
	count   int
	resetAt time.Time
}

// limiter counts requests per client in fixed windows.
type limiter struct {
	mtx     sync.Mutex
	limit   int
	period  time.Duration
	clients map[string]*window
}

func newLimiter(limit int, period time.Duration) *limiter {
	return &limiter{
		limit:   limit,
		period:  period,
		clients: make(map[string]*window),
	}
}

// allow records one request from client and reports whether it fits in the
// current window, together with what is left of it.
func (l *limiter) allow(client string, now time.Time) (ok bool, remaining int, resetAt time.Time) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	w, exists := l.clients[client]
	if !exists {
		l.evictExpired(now)
	}
	if !exists || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.period)}
		l.clients[client] = w
	}
	if w.count >= l.limit {
		return false, 0, w.resetAt
	}
	w.count++
	return true, l.limit - w.count, w.resetAt
}

// caller holds the lock
func (l *limiter) evictExpired(now time.Time) {
	for client, w := range l.clients {
		if now.After(w.resetAt) {
			delete(l.clients, client)
		}
	}
}

// RateLimit allows rpm requests per client IP in a fixed one minute window.
// A non-positive rpm disables the limit.
func RateLimit(rpm int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rpm <= 0 {
			return next
		}
		l := newLimiter(rpm, rateWindow)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			now := time.Now()

			ok, remaining, resetAt := l.allow(ip, now)
			if !ok {
				rejectTooMany(w, r, ip, resetAt.Sub(now))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rpm))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
			next.ServeHTTP(w, r)
		})
	}
}

func rejectTooMany(w http.ResponseWriter, r *http.Request, ip string, wait time.Duration) {
	requestId := GetRequestID(r.Context())
	retryAfter := int(wait.Round(time.Second).Seconds())

	logger.Warn("HTTP: rate limit exceeded",
		zap.String("client_ip", ip),
		zap.String("request_id", requestId),
		zap.Int("retry_after", retryAfter))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.WriteHeader(http.StatusTooManyRequests)

	body := map[string]any{
		"message":     "Too many requests. Try again later.",
		"retry_after": retryAfter,
		"request_id":  requestId,
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("HTTP: writing response failed", zap.Error(err))
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
