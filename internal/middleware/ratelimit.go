package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter counts requests per client in fixed windows.
type RateLimiter struct {
	mu        sync.Mutex
	windows   map[string]*window
	limit     int
	length    time.Duration
	lastSweep time.Time
}

type window struct {
	start time.Time
	count int
}

func NewRateLimiter(limit int, length time.Duration) *RateLimiter {
	return &RateLimiter{
		windows:   make(map[string]*window),
		limit:     limit,
		length:    length,
		lastSweep: time.Now(),
	}
}

// Allow records a request from key and reports whether it is within budget.
func (rl *RateLimiter) Allow(key string) bool {
	ok, _ := rl.take(key, time.Now())
	return ok
}

// take returns whether the request is allowed and, when it is not, how long
// until the client's window resets.
func (rl *RateLimiter) take(key string, now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.sweep(now)

	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.length {
		w = &window{start: now}
		rl.windows[key] = w
	}

	if w.count >= rl.limit {
		return false, w.start.Add(rl.length).Sub(now)
	}
	w.count++
	return true, 0
}

// sweep drops expired windows at most once per window length.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.length {
		return
	}
	for key, w := range rl.windows {
		if now.Sub(w.start) >= rl.length {
			delete(rl.windows, key)
		}
	}
	rl.lastSweep = now
}

// RateLimit limits requests per client IP to limit per window.
// Each call creates an independent limiter, so routes can carry separate budgets.
func RateLimit(limit int, length time.Duration) func(http.HandlerFunc) http.HandlerFunc {
	limiter := NewRateLimiter(limit, length)

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)

			ok, retry := limiter.take(ip, time.Now())
			if !ok {
				slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "too many requests, please try again later")
				return
			}

			next(w, r)
		}
	}
}

// RateLimitAuth guards login and registration: 10 requests per 15 minutes per IP.
func RateLimitAuth() func(http.HandlerFunc) http.HandlerFunc {
	return RateLimit(10, 15*time.Minute)
}

// getClientIP prefers the first proxy-reported address over the socket peer.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
