package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// KeyFunc selects the bucket a request is counted against.
type KeyFunc func(*http.Request) string

// window holds counts for the current and the previous fixed window; the
// effective count weights the previous one by its remaining overlap.
type window struct {
	prev      float64
	curr      float64
	currStart time.Time
}

// Limiter is a sliding-window request limiter keyed by an arbitrary string.
type Limiter struct {
	max    int
	period time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

// NewLimiter allows max requests per period and key.
func NewLimiter(limit int, period time.Duration) *Limiter {
	return &Limiter{
		max:     limit,
		period:  period,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// Allow counts a request for key. It reports whether the request is within
// the limit, how many remain and when the current window ends.
func (l *Limiter) Allow(key string) (allowed bool, remaining int, resetAt time.Time) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok {
		w = &window{currStart: now.Truncate(l.period)}
		l.windows[key] = w
	}
	if elapsed := now.Sub(w.currStart); elapsed >= l.period {
		if elapsed >= 2*l.period {
			w.prev = 0
		} else {
			w.prev = w.curr
		}
		w.curr = 0
		w.currStart = now.Truncate(l.period)
	}

	overlap := 1 - now.Sub(w.currStart).Seconds()/l.period.Seconds()
	effective := w.prev*math.Max(overlap, 0) + w.curr
	resetAt = w.currStart.Add(l.period)
	if effective >= float64(l.max) {
		return false, 0, resetAt
	}
	w.curr++
	return true, max(int(float64(l.max)-effective-1), 0), resetAt
}

// Sweep drops keys idle for two full periods.
func (l *Limiter) Sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, w := range l.windows {
		if now.Sub(w.currStart) >= 2*l.period {
			delete(l.windows, key)
		}
	}
}

// Run sweeps idle keys every two periods until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(2 * l.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// RateLimit rejects requests over the limiter's budget with 429 and sets the
// X-RateLimit-* headers on every response.
func RateLimit(l *Limiter, key KeyFunc) Middleware {
	if key == nil {
		key = ClientIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, resetAt := l.Allow(key(r))

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(l.max))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
			if !allowed {
				retry := max(resetAt.Sub(l.now()), 0)
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "Terlalu banyak permintaan, coba lagi nanti")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionKey keys requests by the named session cookie when live reports
// its value as a known session. Unknown, expired or missing cookies fall back
// to the client IP, so minting cookies does not mint buckets.
func SessionKey(name string, live func(id string) bool) KeyFunc {
	return func(r *http.Request) string {
		if c, err := r.Cookie(name); err == nil && c.Value != "" && live(c.Value) {
			return "session:" + c.Value
		}
		return "ip:" + ClientIP(r)
	}
}

// ClientIP returns the first X-Forwarded-For hop, X-Real-IP or the remote
// address host.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
