package devserver

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"airpulse/internal/platform/clock"
)

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// rateLimiter keeps one token bucket per client address.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	clock    clock.Clock
}

func newRateLimiter(rps float64, burst int, c clock.Clock) *rateLimiter {
	return &rateLimiter{
		visitors: map[string]*visitor{},
		rps:      rate.Limit(rps),
		burst:    burst,
		clock:    c,
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.clock.Now()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[ip] = v
	}
	v.seen = now
	rl.evict(now)
	return v.lim.AllowN(now, 1)
}

func (rl *rateLimiter) evict(now time.Time) {
	for ip, v := range rl.visitors {
		if now.Sub(v.seen) > 10*time.Minute {
			delete(rl.visitors, ip)
		}
	}
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientIP(r)) {
			writeMessage(w, http.StatusTooManyRequests, "Too many requests, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
