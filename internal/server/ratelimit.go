package server

import (
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// LimitConfig is a token bucket per caller. A zero Rate disables limiting.
type LimitConfig struct {
	Rate  float64
	Burst int
	// TTL is how long an idle caller's bucket is kept. Defaults to 5 minutes.
	TTL time.Duration
}

func (c LimitConfig) Enabled() bool { return c.Rate > 0 }

// RateLimiter hands out one limiter per caller: the token subject when the
// request is authenticated, the remote host otherwise. Buckets idle for
// longer than TTL are swept at most once per TTL.
type RateLimiter struct {
	cfg       LimitConfig
	limiters  sync.Map // caller -> *cachedLimiter
	lastSweep atomic.Int64
	now       func() time.Time
}

type cachedLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

func NewRateLimiter(cfg LimitConfig) *RateLimiter {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	l := &RateLimiter{cfg: cfg, now: time.Now}
	l.lastSweep.Store(l.now().UnixNano())
	return l
}

func (l *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.limiter(callerKey(r)).Allow() {
				w.Header().Set("Retry-After", "1")
				respondStatusError(w, newAPIError(http.StatusTooManyRequests, "", "too many requests", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	now := l.now().UnixNano()
	l.sweep(now)
	if v, ok := l.limiters.Load(key); ok {
		cached := v.(*cachedLimiter)
		if now-cached.lastSeen.Load() < int64(l.cfg.TTL) {
			cached.lastSeen.Store(now)
			return cached.limiter
		}
		l.limiters.CompareAndDelete(key, cached)
	}
	fresh := &cachedLimiter{limiter: rate.NewLimiter(rate.Limit(l.cfg.Rate), l.cfg.Burst)}
	fresh.lastSeen.Store(now)
	v, _ := l.limiters.LoadOrStore(key, fresh)
	cached := v.(*cachedLimiter)
	cached.lastSeen.Store(now)
	return cached.limiter
}

func (l *RateLimiter) sweep(now int64) {
	last := l.lastSweep.Load()
	if now-last < int64(l.cfg.TTL) || !l.lastSweep.CompareAndSwap(last, now) {
		return
	}
	l.limiters.Range(func(k, v any) bool {
		cached := v.(*cachedLimiter)
		if now-cached.lastSeen.Load() >= int64(l.cfg.TTL) {
			l.limiters.CompareAndDelete(k, cached)
		}
		return true
	})
}

func callerKey(r *http.Request) string {
	if p, ok := principalFromContext(r.Context()); ok {
		return "sub:" + p.Subject
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}
