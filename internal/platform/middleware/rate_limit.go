package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/gigbook/service-booking/internal/platform/response"
)

const (
	codeRateLimited = "RATE_LIMITED"
	minIdleTTL      = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// RateLimiter hands out one token bucket per client IP. Buckets idle for
// longer than a full refill are swept while serving requests.
type RateLimiter struct {
	limiters  sync.Map
	rps       rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep atomic.Int64
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing rps sustained requests and burst spikes per client.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 5
	}
	l := &RateLimiter{rps: rate.Limit(rps), burst: burst, idleTTL: minIdleTTL, now: time.Now}
	if rps > 0 {
		// An evicted bucket must already be full again.
		if refill := time.Duration(float64(burst) / rps * float64(time.Second)); refill > l.idleTTL {
			l.idleTTL = refill
		}
	}
	l.lastSweep.Store(l.now().UnixNano())
	return l
}

func (l *RateLimiter) limiter(key string, now time.Time) *rate.Limiter {
	v, ok := l.limiters.Load(key)
	if !ok {
		v, _ = l.limiters.LoadOrStore(key, &clientLimiter{limiter: rate.NewLimiter(l.rps, l.burst)})
	}
	entry := v.(*clientLimiter)
	entry.lastSeen.Store(now.UnixNano())
	return entry.limiter
}

// Sweep drops buckets not used since now minus the idle window and reports how many were removed.
func (l *RateLimiter) Sweep(now time.Time) int {
	cutoff := now.Add(-l.idleTTL).UnixNano()
	removed := 0
	l.limiters.Range(func(key, v interface{}) bool {
		if v.(*clientLimiter).lastSeen.Load() < cutoff {
			l.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// maybeSweep runs at most one sweep per idle window across all requests.
func (l *RateLimiter) maybeSweep(now time.Time) {
	last := l.lastSweep.Load()
	if now.UnixNano()-last < int64(l.idleTTL) {
		return
	}
	if l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		l.Sweep(now)
	}
}

// Middleware rejects requests over the client's budget with 429.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := l.now()
		l.maybeSweep(now)
		if !l.limiter(c.ClientIP(), now).Allow() {
			response.Fail(c, http.StatusTooManyRequests, "Too many requests, please try again later", codeRateLimited)
			return
		}
		c.Next()
	}
}
