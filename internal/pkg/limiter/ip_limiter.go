/*
Package limiter throttles new connections per client IP address.

Each address gets its own token bucket (rate.Limiter). Buckets that have
refilled completely are idle and are swept periodically so the map does not
grow without bound.
*/
package limiter

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/logx"
	"relaychat/internal/pkg/resp"
)

// DefaultSweepInterval is how often idle buckets are removed.
const DefaultSweepInterval = 3 * time.Minute

// IPRateLimiter hands out one token bucket per client IP address.
type IPRateLimiter struct {
	mu     sync.RWMutex
	limits map[string]*rate.Limiter

	r rate.Limit
	b int
}

// NewIPRateLimiter returns a limiter allowing r events per second with burst b
// for every address.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
	}
}

// GetLimiter returns the bucket for ip, creating it on first use.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.RLock()
	limiter, exists := i.limits[ip]
	i.mu.RUnlock()

	if exists {
		return limiter
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists = i.limits[ip]
	if !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.limits[ip] = limiter
	}

	return limiter
}

// Allow takes a token from ip's bucket.
func (i *IPRateLimiter) Allow(ip string) bool {
	return i.GetLimiter(ip).Allow()
}

// Len is the number of tracked addresses.
func (i *IPRateLimiter) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return len(i.limits)
}

// Run sweeps idle buckets every interval until ctx is done.
func (i *IPRateLimiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, remaining := i.Sweep(now)
			logx.Debug("Rate limiter sweep finished.", "removed", removed, "remaining", remaining)
		}
	}
}

// Sweep drops every bucket that is full at now, meaning its address has been
// quiet long enough to be forgotten.
func (i *IPRateLimiter) Sweep(now time.Time) (removed, remaining int) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for ip, limiter := range i.limits {
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			delete(i.limits, ip)
			removed++
		}
	}

	return removed, len(i.limits)
}

// Middleware rejects requests over the caller's budget with 429.
func (i *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)

		if !i.Allow(ip) {
			logx.Warn("Request rejected: rate limit exceeded.", "ip", ip, "path", r.URL.Path)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClientIP extracts the host part of the request's remote address. Behind
// chi's RealIP middleware this is the forwarded client address.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	if ip == "" {
		ip = "unknown_ip"
	}

	return ip
}
