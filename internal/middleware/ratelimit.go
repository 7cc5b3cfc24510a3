package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"penta-xml-feed/pkg/apierror"
)

// DefaultLimiterIdleTTL is how long an unused per-IP limiter is kept.
const DefaultLimiterIdleTTL = 10 * time.Minute

// PeerAddrKey is the context key for the connection's remote address.
const PeerAddrKey contextKey = "peer_addr"

// PeerAddr records the connection's remote address before any middleware
// rewrites RemoteAddr from forwarding headers. Mount it first.
func PeerAddr(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), PeerAddrKey, r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client IP. Buckets unused
// for longer than the idle TTL are dropped.
type IPRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewIPRateLimiter allows rps requests per second per IP with the given burst.
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		limiters:  make(map[string]*limiterEntry),
		limit:     rate.Limit(rps),
		burst:     burst,
		idleTTL:   DefaultLimiterIdleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Get returns the limiter for ip, creating it on first use.
func (l *IPRateLimiter) Get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}

	entry, exists := l.limiters[ip]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// Len returns the number of tracked IPs.
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// sweep must be called with mu held.
func (l *IPRateLimiter) sweep(now time.Time) {
	for ip, entry := range l.limiters {
		if now.Sub(entry.lastSeen) >= l.idleTTL {
			delete(l.limiters, ip)
		}
	}
	l.lastSweep = now
}

// Middleware rejects requests over the limit with 429.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Get(clientIP(r)).Allow() {
			apiErr := apierror.TooManyRequests("too many refresh requests from your IP")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(apiErr.StatusCode)
			w.Write(apiErr.ToJSON())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP keys on the connection peer, ignoring forwarding headers, so a
// client cannot pick its own bucket.
func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if peer, ok := r.Context().Value(PeerAddrKey).(string); ok && peer != "" {
		addr = peer
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
