package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientLimiters keeps one token bucket per client IP. Buckets idle for
// longer than idleTTL are dropped during a sweep.
type clientLimiters struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiters(requestsPerMin, burst int, idleTTL time.Duration) *clientLimiters {
	if idleTTL <= 0 {
		idleTTL = time.Minute
	}
	return &clientLimiters{
		clients:   make(map[string]*clientLimiter),
		limit:     rate.Limit(float64(requestsPerMin) / 60),
		burst:     burst,
		idleTTL:   idleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether the client may make a request now
func (c *clientLimiters) Allow(client string) bool {
	c.mu.Lock()
	now := c.now()
	if now.Sub(c.lastSweep) >= c.idleTTL {
		c.sweep(now)
	}

	entry, ok := c.clients[client]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.clients[client] = entry
	}
	entry.lastSeen = now
	c.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// Len returns the number of tracked clients
func (c *clientLimiters) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}

// sweep must be called with mu held
func (c *clientLimiters) sweep(now time.Time) {
	for client, entry := range c.clients {
		if now.Sub(entry.lastSeen) >= c.idleTTL {
			delete(c.clients, client)
		}
	}
	c.lastSweep = now
}

// clientIP returns the request's remote IP. chi's RealIP runs earlier in
// the chain and has already applied X-Forwarded-For / X-Real-IP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
