package validate

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter paces outbound probes per host. Each host gets its own
// token bucket, so a run of PubMed checks cannot starve PubMed Central
// checks and neither can stampede NCBI.
type HostLimiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewHostLimiter creates a limiter shared by all probes
func NewHostLimiter(requestsPerSecond float64, burst int) *HostLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}
	if burst <= 0 {
		burst = 4
	}

	return &HostLimiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until the URL's host has clearance
func (l *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	return l.limiterFor(hostOf(rawURL)).Wait(ctx)
}

// Allow reports whether a probe may proceed without waiting
func (l *HostLimiter) Allow(rawURL string) bool {
	return l.limiterFor(hostOf(rawURL)).Allow()
}

// SetHostRate overrides the default rate for one host
func (l *HostLimiter) SetHostRate(host string, requestsPerSecond float64, burst int) {
	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.limiters[host] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// limiterFor returns the host's bucket, creating it on first use
func (l *HostLimiter) limiterFor(host string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.limiters[host]
	l.mu.RUnlock()
	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring the write lock
	if limiter, ok := l.limiters[host]; ok {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[host] = limiter
	return limiter
}

// hostOf extracts the host from a URL; unparseable URLs share one bucket
func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return parsed.Host
}
