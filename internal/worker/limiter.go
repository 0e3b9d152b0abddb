package worker

import (
	"context"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// Limiter implements per-site rate limiting.
// Hosts sharing a registrable domain (docs.example.com, www.example.com) share one bucket.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter. A non-positive rate disables limiting.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait waits for rate limit clearance for the given URL
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	site, err := SiteKey(rawURL)
	if err != nil {
		return err
	}

	return l.getLimiter(site).Wait(ctx)
}

// Allow checks if a request is allowed without waiting
func (l *Limiter) Allow(rawURL string) bool {
	site, err := SiteKey(rawURL)
	if err != nil {
		return false
	}

	return l.getLimiter(site).Allow()
}

func (l *Limiter) getLimiter(site string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[site]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[site]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[site] = limiter

	return limiter
}

// SetSiteRate sets a custom rate limit for a registrable domain
func (l *Limiter) SetSiteRate(site string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[strings.ToLower(site)] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// SiteKey returns the bucket key for rawURL: its registrable domain (eTLD+1),
// or the bare host for IPs and hosts that are themselves a public suffix.
func SiteKey(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	host := strings.ToLower(parsed.Hostname())
	if net.ParseIP(host) != nil {
		return host, nil
	}
	if site, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return site, nil
	}
	return host, nil
}

// WaitWithDelay waits for rate limit and adds an additional delay
func (l *Limiter) WaitWithDelay(ctx context.Context, rawURL string, additionalDelay time.Duration) error {
	if err := l.Wait(ctx, rawURL); err != nil {
		return err
	}

	if additionalDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(additionalDelay):
		}
	}

	return nil
}
