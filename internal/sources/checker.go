package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/eualt/trustscore/internal/model"
	"github.com/eualt/trustscore/internal/worker"
)

const checkMaxAttempts = 3

// Checker verifies that evidence source URLs still resolve. It never affects scores.
type Checker struct {
	httpClient *http.Client
	limiter    *worker.Limiter
	robots     *RobotsChecker
	userAgent  string
	maxWorkers int
	logger     zerolog.Logger

	// sleep waits between attempts; replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewChecker builds a checker from the HTTP, rate limiting and concurrency settings
func NewChecker(cfg *model.Config, logger zerolog.Logger) *Checker {
	workers := cfg.Concurrency.CheckWorkers
	if workers <= 0 {
		workers = 10
	}

	client := &http.Client{
		Timeout: cfg.HTTP.Timeout,
		Transport: &http.Transport{
			Proxy: NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("stopped after 5 redirects")
			}
			return nil
		},
	}

	c := &Checker{
		httpClient: client,
		limiter:    worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		userAgent:  cfg.HTTP.UserAgent,
		maxWorkers: workers,
		logger:     logger.With().Str("component", "sources").Logger(),
		sleep:      sleepContext,
	}
	if cfg.HTTP.RespectRobots {
		c.robots = NewRobotsChecker(client, cfg.HTTP.UserAgent)
	}
	return c
}

// Check checks every ref concurrently and returns one status per ref, in order
func (c *Checker) Check(ctx context.Context, refs []SourceRef) []model.LinkStatus {
	results := make([]model.LinkStatus, len(refs))
	if len(refs) == 0 {
		return results
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, c.maxWorkers)

	for i, ref := range refs {
		wg.Add(1)
		go func(idx int, ref SourceRef) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = model.LinkStatus{URL: ref.URL, ItemIDs: ref.ItemIDs, Error: "context cancelled"}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			status := c.checkWithRetry(ctx, ref.URL)
			status.ItemIDs = ref.ItemIDs
			results[idx] = status
		}(i, ref)
	}

	wg.Wait()
	return results
}

// CheckURLs checks plain URLs
func (c *Checker) CheckURLs(ctx context.Context, urls []string) []model.LinkStatus {
	refs := make([]SourceRef, len(urls))
	for i, u := range urls {
		refs[i] = SourceRef{URL: u}
	}
	return c.Check(ctx, refs)
}

func (c *Checker) checkWithRetry(ctx context.Context, rawURL string) model.LinkStatus {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return model.LinkStatus{URL: rawURL, IsDead: true, Error: "not an http(s) URL"}
	}

	var crawlDelay time.Duration
	if c.robots != nil {
		allowed, delay, err := c.robots.CanFetch(ctx, rawURL)
		if err == nil && !allowed {
			c.logger.Debug().Str("url", rawURL).Msg("robots.txt disallows check")
			return model.LinkStatus{URL: rawURL, Disallowed: true}
		}
		crawlDelay = delay
	}

	var status model.LinkStatus
	for attempt := 0; attempt < checkMaxAttempts; attempt++ {
		if err := c.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return model.LinkStatus{URL: rawURL, Error: fmt.Sprintf("rate limit: %v", err)}
		}

		var retryable bool
		status, retryable = c.checkOnce(ctx, rawURL)
		if !retryable {
			return status
		}
		if attempt < checkMaxAttempts-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			c.logger.Debug().Str("url", rawURL).Int("attempt", attempt+1).Dur("backoff", backoff).Msg("retrying source check")
			if err := c.sleep(ctx, backoff); err != nil {
				return status
			}
		}
	}

	c.logger.Warn().Str("url", rawURL).Str("error", status.Error).Int("status", status.StatusCode).Msg("source check failed after retries")
	return status
}

// checkOnce issues a HEAD request, falling back to GET for servers that reject HEAD
func (c *Checker) checkOnce(ctx context.Context, rawURL string) (model.LinkStatus, bool) {
	status := model.LinkStatus{URL: rawURL}

	resp, err := c.do(ctx, http.MethodHead, rawURL)
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		_ = resp.Body.Close()
		resp, err = c.do(ctx, http.MethodGet, rawURL)
	}
	if err != nil {
		status.IsDead = true
		status.Error = fmt.Sprintf("request failed: %v", err)
		return status, ctx.Err() == nil && isRetryableNetworkError(status.Error)
	}
	defer func() { _ = resp.Body.Close() }()

	status.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		status.IsAccessible = true
	case resp.StatusCode == http.StatusTooManyRequests:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		status.IsDead = true
	}

	if final := resp.Request.URL.String(); final != rawURL {
		status.RedirectURL = final
	}

	retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
	return status, retryable
}

func (c *Checker) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	return c.httpClient.Do(req)
}

func isRetryableNetworkError(errMsg string) bool {
	s := strings.ToLower(errMsg)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset") ||
		strings.Contains(s, "eof")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
