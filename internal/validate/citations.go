package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/servvia/trust/internal/cache"
	"github.com/servvia/trust/internal/model"
	"github.com/servvia/trust/internal/util"
)

const checkMaxRetries = 3

// checkSleepFunc is the sleep function used between retries (injectable for tests)
var checkSleepFunc = time.Sleep

// Checker probes citation links concurrently
type Checker struct {
	httpClient *http.Client
	maxWorkers int
	userAgent  string
	authority  *AuthorityClassifier
	robots     *util.RobotsChecker
	pace       *HostLimiter
	store      cache.Cache
	cacheTTL   time.Duration
}

// NewChecker builds a checker from config. The cache store may be nil,
// which disables caching; robots checking is skipped when disabled in
// config.
func NewChecker(cfg *model.Config, store cache.Cache) *Checker {
	maxWorkers := cfg.Concurrency.CitationWorkers
	if maxWorkers <= 0 {
		maxWorkers = 8
	}

	timeout := time.Duration(cfg.HTTP.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var robots *util.RobotsChecker
	if cfg.HTTP.RespectRobots {
		robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, timeout)
	}

	return &Checker{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		maxWorkers: maxWorkers,
		userAgent:  cfg.HTTP.UserAgent,
		authority:  NewAuthorityClassifier(&cfg.Authority),
		robots:     robots,
		pace:       NewHostLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		store:      store,
		cacheTTL:   time.Duration(cfg.Cache.TTLHours) * time.Hour,
	}
}

// NewCitation builds an unchecked citation record with its resolved URL
func NewCitation(id, herb, condition string) model.CitationCheck {
	return model.CitationCheck{
		ID:        strings.TrimSpace(id),
		URL:       CitationURL(id),
		Herb:      herb,
		Condition: condition,
	}
}

// CitationURL resolves a study identifier to its canonical URL. PMC
// identifiers land on PubMed Central, bare numeric PMIDs on PubMed.
func CitationURL(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(strings.ToUpper(id), "PMC") {
		return "https://www.ncbi.nlm.nih.gov/pmc/articles/" + strings.ToUpper(id) + "/"
	}
	return "https://pubmed.ncbi.nlm.nih.gov/" + id + "/"
}

// Check probes every citation concurrently and returns them in input
// order with accessibility, status, and authority filled in.
func (c *Checker) Check(ctx context.Context, citations []model.CitationCheck) []model.CitationCheck {
	if len(citations) == 0 {
		return []model.CitationCheck{}
	}

	results := make([]model.CitationCheck, len(citations))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, c.maxWorkers)

	for i, cit := range citations {
		wg.Add(1)
		go func(idx int, cit model.CitationCheck) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				cit.Error = "context cancelled"
				results[idx] = cit
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[idx] = c.checkSingleWithRetry(ctx, cit)
		}(i, cit)
	}

	wg.Wait()
	return results
}

// checkSingle probes one citation link. The authority tier is assigned
// even when the probe fails.
func (c *Checker) checkSingle(ctx context.Context, cit model.CitationCheck) model.CitationCheck {
	cit.Authority = c.authority.Classify(cit.URL)
	cit.IsAccessible = false
	cit.StatusCode = 0
	cit.Error = ""

	key := cache.Key("citation", cit.URL)
	if c.store != nil {
		if data, ok := c.store.Get(key); ok {
			var cached model.CitationCheck
			if err := json.Unmarshal(data, &cached); err == nil {
				cached.Herb = cit.Herb
				cached.Condition = cit.Condition
				return cached
			}
		}
	}

	if c.robots != nil && !c.robots.IsAllowed(ctx, cit.URL) {
		cit.Error = "blocked by robots.txt"
		return cit
	}

	// Cache hits and robots blocks never consume a token
	if err := c.pace.Wait(ctx, cit.URL); err != nil {
		cit.Error = fmt.Sprintf("rate limit wait: %v", err)
		return cit
	}

	status, err := c.probe(ctx, http.MethodHead, cit.URL)
	// Some hosts refuse HEAD outright; ask again properly
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = c.probe(ctx, http.MethodGet, cit.URL)
	}
	if err != nil {
		cit.Error = fmt.Sprintf("request failed: %v", err)
		return cit
	}

	cit.StatusCode = status
	cit.IsAccessible = status >= 200 && status < 400

	if c.store != nil && !isRetryableCheck(cit) {
		if data, err := json.Marshal(cit); err == nil {
			_ = c.store.Set(key, data, c.cacheTTL)
		}
	}
	return cit
}

// probe issues one request and reports the status code
func (c *Checker) probe(ctx context.Context, method, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode, nil
}

// checkSingleWithRetry retries transient failures with exponential backoff
func (c *Checker) checkSingleWithRetry(ctx context.Context, cit model.CitationCheck) model.CitationCheck {
	var result model.CitationCheck
	for attempt := 0; attempt < checkMaxRetries; attempt++ {
		result = c.checkSingle(ctx, cit)
		if !isRetryableCheck(result) {
			return result
		}
		if attempt < checkMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			checkSleepFunc(backoff)
		}
	}
	return result
}

// isRetryableCheck returns true for results that indicate transient failures
func isRetryableCheck(cit model.CitationCheck) bool {
	if cit.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if cit.StatusCode >= 500 && cit.StatusCode < 600 {
		return true
	}
	if cit.Error != "" {
		s := strings.ToLower(cit.Error)
		return strings.Contains(s, "timeout") ||
			strings.Contains(s, "connection refused") ||
			strings.Contains(s, "connection reset")
	}
	return false
}
