// Package pubmed queries the NCBI E-utilities API for studies backing a
// herb-condition pair. Lookups are rate limited per NCBI policy and cached
// so repeated verifications of the same pair stay offline.
package pubmed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/servvia/trust/internal/cache"
	"github.com/servvia/trust/internal/model"
)

const (
	defaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	defaultEmail   = "servvia@example.com"
	defaultRetMax  = 5

	// NCBI allows 3 req/s anonymously, 10 req/s with an API key
	anonymousRate = 3
	keyedRate     = 10
)

const searchMaxRetries = 3

// searchSleepFunc is the sleep function used between retries (injectable for tests)
var searchSleepFunc = time.Sleep

// Client talks to the E-utilities endpoints (esearch, efetch)
type Client struct {
	httpClient *http.Client
	baseURL    string
	email      string
	apiKey     string
	retMax     int
	userAgent  string
	limiter    *rate.Limiter
	store      cache.Cache
	cacheTTL   time.Duration
}

// Article is one fetched PubMed record
type Article struct {
	PMID           string `json:"pmid"`
	Title          string `json:"title"`
	Abstract       string `json:"abstract"` // Truncated to 500 characters
	Year           string `json:"year"`
	IsRCT          bool   `json:"is_rct"`
	IsMetaAnalysis bool   `json:"is_meta_analysis"`
}

// Validation summarizes what PubMed knows about a herb-condition pair
type Validation struct {
	Validated     bool     `json:"validated"`
	EvidenceCount int      `json:"evidence_count"`
	PubMedIDs     []string `json:"pubmed_ids"`
	Message       string   `json:"message"`
}

// New creates a client from config. The cache store may be nil, which
// disables caching.
func New(cfg model.PubMedConfig, httpCfg model.HTTPConfig, store cache.Cache, cacheTTL time.Duration) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	email := cfg.Email
	if email == "" {
		email = defaultEmail
	}
	retMax := cfg.RetMax
	if retMax <= 0 {
		retMax = defaultRetMax
	}

	rps := rate.Limit(anonymousRate)
	if cfg.APIKey != "" {
		rps = rate.Limit(keyedRate)
	}

	timeout := time.Duration(httpCfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		email:      email,
		apiKey:     cfg.APIKey,
		retMax:     retMax,
		userAgent:  httpCfg.UserAgent,
		limiter:    rate.NewLimiter(rps, 1),
		store:      store,
		cacheTTL:   cacheTTL,
	}
}

// Search runs an esearch query and returns matching PMIDs, newest first
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]string, error) {
	if maxResults <= 0 {
		maxResults = c.retMax
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", query)
	params.Set("retmax", fmt.Sprintf("%d", maxResults))
	params.Set("retmode", "json")
	params.Set("email", c.email)
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	body, err := c.getWithRetry(ctx, c.baseURL+"/esearch.fcgi?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("pubmed search: %w", err)
	}

	var payload struct {
		Result struct {
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("pubmed search: decode response: %w", err)
	}
	return payload.Result.IDList, nil
}

// FetchAbstracts retrieves article records for the given PMIDs
func (c *Client) FetchAbstracts(ctx context.Context, pmids []string) ([]Article, error) {
	if len(pmids) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(pmids, ","))
	params.Set("retmode", "xml")
	params.Set("email", c.email)
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	body, err := c.getWithRetry(ctx, c.baseURL+"/efetch.fcgi?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("pubmed fetch: %w", err)
	}
	articles, err := parseArticleSet(body)
	if err != nil {
		return nil, fmt.Errorf("pubmed fetch: %w", err)
	}
	return articles, nil
}

// ValidateRemedy searches for studies where both the herb and the
// condition appear in the title or abstract. Results are cached.
func (c *Client) ValidateRemedy(ctx context.Context, herb, condition string) (*Validation, error) {
	key := cache.Key("pubmed", "validate", strings.ToLower(herb), strings.ToLower(condition))
	if c.store != nil {
		if data, ok := c.store.Get(key); ok {
			var v Validation
			if err := json.Unmarshal(data, &v); err == nil {
				return &v, nil
			}
		}
	}

	query := fmt.Sprintf(`"%s"[Title/Abstract] AND "%s"[Title/Abstract] AND (remedy OR treatment)`, herb, condition)
	pmids, err := c.Search(ctx, query, c.retMax)
	if err != nil {
		return nil, err
	}

	v := &Validation{
		Validated:     len(pmids) > 0,
		EvidenceCount: len(pmids),
		PubMedIDs:     pmids,
		Message:       fmt.Sprintf("Found %d PubMed articles for %s treating %s", len(pmids), herb, condition),
	}

	if c.store != nil {
		if data, err := json.Marshal(v); err == nil {
			_ = c.store.Set(key, data, c.cacheTTL)
		}
	}
	return v, nil
}

// getWithRetry fetches a URL under the rate limit, retrying transient
// failures with exponential backoff.
func (c *Client) getWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < searchMaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, retryable, err := c.get(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		if attempt < searchMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			searchSleepFunc(backoff)
		}
	}
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, rawURL string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// 429 and 5xx are transient; anything else is a caller bug
		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, transient, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}
	return data, false, nil
}

// efetch XML shapes, trimmed to the fields the verifier needs
type articleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	PMID      string   `xml:"MedlineCitation>PMID"`
	Title     string   `xml:"MedlineCitation>Article>ArticleTitle"`
	Abstract  []string `xml:"MedlineCitation>Article>Abstract>AbstractText"`
	Year      string   `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>Year"`
	PubTypes  []string `xml:"MedlineCitation>Article>PublicationTypeList>PublicationType"`
}

func parseArticleSet(data []byte) ([]Article, error) {
	var set articleSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}

	articles := make([]Article, 0, len(set.Articles))
	for _, a := range set.Articles {
		articles = append(articles, Article{
			PMID:           a.PMID,
			Title:          a.Title,
			Abstract:       truncate(strings.Join(a.Abstract, " "), 500),
			Year:           a.Year,
			IsRCT:          anyContains(a.PubTypes, "Randomized"),
			IsMetaAnalysis: anyContains(a.PubTypes, "Meta-Analysis"),
		})
	}
	return articles, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func anyContains(list []string, substr string) bool {
	for _, s := range list {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
