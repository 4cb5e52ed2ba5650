package validate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/servvia/trust/internal/cache"
	"github.com/servvia/trust/internal/model"
)

func init() {
	// Disable retry sleep in all tests for fast execution
	checkSleepFunc = func(d time.Duration) {}
}

func newTestChecker(store cache.Cache) *Checker {
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = 5
	cfg.HTTP.RespectRobots = false
	cfg.Concurrency.CitationWorkers = 4
	// Pacing must never slow tests down
	cfg.RateLimiting.RequestsPerSecond = 10000
	cfg.RateLimiting.BurstSize = 100
	return NewChecker(cfg, store)
}

func TestCitationURL(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"PMC3016669", "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC3016669/"},
		{"pmc123", "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC123/"},
		{"3016669", "https://pubmed.ncbi.nlm.nih.gov/3016669/"},
		{" 3016669 ", "https://pubmed.ncbi.nlm.nih.gov/3016669/"},
	}

	for _, tt := range tests {
		if got := CitationURL(tt.id); got != tt.want {
			t.Errorf("CitationURL(%q): expected %q, got %q", tt.id, tt.want, got)
		}
	}
}

func TestNewCitation(t *testing.T) {
	cit := NewCitation("PMC3016669", "ginger", "nausea")
	if cit.ID != "PMC3016669" {
		t.Errorf("Expected ID PMC3016669, got %q", cit.ID)
	}
	if cit.URL != "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC3016669/" {
		t.Errorf("Unexpected URL: %q", cit.URL)
	}
	if cit.Herb != "ginger" || cit.Condition != "nausea" {
		t.Errorf("Expected claim context carried, got %q/%q", cit.Herb, cit.Condition)
	}
}

func TestChecker_Check_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("Expected HEAD request, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := newTestChecker(nil)
	results := checker.Check(context.Background(), []model.CitationCheck{
		{ID: "1", URL: server.URL + "/1"},
	})

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if !results[0].IsAccessible {
		t.Error("Expected citation to be accessible")
	}
	if results[0].StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", results[0].StatusCode)
	}
}

func TestChecker_Check_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := newTestChecker(nil)
	results := checker.Check(context.Background(), []model.CitationCheck{
		{ID: "1", URL: server.URL},
	})

	if results[0].IsAccessible {
		t.Error("Expected 404 citation not to be accessible")
	}
	if results[0].StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", results[0].StatusCode)
	}
}

func TestChecker_Check_FallsBackToGET(t *testing.T) {
	var sawHead, sawGet int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			atomic.AddInt32(&sawHead, 1)
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			atomic.AddInt32(&sawGet, 1)
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	checker := newTestChecker(nil)
	results := checker.Check(context.Background(), []model.CitationCheck{
		{ID: "1", URL: server.URL},
	})

	if atomic.LoadInt32(&sawHead) != 1 || atomic.LoadInt32(&sawGet) != 1 {
		t.Errorf("Expected one HEAD then one GET, got %d HEAD / %d GET", sawHead, sawGet)
	}
	if !results[0].IsAccessible {
		t.Error("Expected GET fallback to mark the citation accessible")
	}
	if results[0].StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 from fallback, got %d", results[0].StatusCode)
	}
}

func TestChecker_Check_OrderPreserved(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := newTestChecker(nil)
	citations := []model.CitationCheck{
		{ID: "a", URL: server.URL + "/a"},
		{ID: "b", URL: server.URL + "/b"},
		{ID: "c", URL: server.URL + "/c"},
	}

	results := checker.Check(context.Background(), citations)
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	for i, id := range []string{"a", "b", "c"} {
		if results[i].ID != id {
			t.Errorf("Expected result %d to be %q, got %q", i, id, results[i].ID)
		}
	}
}

func TestChecker_Check_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := newTestChecker(nil)
	results := checker.Check(context.Background(), []model.CitationCheck{
		{ID: "1", URL: server.URL},
	})

	if !results[0].IsAccessible {
		t.Error("Expected retries to reach the 200")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestChecker_Check_TransportError(t *testing.T) {
	checker := newTestChecker(nil)
	// Port 1 refuses connections
	results := checker.Check(context.Background(), []model.CitationCheck{
		{ID: "1", URL: "http://127.0.0.1:1/"},
	})

	if results[0].IsAccessible {
		t.Error("Expected unreachable citation not to be accessible")
	}
	if results[0].Error == "" {
		t.Error("Expected a transport error message")
	}
}

func TestChecker_Check_CacheSkipsSecondProbe(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := cache.NewMemoryCache(time.Minute, time.Minute)
	checker := newTestChecker(store)

	cit := model.CitationCheck{ID: "1", URL: server.URL, Herb: "ginger"}
	checker.Check(context.Background(), []model.CitationCheck{cit})

	cit2 := model.CitationCheck{ID: "1", URL: server.URL, Herb: "turmeric"}
	results := checker.Check(context.Background(), []model.CitationCheck{cit2})

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 probe, got %d", got)
	}
	if !results[0].IsAccessible {
		t.Error("Expected cached result to be accessible")
	}
	// Claim context reflects the current caller, not the cached one
	if results[0].Herb != "turmeric" {
		t.Errorf("Expected herb turmeric, got %q", results[0].Herb)
	}
}

func TestChecker_Check_RobotsBlocked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.Write([]byte("User-agent: *\nDisallow: /\n"))
			return
		}
		t.Errorf("Expected no probe past robots.txt, got %s %s", r.Method, r.URL.Path)
	}))
	defer server.Close()

	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = 5
	cfg.HTTP.RespectRobots = true
	checker := NewChecker(cfg, nil)

	results := checker.Check(context.Background(), []model.CitationCheck{
		{ID: "1", URL: server.URL + "/article"},
	})

	if results[0].IsAccessible {
		t.Error("Expected blocked citation not to be accessible")
	}
	if results[0].Error != "blocked by robots.txt" {
		t.Errorf("Expected robots error, got %q", results[0].Error)
	}
}

func TestChecker_Check_Empty(t *testing.T) {
	checker := newTestChecker(nil)
	results := checker.Check(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}
