package validate

import (
	"context"
	"testing"
)

func TestHostLimiter_PerHostBuckets(t *testing.T) {
	limiter := NewHostLimiter(1, 1)

	if !limiter.Allow("https://pubmed.ncbi.nlm.nih.gov/3016669/") {
		t.Error("Expected first probe to a host to be allowed")
	}
	if limiter.Allow("https://pubmed.ncbi.nlm.nih.gov/4818021/") {
		t.Error("Expected second probe to the same host to be throttled")
	}
	if !limiter.Allow("https://www.ncbi.nlm.nih.gov/pmc/articles/PMC3016669/") {
		t.Error("Expected a different host to have its own bucket")
	}
}

func TestHostLimiter_Wait(t *testing.T) {
	limiter := NewHostLimiter(1000, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://example.com/a"); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "https://example.com/b"); err != nil {
		t.Fatalf("Second wait failed: %v", err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := limiter.Wait(cancelled, "https://example.com/c"); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestHostLimiter_SetHostRate(t *testing.T) {
	limiter := NewHostLimiter(100, 10)
	limiter.SetHostRate("slow.example", 0.1, 1)

	if !limiter.Allow("https://slow.example/one") {
		t.Error("Expected first probe within the burst to pass")
	}
	if limiter.Allow("https://slow.example/two") {
		t.Error("Expected second probe to be throttled by the host override")
	}
	if !limiter.Allow("https://fast.example/") {
		t.Error("Expected other hosts to keep the default rate")
	}
}

func TestHostLimiter_Defaults(t *testing.T) {
	limiter := NewHostLimiter(0, 0)

	// Default burst is 4
	for i := 0; i < 4; i++ {
		if !limiter.Allow("https://example.com/") {
			t.Fatalf("Expected probe %d within the default burst to pass", i+1)
		}
	}
	if limiter.Allow("https://example.com/") {
		t.Error("Expected probe beyond the default burst to be throttled")
	}
}

func TestHostLimiter_UnparseableURLsShareBucket(t *testing.T) {
	limiter := NewHostLimiter(1, 1)

	if !limiter.Allow("::bad") {
		t.Error("Expected first unparseable URL to be allowed")
	}
	if limiter.Allow("::bad") {
		t.Error("Expected unparseable URLs to share one bucket")
	}
}
