package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/servvia/trust/internal/model"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()

	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false // no disk writes from tests

	p, err := NewPipeline(cfg)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	return p
}

func TestPipeline_Verify_RemedyQuery(t *testing.T) {
	p := newTestPipeline(t)

	report, err := p.Verify(context.Background(), Request{
		Query:    "How do I stop nausea?",
		Response: "Try ginger tea.",
	})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if report.Intent != model.IntentHomeRemedy {
		t.Errorf("Expected intent %s, got %s", model.IntentHomeRemedy, report.Intent)
	}
	if report.Condition != "nausea" {
		t.Errorf("Expected condition nausea, got %q", report.Condition)
	}
	if report.Response != "Try ginger tea." {
		t.Errorf("Expected raw response preserved, got %q", report.Response)
	}
	if len(report.Results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(report.Results))
	}
	if report.Results[0].Herb != "ginger" {
		t.Errorf("Expected herb ginger, got %s", report.Results[0].Herb)
	}
	if !report.Results[0].IsValid {
		t.Error("Expected ginger for nausea to verify")
	}
	if len(report.Citations) != 0 {
		t.Errorf("Expected no citations without check_citations, got %d", len(report.Citations))
	}
	if report.GeneratedAt.IsZero() {
		t.Error("Expected a generation timestamp")
	}
}

func TestPipeline_Verify_Emergency(t *testing.T) {
	p := newTestPipeline(t)

	report, err := p.Verify(context.Background(), Request{
		Query:    "I think my father is having a heart attack",
		Response: "Try ginger tea.",
	})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if report.Intent != model.IntentEmergency {
		t.Errorf("Expected emergency intent, got %s", report.Intent)
	}
	if report.Condition != "" {
		t.Errorf("Expected no condition for emergency, got %q", report.Condition)
	}
	if len(report.Results) != 0 {
		t.Errorf("Expected no verification for emergency, got %d results", len(report.Results))
	}
}

func TestPipeline_Verify_ExplicitCondition(t *testing.T) {
	p := newTestPipeline(t)

	// The query says headache; the explicit condition must win
	report, err := p.Verify(context.Background(), Request{
		Query:     "what helps with a headache?",
		Response:  "Ginger is great.",
		Condition: "  Nausea ",
	})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if report.Condition != "nausea" {
		t.Errorf("Expected normalized condition nausea, got %q", report.Condition)
	}
	if len(report.Results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(report.Results))
	}
	if report.Results[0].Condition != "nausea" {
		t.Errorf("Expected claim verified against nausea, got %s", report.Results[0].Condition)
	}
}

func TestPipeline_Verify_ProfileAllergy(t *testing.T) {
	p := newTestPipeline(t)

	report, err := p.Verify(context.Background(), Request{
		Query:    "How do I stop nausea?",
		Response: "Try ginger tea.",
		Profile:  &model.UserProfile{Allergies: []string{"ginger"}},
	})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if len(report.Results) != 0 {
		t.Errorf("Expected allergic herb to be dropped, got %d results", len(report.Results))
	}
}

func TestPipeline_Verify_HTMLResponse(t *testing.T) {
	p := newTestPipeline(t)

	// "lavender" appears only as a CSS color; the visible text suggests
	// ginger. Only the visible text should be scanned.
	response := `<html><head><style>body { background: lavender; }</style></head>
<body><p>Try <b>ginger</b> tea.</p></body></html>`

	report, err := p.Verify(context.Background(), Request{
		Query:    "How do I stop nausea?",
		Response: response,
	})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if len(report.Results) != 1 {
		t.Fatalf("Expected 1 result from visible text, got %d", len(report.Results))
	}
	if report.Results[0].Herb != "ginger" {
		t.Errorf("Expected ginger, got %s", report.Results[0].Herb)
	}
	if report.Response != response {
		t.Errorf("Expected the report to keep the response verbatim")
	}
}

func TestBuildCitations_Dedup(t *testing.T) {
	p := newTestPipeline(t)

	results := []model.VerificationResult{
		{Herb: "ginger", Condition: "nausea", IsValid: true},
		{Herb: "ginger", Condition: "nausea", IsValid: true},
	}

	citations := BuildCitations(p.Knowledge(), results)

	if len(citations) != 2 {
		t.Fatalf("Expected 2 deduplicated citations, got %d", len(citations))
	}

	ids := map[string]bool{}
	for _, c := range citations {
		ids[c.ID] = true
		if c.Herb != "ginger" || c.Condition != "nausea" {
			t.Errorf("Expected citation tagged ginger/nausea, got %s/%s", c.Herb, c.Condition)
		}
		if c.URL == "" {
			t.Errorf("Expected URL for citation %s", c.ID)
		}
	}
	if !ids["PMC3016669"] || !ids["PMC4818021"] {
		t.Errorf("Expected the ginger nausea studies, got %v", ids)
	}
}

func TestBuildCitations_SkipsUnverified(t *testing.T) {
	p := newTestPipeline(t)

	results := []model.VerificationResult{
		{Herb: "unicorn root", Condition: "nausea", IsHallucination: true},
	}

	citations := BuildCitations(p.Knowledge(), results)
	if len(citations) != 0 {
		t.Errorf("Expected no citations for unverified claims, got %d", len(citations))
	}
}

func TestLoadKnowledge_Embedded(t *testing.T) {
	kb, err := LoadKnowledge(model.KnowledgeConfig{})
	if err != nil {
		t.Fatalf("LoadKnowledge failed: %v", err)
	}
	if len(kb.KnownHerbs()) == 0 {
		t.Error("Expected embedded tables to carry herbs")
	}
}

// ollamaStub fakes the two Ollama endpoints the generator touches and
// records the last prompt it was sent.
type ollamaStub struct {
	server *httptest.Server

	mu         sync.Mutex
	lastPrompt string
	tagsStatus int
}

func newOllamaStub(responseText string) *ollamaStub {
	stub := &ollamaStub{tagsStatus: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		status := stub.tagsStatus
		stub.mu.Unlock()
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"models":[{"name":"test-model"}]}`)
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		stub.mu.Lock()
		stub.lastPrompt = req.Prompt
		stub.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"model":"test-model","response":%q,"done":true,"prompt_eval_count":10,"eval_count":20}`,
			responseText)
	})

	stub.server = httptest.NewServer(mux)
	return stub
}

func (s *ollamaStub) prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPrompt
}

func (s *ollamaStub) setTagsStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tagsStatus = status
}

func newAskPipeline(t *testing.T, baseURL string) *Pipeline {
	t.Helper()

	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.LLM.Enabled = true
	cfg.LLM.Provider = "ollama"
	cfg.LLM.BaseURL = baseURL
	cfg.LLM.Model = "test-model"

	p, err := NewPipeline(cfg)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	return p
}

func TestPipeline_Ask(t *testing.T) {
	stub := newOllamaStub("Try ginger tea for your nausea.")
	defer stub.server.Close()

	p := newAskPipeline(t, stub.server.URL)

	report, err := p.Ask(context.Background(), AskRequest{Query: "How do I stop nausea?"})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if report.Generation == nil {
		t.Fatal("Expected generation metadata")
	}
	if !report.Generation.Enabled {
		t.Error("Expected generation to be marked enabled")
	}
	if report.Generation.Provider != "ollama" {
		t.Errorf("Expected provider ollama, got %s", report.Generation.Provider)
	}
	if report.Generation.Model != "test-model" {
		t.Errorf("Expected model test-model, got %s", report.Generation.Model)
	}

	foundTokens := false
	for _, w := range report.Generation.Warnings {
		if strings.Contains(w, "Tokens used: 30") {
			foundTokens = true
		}
	}
	if !foundTokens {
		t.Errorf("Expected token count warning, got %v", report.Generation.Warnings)
	}

	if report.Condition != "nausea" {
		t.Errorf("Expected condition nausea, got %q", report.Condition)
	}
	if report.Response != "Try ginger tea for your nausea." {
		t.Errorf("Expected generated text in report, got %q", report.Response)
	}
	if len(report.Results) != 1 || !report.Results[0].IsValid {
		t.Errorf("Expected the generated suggestion to verify, got %+v", report.Results)
	}

	// The prompt carries the evidence allowlist for the condition
	if !strings.Contains(stub.prompt(), "- ginger (Clinical Trial)") {
		t.Errorf("Expected ginger evidence hint in prompt, got:\n%s", stub.prompt())
	}
}

func TestPipeline_Ask_AllergyFiltersHints(t *testing.T) {
	stub := newOllamaStub("Peppermint tea may settle your stomach.")
	defer stub.server.Close()

	p := newAskPipeline(t, stub.server.URL)

	_, err := p.Ask(context.Background(), AskRequest{
		Query:   "How do I stop nausea?",
		Profile: &model.UserProfile{Allergies: []string{"ginger"}},
	})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	prompt := stub.prompt()
	if strings.Contains(prompt, "- ginger (Clinical Trial)") {
		t.Errorf("Expected allergic herb excluded from hints, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "- peppermint (") {
		t.Errorf("Expected remaining evidence hints in prompt, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "allergic to: ginger") {
		t.Errorf("Expected allergy note in prompt, got:\n%s", prompt)
	}
}

func TestPipeline_Ask_RequiresProvider(t *testing.T) {
	p := newTestPipeline(t)

	_, err := p.Ask(context.Background(), AskRequest{Query: "How do I stop nausea?"})
	if err == nil {
		t.Fatal("Expected error without an LLM provider")
	}
	if !strings.Contains(err.Error(), "requires an LLM provider") {
		t.Errorf("Expected provider error, got: %v", err)
	}
}

func TestPipeline_Ask_ProviderDown(t *testing.T) {
	stub := newOllamaStub("never reached")
	stub.setTagsStatus(http.StatusInternalServerError)
	defer stub.server.Close()

	p := newAskPipeline(t, stub.server.URL)

	report, err := p.Ask(context.Background(), AskRequest{Query: "How do I stop nausea?"})
	if err != nil {
		t.Fatalf("Ask should degrade, not fail: %v", err)
	}

	if report.Response != "" {
		t.Errorf("Expected empty response from dead provider, got %q", report.Response)
	}
	if report.Generation == nil {
		t.Fatal("Expected generation metadata")
	}
	if report.Generation.Enabled {
		t.Error("Expected generation marked disabled")
	}

	found := false
	for _, w := range report.Generation.Warnings {
		if strings.Contains(w, "not available") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected availability warning, got %v", report.Generation.Warnings)
	}
	if len(report.Results) != 0 {
		t.Errorf("Expected no results for empty response, got %d", len(report.Results))
	}
}
