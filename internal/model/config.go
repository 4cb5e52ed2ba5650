package model

// Config holds all runtime configuration for the trust pipeline.
// Values come from (highest priority first): CLI flags, SERVVIA_* env vars,
// ~/.servvia/config.yaml, then DefaultConfig.
type Config struct {
	Knowledge    KnowledgeConfig   `json:"knowledge" yaml:"knowledge"`
	HTTP         HTTPConfig        `json:"http" yaml:"http"`
	Cache        CacheConfig       `json:"cache" yaml:"cache"`
	Concurrency  ConcurrencyConfig `json:"concurrency" yaml:"concurrency"`
	RateLimiting RateLimitConfig   `json:"rate_limiting" yaml:"rate_limiting"`
	PubMed       PubMedConfig      `json:"pubmed" yaml:"pubmed"`
	Authority    AuthorityConfig   `json:"authority" yaml:"authority"`
	LLM          LLMConfig         `json:"llm" yaml:"llm"`
	Output       OutputConfig      `json:"output" yaml:"output"`
}

// KnowledgeConfig controls where the evidence tables are loaded from
type KnowledgeConfig struct {
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"` // Directory of YAML tables; empty = embedded defaults
}

// HTTPConfig controls outbound HTTP behavior
type HTTPConfig struct {
	Timeout       int    `json:"timeout" yaml:"timeout"`               // Request timeout in seconds
	UserAgent     string `json:"user_agent" yaml:"user_agent"`         //
	MaxBodyBytes  int64  `json:"max_body_bytes" yaml:"max_body_bytes"` // Response body cap
	InsecureTLS   bool   `json:"insecure_tls" yaml:"insecure_tls"`     // Skip certificate verification
	RespectRobots bool   `json:"respect_robots" yaml:"respect_robots"` // Honor robots.txt on citation checks

	HTTPProxy  string `json:"http_proxy,omitempty" yaml:"http_proxy,omitempty"`
	HTTPSProxy string `json:"https_proxy,omitempty" yaml:"https_proxy,omitempty"`
	NoProxy    string `json:"no_proxy,omitempty" yaml:"no_proxy,omitempty"`
}

// CacheConfig controls caching of PubMed lookups and citation checks
type CacheConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Dir      string `json:"dir,omitempty" yaml:"dir,omitempty"` // Disk cache location; empty = ~/.servvia/cache
	TTLHours int    `json:"ttl_hours" yaml:"ttl_hours"`         // Entry lifetime
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	Workers         int `json:"workers" yaml:"workers"`                   // Batch verification workers
	CitationWorkers int `json:"citation_workers" yaml:"citation_workers"` // Parallel citation link checks
}

// RateLimitConfig bounds outbound request rates for batch runs
type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	BurstSize         int     `json:"burst_size" yaml:"burst_size"`
}

// PubMedConfig controls the NCBI E-utilities client.
// NCBI allows 3 requests/second anonymously, 10/second with an API key.
type PubMedConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"` // Override for testing
	Email   string `json:"email,omitempty" yaml:"email,omitempty"`       // Contact email NCBI asks for
	APIKey  string `json:"-" yaml:"-"`                                   // From NCBI_API_KEY env, never serialized
	RetMax  int    `json:"retmax" yaml:"retmax"`                         // Max studies per search
}

// AuthorityConfig lists domain suffixes per citation authority class
type AuthorityConfig struct {
	Primary   []string `json:"primary,omitempty" yaml:"primary,omitempty"`
	Secondary []string `json:"secondary,omitempty" yaml:"secondary,omitempty"`
	Tertiary  []string `json:"tertiary,omitempty" yaml:"tertiary,omitempty"`
}

// LLMConfig controls optional response generation.
// Generation is strictly upstream of verification and never affects verdicts.
type LLMConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	Provider       string `json:"provider,omitempty" yaml:"provider,omitempty"` // openai, anthropic, ollama
	Model          string `json:"model,omitempty" yaml:"model,omitempty"`       // Empty = provider default
	APIKey         string `json:"-" yaml:"-"`                                   // From env only, never serialized
	BaseURL        string `json:"base_url,omitempty" yaml:"base_url,omitempty"` // For ollama or compatible endpoints
	Timeout        int    `json:"timeout" yaml:"timeout"`                       // Seconds
	MaxTokens      int    `json:"max_tokens" yaml:"max_tokens"`
	StrictEvidence bool   `json:"strict_evidence" yaml:"strict_evidence"` // Constrain suggestions to the evidence tables
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `json:"verbose" yaml:"verbose"`
	IncludeFooter bool `json:"include_footer" yaml:"include_footer"` // Closing disclaimer on Markdown reports
}

// DefaultConfig returns the standard configuration
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       10,
			UserAgent:     "servvia-trust/0.3 (+https://github.com/servvia/trust)",
			MaxBodyBytes:  2 * 1024 * 1024,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:  true,
			TTLHours: 168, // NCBI metadata moves slowly; a week is fresh enough
		},
		Concurrency: ConcurrencyConfig{
			Workers:         4,
			CitationWorkers: 8,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2.0,
			BurstSize:         4,
		},
		PubMed: PubMedConfig{
			Enabled: false, // Offline by default; the embedded tables carry the evidence
			RetMax:  5,
		},
		Authority: AuthorityConfig{
			Primary: []string{
				"ncbi.nlm.nih.gov", "pubmed.ncbi.nlm.nih.gov", "nih.gov",
				"who.int", "cochrane.org", "clinicaltrials.gov",
			},
			Secondary: []string{
				"mayoclinic.org", "clevelandclinic.org", "hopkinsmedicine.org",
				"nhs.uk", "examine.com", ".edu",
			},
			Tertiary: []string{
				"healthline.com", "webmd.com", "verywellhealth.com",
			},
		},
		LLM: LLMConfig{
			Enabled:        false,
			Timeout:        60,
			MaxTokens:      1024,
			StrictEvidence: true,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
