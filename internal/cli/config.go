package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/servvia/trust/internal/model"
)

// buildConfig assembles the effective configuration for a command run:
// defaults, then the config file and SERVVIA_* env vars, then CLI flags.
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()
	applyViper(cfg)

	// Flag overlays. Boolean flags can only disable, so a config file
	// that turns something off stays off.
	if dir := viper.GetString("knowledge.dir"); dir != "" {
		cfg.Knowledge.Dir = dir
	}
	if httpProxy != "" {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}
	cfg.Cache.Enabled = cfg.Cache.Enabled && !noCache
	cfg.Output.IncludeFooter = cfg.Output.IncludeFooter && !noFooter

	// A file-level verbose: true also gates the CLI progress lines
	if viper.GetBool("verbose") {
		verbose = true
	}
	cfg.Output.Verbose = verbose

	return cfg
}

// applyViper overlays config-file and environment values onto cfg.
// Keys are checked individually so absent keys keep their defaults.
// (viper.Unmarshal needs mapstructure tags the config structs don't
// carry, and would zero any field the file omits.)
func applyViper(cfg *model.Config) {
	if viper.IsSet("http.timeout") {
		cfg.HTTP.Timeout = viper.GetInt("http.timeout")
	}
	if viper.IsSet("http.user_agent") {
		cfg.HTTP.UserAgent = viper.GetString("http.user_agent")
	}
	if viper.IsSet("http.max_body_bytes") {
		cfg.HTTP.MaxBodyBytes = viper.GetInt64("http.max_body_bytes")
	}
	if viper.IsSet("http.insecure_tls") {
		cfg.HTTP.InsecureTLS = viper.GetBool("http.insecure_tls")
	}
	if viper.IsSet("http.respect_robots") {
		cfg.HTTP.RespectRobots = viper.GetBool("http.respect_robots")
	}
	if viper.IsSet("http.http_proxy") {
		cfg.HTTP.HTTPProxy = viper.GetString("http.http_proxy")
	}
	if viper.IsSet("http.https_proxy") {
		cfg.HTTP.HTTPSProxy = viper.GetString("http.https_proxy")
	}
	if viper.IsSet("http.no_proxy") {
		cfg.HTTP.NoProxy = viper.GetString("http.no_proxy")
	}

	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if viper.IsSet("cache.dir") {
		cfg.Cache.Dir = viper.GetString("cache.dir")
	}
	if viper.IsSet("cache.ttl_hours") {
		cfg.Cache.TTLHours = viper.GetInt("cache.ttl_hours")
	}

	if viper.IsSet("concurrency.workers") {
		cfg.Concurrency.Workers = viper.GetInt("concurrency.workers")
	}
	if viper.IsSet("concurrency.citation_workers") {
		cfg.Concurrency.CitationWorkers = viper.GetInt("concurrency.citation_workers")
	}

	if viper.IsSet("rate_limiting.requests_per_second") {
		cfg.RateLimiting.RequestsPerSecond = viper.GetFloat64("rate_limiting.requests_per_second")
	}
	if viper.IsSet("rate_limiting.burst_size") {
		cfg.RateLimiting.BurstSize = viper.GetInt("rate_limiting.burst_size")
	}

	if viper.IsSet("pubmed.enabled") {
		cfg.PubMed.Enabled = viper.GetBool("pubmed.enabled")
	}
	if viper.IsSet("pubmed.base_url") {
		cfg.PubMed.BaseURL = viper.GetString("pubmed.base_url")
	}
	if viper.IsSet("pubmed.email") {
		cfg.PubMed.Email = viper.GetString("pubmed.email")
	}
	if viper.IsSet("pubmed.retmax") {
		cfg.PubMed.RetMax = viper.GetInt("pubmed.retmax")
	}

	if viper.IsSet("authority.primary") {
		cfg.Authority.Primary = viper.GetStringSlice("authority.primary")
	}
	if viper.IsSet("authority.secondary") {
		cfg.Authority.Secondary = viper.GetStringSlice("authority.secondary")
	}
	if viper.IsSet("authority.tertiary") {
		cfg.Authority.Tertiary = viper.GetStringSlice("authority.tertiary")
	}

	if viper.IsSet("llm.enabled") {
		cfg.LLM.Enabled = viper.GetBool("llm.enabled")
	}
	if viper.IsSet("llm.provider") {
		cfg.LLM.Provider = viper.GetString("llm.provider")
	}
	if viper.IsSet("llm.model") {
		cfg.LLM.Model = viper.GetString("llm.model")
	}
	if viper.IsSet("llm.base_url") {
		cfg.LLM.BaseURL = viper.GetString("llm.base_url")
	}
	if viper.IsSet("llm.timeout") {
		cfg.LLM.Timeout = viper.GetInt("llm.timeout")
	}
	if viper.IsSet("llm.max_tokens") {
		cfg.LLM.MaxTokens = viper.GetInt("llm.max_tokens")
	}
	if viper.IsSet("llm.strict_evidence") {
		cfg.LLM.StrictEvidence = viper.GetBool("llm.strict_evidence")
	}

	if viper.IsSet("output.include_footer") {
		cfg.Output.IncludeFooter = viper.GetBool("output.include_footer")
	}
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ServVia Trust configuration",
	Long: `Manage ServVia Trust configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (SERVVIA_*)
3. Config file (~/.servvia/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Display the effective configuration after merging defaults, the config file, and environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := model.DefaultConfig()
		applyViper(cfg)

		configFile := viper.ConfigFileUsed()
		if configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println("  Current Configuration")
		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println()

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		fmt.Println(string(yamlData))

		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println()
		fmt.Println("Configuration hierarchy (highest to lowest priority):")
		fmt.Println("  1. CLI flags")
		fmt.Println("  2. Environment variables (SERVVIA_*, OPENAI_API_KEY, ANTHROPIC_API_KEY, NCBI_API_KEY)")
		fmt.Println("  3. Config file (~/.servvia/config.yaml)")
		fmt.Println("  4. Defaults")
		fmt.Println()

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.servvia/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configDir := home + "/.servvia"
		configPath := configDir + "/config.yaml"

		// Check if config already exists
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'servvia-trust config show' to view it, or delete it first to recreate", configPath)
		}

		// Create directory
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		// Create config file
		f, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("error creating config file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close config file: %w", closeErr)
			}
		}()

		// Helper for writing with error checking
		printf := func(format string, a ...interface{}) {
			if err != nil {
				return
			}
			_, err = fmt.Fprintf(f, format, a...)
		}

		defaultCfg := model.DefaultConfig()

		printf("# ServVia Trust Configuration File\n")
		printf("# See https://github.com/servvia/trust for full documentation\n")
		printf("#\n")
		printf("# Configuration hierarchy (highest to lowest priority):\n")
		printf("#   1. CLI flags\n")
		printf("#   2. Environment variables (SERVVIA_*)\n")
		printf("#   3. This config file\n")
		printf("#   4. Built-in defaults\n\n")

		yamlData, mErr := yaml.Marshal(defaultCfg)
		if mErr != nil {
			return fmt.Errorf("error marshaling config: %w", mErr)
		}
		if err == nil {
			if _, wErr := f.Write(yamlData); wErr != nil {
				return fmt.Errorf("error writing config: %w", wErr)
			}
		}

		printf("\n# API keys stay in the environment, never in this file:\n")
		printf("#   export OPENAI_API_KEY=sk-...\n")
		printf("#   export ANTHROPIC_API_KEY=sk-ant-...\n")
		printf("#   export OLLAMA_BASE_URL=http://localhost:11434\n")
		printf("#   export NCBI_API_KEY=...   # raises the PubMed rate limit\n")

		if err != nil {
			return err
		}

		fmt.Printf("✓ Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo view the configuration:\n")
		fmt.Printf("  servvia-trust config show\n")
		fmt.Printf("\nTo customize, edit the file with your preferred editor:\n")
		fmt.Printf("  $EDITOR %s\n", configPath)
		fmt.Printf("\n")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
