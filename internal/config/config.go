package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the retrieval service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Auth      AuthConfig      `yaml:"auth"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Cache     CacheConfig     `yaml:"cache"`
	Preload   PreloadConfig   `yaml:"preload"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings. The same instance backs
// the corpus index and the shared cache tier.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"`
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
}

// RetrievalConfig holds the scoring and fan-out tunables.
type RetrievalConfig struct {
	ScoreThreshold       float64 `yaml:"score_threshold"`        // primary similarity cutoff
	RelaxedThreshold     float64 `yaml:"relaxed_threshold"`      // fallback cutoff, marks low confidence
	RareRuleBoost        float64 `yaml:"rare_rule_boost"`        // added for deterministic rule chunks
	PrioritySectionBoost float64 `yaml:"priority_section_boost"` // added for intent fast-path sections
	PerQueryTopK         int     `yaml:"per_query_top_k"`
	FinalTopK            int     `yaml:"final_top_k"`
	FanoutWorkers        int     `yaml:"fanout_workers"`
	TimeoutSec           int     `yaml:"timeout_sec"`
}

// CacheConfig holds two-level cache settings.
type CacheConfig struct {
	Disabled      bool   `yaml:"disabled"`
	L1TTLHours    int    `yaml:"l1_ttl_hours"` // intent + chart bucket tier
	L2TTLHours    int    `yaml:"l2_ttl_hours"` // full prompt tier
	LocalCapacity int    `yaml:"local_capacity"`
	KeyPrefix     string `yaml:"key_prefix"`
}

// PreloadConfig holds background preloader settings.
type PreloadConfig struct {
	Workers          int     `yaml:"workers"`
	QueriesPerFactor int     `yaml:"queries_per_factor"`
	CoverageTarget   float64 `yaml:"coverage_target"` // fraction of factors that must be cached
}

// CorpusConfig holds corpus index and ingestion settings.
type CorpusConfig struct {
	IndexName         string `yaml:"index_name"`
	KeyPrefix         string `yaml:"key_prefix"`
	HNSWM             int    `yaml:"hnsw_m"`
	HNSWEFConstruct   int    `yaml:"hnsw_ef_construction"`
	ChunkTargetTokens int    `yaml:"chunk_target_tokens"`
	ChunkOverlapLines int    `yaml:"chunk_overlap_lines"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Retrieval.ScoreThreshold <= 0 {
		c.Retrieval.ScoreThreshold = 0.70
	}
	if c.Retrieval.RelaxedThreshold <= 0 {
		c.Retrieval.RelaxedThreshold = 0.60
	}
	if c.Retrieval.RareRuleBoost <= 0 {
		c.Retrieval.RareRuleBoost = 0.05
	}
	if c.Retrieval.PrioritySectionBoost <= 0 {
		c.Retrieval.PrioritySectionBoost = 0.03
	}
	if c.Retrieval.PerQueryTopK <= 0 {
		c.Retrieval.PerQueryTopK = 5
	}
	if c.Retrieval.FinalTopK <= 0 {
		c.Retrieval.FinalTopK = 3
	}
	if c.Retrieval.FanoutWorkers <= 0 {
		c.Retrieval.FanoutWorkers = 4
	}
	if c.Retrieval.TimeoutSec <= 0 {
		c.Retrieval.TimeoutSec = 15
	}
	if c.Cache.L1TTLHours <= 0 {
		c.Cache.L1TTLHours = 12
	}
	if c.Cache.L2TTLHours <= 0 {
		c.Cache.L2TTLHours = 3
	}
	if c.Cache.LocalCapacity <= 0 {
		c.Cache.LocalCapacity = 512
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "astro:"
	}
	if c.Preload.Workers <= 0 {
		c.Preload.Workers = 8
	}
	if c.Preload.QueriesPerFactor <= 0 {
		c.Preload.QueriesPerFactor = 3
	}
	if c.Preload.CoverageTarget <= 0 {
		c.Preload.CoverageTarget = 0.8
	}
	if c.Corpus.IndexName == "" {
		c.Corpus.IndexName = "idx:passages"
	}
	if c.Corpus.KeyPrefix == "" {
		c.Corpus.KeyPrefix = "astro:passage:"
	}
	if c.Corpus.HNSWM <= 0 {
		c.Corpus.HNSWM = 32
	}
	if c.Corpus.HNSWEFConstruct <= 0 {
		c.Corpus.HNSWEFConstruct = 400
	}
	if c.Corpus.ChunkTargetTokens <= 0 {
		c.Corpus.ChunkTargetTokens = 500
	}
	if c.Corpus.ChunkOverlapLines <= 0 {
		c.Corpus.ChunkOverlapLines = 5
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 768
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Retrieval.RelaxedThreshold > c.Retrieval.ScoreThreshold {
		return fmt.Errorf("retrieval.relaxed_threshold %.2f must not exceed score_threshold %.2f",
			c.Retrieval.RelaxedThreshold, c.Retrieval.ScoreThreshold)
	}
	if c.Preload.CoverageTarget > 1 {
		return fmt.Errorf("preload.coverage_target must be a fraction in (0, 1], got %.2f",
			c.Preload.CoverageTarget)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
