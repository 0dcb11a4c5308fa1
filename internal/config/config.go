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

// Config holds the urbanq API configuration.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Postgres     PostgresConfig     `yaml:"postgres"`
	Redis        RedisConfig        `yaml:"redis"`
	OpenAI       OpenAIConfig       `yaml:"openai"`
	Cache        CacheConfig        `yaml:"cache"`
	Retrieval    RetrievalConfig    `yaml:"retrieval"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Auth         AuthConfig         `yaml:"auth"`
	Logging      LoggingConfig      `yaml:"logging"`
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

// PostgresConfig holds the relational datastore settings.
type PostgresConfig struct {
	DSN              string `yaml:"dsn"`
	MaxOpenConns     int    `yaml:"max_open_conns"`
	MaxIdleConns     int    `yaml:"max_idle_conns"`
	QueryTimeoutSec  int    `yaml:"query_timeout_sec"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// RedisConfig holds the cache/keyword-index store settings.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	KeyPrefix        string   `yaml:"key_prefix"`
	OpTimeoutSec     int      `yaml:"op_timeout_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// OpenAIConfig holds the embedding/completion provider settings.
type OpenAIConfig struct {
	APIKey          string  `yaml:"api_key"`
	BaseURL         string  `yaml:"base_url"`
	EmbeddingModel  string  `yaml:"embedding_model"`
	CompletionModel string  `yaml:"completion_model"`
	Dimensions      int     `yaml:"dimensions"`
	Temperature     float64 `yaml:"temperature"`
	MaxTokens       int     `yaml:"max_tokens"`
	TimeoutSec      int     `yaml:"timeout_sec"`
	MaxRetries      int     `yaml:"max_retries"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	MaxMemoryEntries int     `yaml:"max_memory_entries"`
	BaseTTLMin       int     `yaml:"base_ttl_min"`
	MinConfidence    float64 `yaml:"min_confidence"`
	PromoteThreshold float64 `yaml:"promote_threshold"`
	SweepIntervalMin int     `yaml:"sweep_interval_min"`
	MinResponseLen   int     `yaml:"min_response_len"`
}

// RetrievalConfig holds retrieval engine settings.
type RetrievalConfig struct {
	ResultLimit       int     `yaml:"result_limit"`
	MatchThreshold    float64 `yaml:"match_threshold"`
	FallbackThreshold float64 `yaml:"fallback_threshold"`
}

// OrchestratorConfig holds orchestration settings.
type OrchestratorConfig struct {
	AgentTimeoutSec  int     `yaml:"agent_timeout_sec"`
	ConfidenceFloor  float64 `yaml:"confidence_floor"`
	RefinementBound  int     `yaml:"refinement_bound"`
	MaxParallelTasks int     `yaml:"max_parallel_tasks"`
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
	if c.Postgres.MaxOpenConns <= 0 {
		c.Postgres.MaxOpenConns = 20
	}
	if c.Postgres.MaxIdleConns <= 0 {
		c.Postgres.MaxIdleConns = 5
	}
	if c.Postgres.QueryTimeoutSec <= 0 {
		c.Postgres.QueryTimeoutSec = 10
	}
	if c.Postgres.ReadinessTimeout <= 0 {
		c.Postgres.ReadinessTimeout = 10
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "urbanq:"
	}
	if c.Redis.OpTimeoutSec <= 0 {
		c.Redis.OpTimeoutSec = 5
	}
	if c.Redis.ReadinessTimeout <= 0 {
		c.Redis.ReadinessTimeout = 10
	}
	if c.OpenAI.EmbeddingModel == "" {
		c.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if c.OpenAI.CompletionModel == "" {
		c.OpenAI.CompletionModel = "gpt-4o-mini"
	}
	if c.OpenAI.Temperature <= 0 {
		c.OpenAI.Temperature = 0.1
	}
	if c.OpenAI.MaxTokens <= 0 {
		c.OpenAI.MaxTokens = 500
	}
	if c.OpenAI.TimeoutSec <= 0 {
		c.OpenAI.TimeoutSec = 30
	}
	if c.OpenAI.MaxRetries <= 0 {
		c.OpenAI.MaxRetries = 3
	}
	if c.Cache.MaxMemoryEntries <= 0 {
		c.Cache.MaxMemoryEntries = 200
	}
	if c.Cache.BaseTTLMin <= 0 {
		c.Cache.BaseTTLMin = 30
	}
	if c.Cache.MinConfidence <= 0 {
		c.Cache.MinConfidence = 0.6
	}
	if c.Cache.PromoteThreshold <= 0 {
		c.Cache.PromoteThreshold = 0.8
	}
	if c.Cache.SweepIntervalMin <= 0 {
		c.Cache.SweepIntervalMin = 10
	}
	if c.Cache.MinResponseLen <= 0 {
		c.Cache.MinResponseLen = 50
	}
	if c.Retrieval.ResultLimit <= 0 {
		c.Retrieval.ResultLimit = 10
	}
	if c.Retrieval.MatchThreshold <= 0 {
		c.Retrieval.MatchThreshold = 0.7
	}
	if c.Retrieval.FallbackThreshold <= 0 {
		c.Retrieval.FallbackThreshold = 0.5
	}
	if c.Orchestrator.AgentTimeoutSec <= 0 {
		c.Orchestrator.AgentTimeoutSec = 30
	}
	if c.Orchestrator.ConfidenceFloor <= 0 {
		c.Orchestrator.ConfidenceFloor = 0.3
	}
	if c.Orchestrator.RefinementBound <= 0 {
		c.Orchestrator.RefinementBound = 1
	}
	if c.Orchestrator.MaxParallelTasks <= 0 {
		c.Orchestrator.MaxParallelTasks = 6
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required")
	}
	if len(c.Redis.Addrs) == 0 {
		return fmt.Errorf("redis.addrs is required")
	}
	if c.Cache.MinConfidence < 0 || c.Cache.MinConfidence > 1 {
		return fmt.Errorf("cache.min_confidence must be within [0,1], got %v", c.Cache.MinConfidence)
	}
	if c.Retrieval.MatchThreshold < c.Retrieval.FallbackThreshold {
		return fmt.Errorf("retrieval.match_threshold must be >= retrieval.fallback_threshold")
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
