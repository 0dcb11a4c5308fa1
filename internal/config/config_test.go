package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Postgres: PostgresConfig{DSN: "postgres://localhost/urbanq?sslmode=disable"},
		Redis:    RedisConfig{Addrs: []string{"localhost:6379"}},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingPostgresDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Postgres.DSN = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing postgres dsn")
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Redis.Addrs = nil

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing redis addrs")
	}
}

func TestValidate_ThresholdOrdering(t *testing.T) {
	cfg := validConfig()
	cfg.Retrieval.MatchThreshold = 0.4
	cfg.Retrieval.FallbackThreshold = 0.5

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error when match threshold is below fallback threshold")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Redis.KeyPrefix != "urbanq:" {
		t.Errorf("expected KeyPrefix='urbanq:', got %q", cfg.Redis.KeyPrefix)
	}
	if cfg.OpenAI.CompletionModel != "gpt-4o-mini" {
		t.Errorf("expected default completion model, got %q", cfg.OpenAI.CompletionModel)
	}
	if cfg.Cache.MaxMemoryEntries != 200 {
		t.Errorf("expected MaxMemoryEntries=200, got %d", cfg.Cache.MaxMemoryEntries)
	}
	if cfg.Cache.MinConfidence != 0.6 {
		t.Errorf("expected MinConfidence=0.6, got %v", cfg.Cache.MinConfidence)
	}
	if cfg.Retrieval.MatchThreshold != 0.7 {
		t.Errorf("expected MatchThreshold=0.7, got %v", cfg.Retrieval.MatchThreshold)
	}
	if cfg.Orchestrator.ConfidenceFloor != 0.3 {
		t.Errorf("expected ConfidenceFloor=0.3, got %v", cfg.Orchestrator.ConfidenceFloor)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:  HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Redis: RedisConfig{KeyPrefix: "custom:"},
		Cache: CacheConfig{MaxMemoryEntries: 500, BaseTTLMin: 60},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Redis.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Redis.KeyPrefix)
	}
	if cfg.Cache.MaxMemoryEntries != 500 {
		t.Errorf("expected MaxMemoryEntries=500, got %d", cfg.Cache.MaxMemoryEntries)
	}
	if cfg.Cache.BaseTTLMin != 60 {
		t.Errorf("expected BaseTTLMin=60, got %d", cfg.Cache.BaseTTLMin)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("URBANQ_TEST_DSN", "postgres://db/urbanq")

	in := []byte("dsn: ${URBANQ_TEST_DSN}\nprefix: ${URBANQ_TEST_MISSING:-urbanq:}\n")
	out := string(expandEnvVars(in))

	want := "dsn: postgres://db/urbanq\nprefix: urbanq:\n"
	if out != want {
		t.Errorf("expandEnvVars = %q, want %q", out, want)
	}
}
