package config

import (
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Retrieval.ScoreThreshold != 0.70 {
		t.Errorf("score threshold default = %v", cfg.Retrieval.ScoreThreshold)
	}
	if cfg.Retrieval.RelaxedThreshold != 0.60 {
		t.Errorf("relaxed threshold default = %v", cfg.Retrieval.RelaxedThreshold)
	}
	if cfg.Retrieval.RareRuleBoost != 0.05 {
		t.Errorf("rare rule boost default = %v", cfg.Retrieval.RareRuleBoost)
	}
	if cfg.Retrieval.PrioritySectionBoost != 0.03 {
		t.Errorf("priority boost default = %v", cfg.Retrieval.PrioritySectionBoost)
	}
	if cfg.Retrieval.FanoutWorkers != 4 {
		t.Errorf("fanout workers default = %d", cfg.Retrieval.FanoutWorkers)
	}
	if cfg.Retrieval.PerQueryTopK != 5 || cfg.Retrieval.FinalTopK != 3 {
		t.Errorf("top-k defaults = %d/%d", cfg.Retrieval.PerQueryTopK, cfg.Retrieval.FinalTopK)
	}
	if cfg.Cache.L1TTLHours != 12 || cfg.Cache.L2TTLHours != 3 {
		t.Errorf("cache TTL defaults = %d/%d", cfg.Cache.L1TTLHours, cfg.Cache.L2TTLHours)
	}
	if cfg.Cache.KeyPrefix != "astro:" {
		t.Errorf("cache key prefix default = %q", cfg.Cache.KeyPrefix)
	}
	if cfg.Preload.Workers != 8 {
		t.Errorf("preload workers default = %d", cfg.Preload.Workers)
	}
	if cfg.Corpus.IndexName != "idx:passages" {
		t.Errorf("corpus index default = %q", cfg.Corpus.IndexName)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{}
	valid.HTTP.Port = 8080
	valid.Database.Addrs = []string{"localhost:6379"}
	valid.ApplyDefaults()
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	noPort := valid
	noPort.HTTP.Port = 0
	if err := noPort.Validate(); err == nil {
		t.Error("expected error for missing port")
	}

	noAddrs := valid
	noAddrs.Database.Addrs = nil
	if err := noAddrs.Validate(); err == nil {
		t.Error("expected error for missing database addrs")
	}

	badThresholds := valid
	badThresholds.Retrieval.RelaxedThreshold = 0.9
	if err := badThresholds.Validate(); err == nil {
		t.Error("expected error for relaxed threshold above primary")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_REDIS_ADDR", "redis:6379")

	in := []byte("addr: ${TEST_REDIS_ADDR}\nkey: ${TEST_MISSING:-fallback}\nempty: ${TEST_ALSO_MISSING}")
	out := string(expandEnvVars(in))

	want := "addr: redis:6379\nkey: fallback\nempty: "
	if out != want {
		t.Errorf("expandEnvVars = %q, want %q", out, want)
	}
}
