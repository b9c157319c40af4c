package config

import (
	"os"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:       HTTPConfig{Port: 8080},
		Database:   DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Generative: GenerativeConfig{APIKey: "test-key"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingGenerativeKey(t *testing.T) {
	cfg := validConfig()
	cfg.Generative.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing generative api key")
	}
}

func TestValidate_EmbeddingProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		apiKey   string
		wantErr  bool
	}{
		{"local without key", "local", "", false},
		{"openai with key", "openai", "k", false},
		{"openai without key", "openai", "", true},
		{"unknown provider", "huggingface", "k", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Embedding.Provider = tt.provider
			cfg.Embedding.APIKey = tt.apiKey

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Embedding.Provider != "local" {
		t.Errorf("expected provider=local, got %q", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("expected Dimensions=384, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Search.TopK != 3 {
		t.Errorf("expected TopK=3, got %d", cfg.Search.TopK)
	}
	if cfg.Search.CandidatePool != 100 {
		t.Errorf("expected CandidatePool=100, got %d", cfg.Search.CandidatePool)
	}
	if cfg.Search.MinScore != 0.1 {
		t.Errorf("expected MinScore=0.1, got %v", cfg.Search.MinScore)
	}
	if cfg.Search.VectorField != "embedding" {
		t.Errorf("expected VectorField=embedding, got %q", cfg.Search.VectorField)
	}
	if cfg.Storage.KeyPrefix != "concierge:" {
		t.Errorf("expected KeyPrefix='concierge:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestApplyDefaults_CandidatePoolScalesWithTopK(t *testing.T) {
	cfg := Config{Search: SearchConfig{TopK: 25}}
	cfg.ApplyDefaults()

	if cfg.Search.CandidatePool != 250 {
		t.Errorf("expected CandidatePool=250, got %d", cfg.Search.CandidatePool)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Search:  SearchConfig{IndexName: "custom:idx", TopK: 5, CandidatePool: 64},
		Storage: StorageConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Search.IndexName != "custom:idx" {
		t.Errorf("expected IndexName='custom:idx', got %q", cfg.Search.IndexName)
	}
	if cfg.Search.CandidatePool != 64 {
		t.Errorf("expected CandidatePool=64, got %d", cfg.Search.CandidatePool)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("CONCIERGE_TEST_VAR", "hello")
	defer os.Unsetenv("CONCIERGE_TEST_VAR")

	got := string(expandEnvVars([]byte("a: ${CONCIERGE_TEST_VAR}\nb: ${UNSET_VAR:-fallback}\n")))
	want := "a: hello\nb: fallback\n"
	if got != want {
		t.Errorf("expandEnvVars() = %q, want %q", got, want)
	}
}
