package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"AI_PROVIDER", "RABBIT_QUEUE", "WORKER_CONCURRENCY", "NOTIFY_RETRY_DELAY", "CORS_ORIGINS", "PUBLIC_URL"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.AIProvider != "openai" || cfg.RabbitQueue != "notifications" {
		t.Fatalf("provider=%q queue=%q", cfg.AIProvider, cfg.RabbitQueue)
	}
	if cfg.WorkerConcurrency != 2 || cfg.NotifyRetryDelay != 10*time.Second || cfg.NotifyMaxAttempts != 5 {
		t.Fatalf("notify defaults: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AI_PROVIDER", " OpenRouter ")
	t.Setenv("WORKER_CONCURRENCY", "500")
	t.Setenv("NOTIFY_RETRY_DELAY", "not-a-duration")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("PUBLIC_URL", "https://portal.example.com/")

	cfg := Load()
	if cfg.AIProvider != "openrouter" {
		t.Fatalf("provider = %q", cfg.AIProvider)
	}
	if cfg.WorkerConcurrency != 50 {
		t.Fatalf("concurrency = %d", cfg.WorkerConcurrency)
	}
	if cfg.NotifyRetryDelay != 10*time.Second {
		t.Fatalf("bad duration should keep the default, got %s", cfg.NotifyRetryDelay)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("cors = %q", cfg.CORSOrigins)
	}
	if cfg.PublicURL != "https://portal.example.com" {
		t.Fatalf("public url = %q", cfg.PublicURL)
	}
}
