package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string
	LogMode  string
	AppName  string
	// Base URL of the web dashboard, used in email links.
	PublicURL   string
	CORSOrigins []string

	DBDriver string
	DBDSN    string

	JWTSecret string
	JWTTTL    time.Duration

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	DocumentCacheTTL time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	ChatHistoryLimit int

	// AI provider
	AIProvider        string
	AIModel           string
	OllamaBaseURL     string
	OllamaModel       string
	OpenAIBaseURL     string
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenRouterBaseURL string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterSiteURL string

	// rabbitMQ
	RabbitURL   string
	RabbitQueue string

	// notifications
	OnboardingWebhookURL string
	EmailWebhookURL      string
	AdminEmail           string
	NotifyMaxAttempts    int
	NotifyRetryDelay     time.Duration
	WorkerConcurrency    int
}

// Load reads the process environment. A .env file in the working directory is
// applied first when present; variables already set take precedence.
func Load() Config {
	_ = godotenv.Load()

	aiProvider := strings.ToLower(env("AI_PROVIDER", "openai"))

	return Config{
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		LogMode:     env("LOG_MODE", "dev"),
		AppName:     env("APP_NAME", "AgencyFlow"),
		PublicURL:   strings.TrimRight(env("PUBLIC_URL", "http://localhost:3000"), "/"),
		CORSOrigins: splitList(env("CORS_ORIGINS", "http://localhost:3000")),

		// DSN demo:
		// app:apppass@tcp(127.0.0.1:3306)/client_portal?charset=utf8mb4&parseTime=true&loc=Local
		DBDriver: strings.ToLower(env("DB_DRIVER", "mysql")),
		DBDSN:    env("DB_DSN", "app:apppass@tcp(127.0.0.1:3306)/client_portal?charset=utf8mb4&parseTime=true&loc=Local"),

		JWTSecret: env("JWT_SECRET", "dev-secret-change-me"),
		JWTTTL:    envDuration("JWT_TTL", 24*time.Hour),

		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          envInt("REDIS_DB", 0),
		DocumentCacheTTL: envDuration("DOCUMENT_CACHE_TTL", 24*time.Hour),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: envInt("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: env("SMTP_FROM", os.Getenv("SMTP_USER")),

		ChatHistoryLimit: envInt("CHAT_HISTORY_LIMIT", 10),

		AIProvider:        aiProvider,
		AIModel:           os.Getenv("AI_MODEL"),
		OllamaBaseURL:     env("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:       env("OLLAMA_MODEL", "llama3:latest"),
		OpenAIBaseURL:     env("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       env("OPENAI_MODEL", "gpt-4-turbo-preview"),
		OpenRouterBaseURL: env("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   env("OPENROUTER_MODEL", "openrouter/auto"),
		OpenRouterSiteURL: os.Getenv("OPENROUTER_SITE_URL"),

		RabbitURL:   os.Getenv("RABBIT_URL"),
		RabbitQueue: env("RABBIT_QUEUE", "notifications"),

		OnboardingWebhookURL: os.Getenv("N8N_WEBHOOK_URL"),
		EmailWebhookURL:      os.Getenv("EMAIL_WEBHOOK_URL"),
		AdminEmail:           env("ADMIN_EMAIL", "admin@agency.com"),
		NotifyMaxAttempts:    envInt("NOTIFY_MAX_ATTEMPTS", 5),
		NotifyRetryDelay:     envDuration("NOTIFY_RETRY_DELAY", 10*time.Second),
		WorkerConcurrency:    clamp(envInt("WORKER_CONCURRENCY", 2), 1, 50),
	}
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
