package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultGroqEndpoint = "https://api.groq.com/openai/v1/chat/completions"

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string

	TokenTTL time.Duration

	LLMProvider     string
	LLMModel        string
	OllamaBaseURL   string
	GroqAPIKey      string
	GroqEndpoint    string
	GenerateTimeout time.Duration
	ChatTimeout     time.Duration
	CleanupEnabled  bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	_ = godotenv.Load(".env", "cmd/.env")

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		TokenTTL:        getEnvMinutes("ACCESS_TOKEN_EXPIRE_MINUTES", 30*time.Minute),
		LLMProvider:     normalizeProvider(getEnv("LLM_PROVIDER", "ollama")),
		LLMModel:        getEnv("LLM_MODEL", "gemma2:2b"),
		OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", ""),
		GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
		GroqEndpoint:    getEnv("GROQ_ENDPOINT", defaultGroqEndpoint),
		GenerateTimeout: getEnvDuration("LLM_GENERATE_TIMEOUT", 5*time.Minute),
		ChatTimeout:     getEnvDuration("LLM_CHAT_TIMEOUT", 60*time.Second),
		CleanupEnabled:  getEnvBool("LLM_CLEANUP", false),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		return def
	}
	return val
}

func getEnvMinutes(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return def
	}
	return time.Duration(val) * time.Minute
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "groq":
		return "groq"
	default:
		return "ollama"
	}
}
