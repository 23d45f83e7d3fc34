package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	StoragePath string

	AllowedOrigins []string

	GeminiAPIKey  string
	GeminiBaseURL string

	ConceptModel   string
	ReasoningModel string
	ImageModel     string
	ImageProModel  string
	EditModel      string
	VideoModel     string
	ChatModel      string

	KeyBrokerURL string

	VideoPollInterval time.Duration
	VideoPollTimeout  time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. DATABASE_URL is optional: without it the credential
// store is unavailable and GEMINI_API_KEY is the only credential source.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StoragePath: getEnv("STORAGE_PATH", "./storage"),

		AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		ConceptModel:   getEnv("CONCEPT_MODEL", "gemini-2.5-flash"),
		ReasoningModel: getEnv("REASONING_MODEL", "gemini-2.5-pro"),
		ImageModel:     getEnv("IMAGE_MODEL", "gemini-2.5-flash-image"),
		ImageProModel:  getEnv("IMAGE_PRO_MODEL", "gemini-3-pro-image-preview"),
		EditModel:      getEnv("EDIT_MODEL", "gemini-2.5-flash-image"),
		VideoModel:     getEnv("VIDEO_MODEL", "veo-3.0-fast-generate-001"),
		ChatModel:      getEnv("CHAT_MODEL", "gemini-2.5-pro"),

		KeyBrokerURL: os.Getenv("KEY_BROKER_URL"),

		VideoPollInterval: time.Second * time.Duration(getEnvInt("VIDEO_POLL_INTERVAL_SECONDS", 10)),
		VideoPollTimeout:  time.Minute * time.Duration(getEnvInt("VIDEO_POLL_TIMEOUT_MINUTES", 10)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 600)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
