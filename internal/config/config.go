package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	LLMKey          string
	LLMBaseURL      string
	LLMModel        string
	LLMTemperature  float32
	LLMMaxTokens    int
	LLMTimeout      time.Duration
	LLMRateLimitRPM int
	SummaryWorkers  int
	TavilyKey       string
	InvidiousHosts  []string
	TranscriptLangs []string
	Database        string
	UploadDir       string
	FrontendDir     string
	Port            string
	LogMode         string
}

// DefaultInvidiousHosts are the transcript mirrors tried after YouTube when
// INVIDIOUS_HOSTS is unset. Set INVIDIOUS_HOSTS=none to use YouTube only.
var DefaultInvidiousHosts = []string{"https://yewtu.be", "https://inv.nadeko.net"}

// Load reads configuration from the environment, providing sensible defaults.
// Directories the server writes into are created when missing.
func Load() (Config, error) {
	// Load .env file if it exists (useful for development)
	_ = godotenv.Load()
	cfg := Config{
		LLMKey:          firstEnv("LLM_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY"),
		LLMBaseURL:      getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:        getEnv("LLM_MODEL", "gemma2-9b-it"),
		LLMTemperature:  float32(getFloat("LLM_TEMPERATURE", 0.1)),
		LLMMaxTokens:    getInt("LLM_MAX_TOKENS", 3000),
		LLMTimeout:      getDuration("LLM_TIMEOUT", 2*time.Minute),
		LLMRateLimitRPM: getInt("LLM_RATE_LIMIT_RPM", 0),
		SummaryWorkers:  getInt("SUMMARY_CONCURRENCY", 4),
		TavilyKey:       os.Getenv("TAVILY_API_KEY"),
		InvidiousHosts:  invidiousHosts(),
		TranscriptLangs: getList("TRANSCRIPT_LANGUAGES", []string{"en"}),
		Database:        getEnv("DATABASE_PATH", "./data/tutor.db"),
		UploadDir:       getEnv("UPLOAD_DIR", os.TempDir()),
		FrontendDir:     getEnv("FRONTEND_DIR", "./internal/web"),
		Port:            getEnv("PORT", "8000"),
		LogMode:         getEnv("LOG_MODE", "development"),
	}

	if cfg.SummaryWorkers < 1 {
		cfg.SummaryWorkers = 1
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return cfg, fmt.Errorf("ensure upload dir %s: %w", cfg.UploadDir, err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
		return cfg, fmt.Errorf("ensure database dir %s: %w", cfg.Database, err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := getEnv(key, ""); val != "" {
			return val
		}
	}
	return ""
}

func getInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// getList splits a comma separated value, dropping blanks.
func invidiousHosts() []string {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("INVIDIOUS_HOSTS")), "none") {
		return nil
	}
	return getList("INVIDIOUS_HOSTS", DefaultInvidiousHosts)
}

func getList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
