// Package config holds the runtime configuration of the backend and the
// relay's transport constants.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// Relay transport
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	DefaultPort    = ":3001"
	MaxMessageSize = 4096
	SendBufferSize = 256

	// System messages
	DefaultLanguage = "zh"

	// Translation
	DefaultLLMBaseURL        = "https://api.openai.com/v1"
	DefaultLLMModel          = "gpt-4o-mini"
	DefaultLLMTimeout        = 30 * time.Second
	DefaultLLMTemperature    = 0.3
	DefaultCacheTTL          = 24 * time.Hour
	DefaultMaxTranslateChars = 4000

	// Shutdown
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds every setting the backend reads from the environment.
type Config struct {
	Port           string
	AllowedOrigins []string
	MaxMessageSize int64
	SendBuffer     int
	Language       string

	DatabaseDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LLMBaseURL        string
	LLMAPIKey         string
	LLMModel          string
	LLMTimeout        time.Duration
	LLMTemperature    float64
	CacheTTL          time.Duration
	MaxTranslateChars int

	ShutdownTimeout time.Duration
}

// Default returns a Config populated with default values for all settings.
func Default() Config {
	return Config{
		Port:              DefaultPort,
		AllowedOrigins:    []string{"*"},
		MaxMessageSize:    MaxMessageSize,
		SendBuffer:        SendBufferSize,
		Language:          DefaultLanguage,
		LLMBaseURL:        DefaultLLMBaseURL,
		LLMModel:          DefaultLLMModel,
		LLMTimeout:        DefaultLLMTimeout,
		LLMTemperature:    DefaultLLMTemperature,
		CacheTTL:          DefaultCacheTTL,
		MaxTranslateChars: DefaultMaxTranslateChars,
		ShutdownTimeout:   DefaultShutdownTimeout,
	}
}

// FromEnv creates a Config from environment variables.
// Unset or unparsable values fall back to the defaults.
func FromEnv() Config {
	cfg := Default()

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = parseList(origins)
	}
	cfg.MaxMessageSize = int64(parseInt(os.Getenv("MAX_MESSAGE_SIZE"), int(cfg.MaxMessageSize)))
	cfg.SendBuffer = parseInt(os.Getenv("SEND_BUFFER"), cfg.SendBuffer)
	if lang := os.Getenv("RELAY_LANG"); lang != "" {
		cfg.Language = lang
	}

	cfg.DatabaseDSN = os.Getenv("DATABASE_DSN")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if db, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil && db >= 0 {
		cfg.RedisDB = db
	}

	if baseURL := os.Getenv("LLM_BASE_URL"); baseURL != "" {
		cfg.LLMBaseURL = baseURL
	}
	cfg.LLMAPIKey = os.Getenv("LLM_API_KEY")
	if model := os.Getenv("LLM_MODEL"); model != "" {
		cfg.LLMModel = model
	}
	cfg.LLMTimeout = parseDuration(os.Getenv("LLM_TIMEOUT"), cfg.LLMTimeout)
	if temp, err := strconv.ParseFloat(os.Getenv("LLM_TEMPERATURE"), 64); err == nil && temp >= 0 && temp <= 2 {
		cfg.LLMTemperature = temp
	}
	cfg.CacheTTL = parseDuration(os.Getenv("CACHE_TTL"), cfg.CacheTTL)
	cfg.MaxTranslateChars = parseInt(os.Getenv("MAX_TRANSLATE_CHARS"), cfg.MaxTranslateChars)
	cfg.ShutdownTimeout = parseDuration(os.Getenv("SHUTDOWN_TIMEOUT"), cfg.ShutdownTimeout)

	return cfg.Sanitize()
}

// Sanitize fills in defaults for zero or invalid values.
func (c Config) Sanitize() Config {
	def := Default()
	if c.Port == "" {
		c.Port = def.Port
	}
	if !strings.Contains(c.Port, ":") {
		c.Port = ":" + c.Port
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = def.MaxMessageSize
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = def.SendBuffer
	}
	if c.Language == "" {
		c.Language = def.Language
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = def.AllowedOrigins
	}
	if c.LLMBaseURL == "" {
		c.LLMBaseURL = def.LLMBaseURL
	}
	c.LLMBaseURL = strings.TrimRight(c.LLMBaseURL, "/")
	if c.LLMModel == "" {
		c.LLMModel = def.LLMModel
	}
	if c.LLMTimeout <= 0 {
		c.LLMTimeout = def.LLMTimeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = def.CacheTTL
	}
	if c.MaxTranslateChars <= 0 {
		c.MaxTranslateChars = def.MaxTranslateChars
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = def.ShutdownTimeout
	}
	return c
}

func parseList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInt(value string, defaultValue int) int {
	if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
		return parsed
	}
	return defaultValue
}

// parseDuration accepts Go duration strings ("90s", "24h") or a bare number of seconds.
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
