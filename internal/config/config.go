package config

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort   string
	DatabaseType string
	DatabasePath string
	DatabaseURL  string
	LogLevel     slog.Level

	// Template source
	TemplateSource       string // "sql" or "http"
	TemplateBaseURL      string
	TemplateAPIKey       string
	TemplateFetchTimeout time.Duration
	TemplateFetchTries   int
	TemplateFetchBackoff time.Duration

	// Session persistence
	SessionTTL        time.Duration
	PruneInterval     time.Duration
	AutosaveQueueSize int
	WordPoolPath      string

	// Player tokens
	JWTSecret string
	TokenTTL  time.Duration

	// Pronunciation audio
	AudioDir   string
	TTSBaseURL string

	// Completion emails
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is read first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to read .env file: %v", err)
	}

	return &Config{
		ServerPort:   getEnv("PORT", "8080"),
		DatabaseType: getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath: getEnv("DB_PATH", "./vocabclash.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		LogLevel:     getEnvLogLevel("LOG_LEVEL", slog.LevelInfo),

		TemplateSource:       strings.ToLower(getEnv("TEMPLATE_SOURCE", "sql")),
		TemplateBaseURL:      getEnv("TEMPLATE_BASE_URL", ""),
		TemplateAPIKey:       getEnv("TEMPLATE_API_KEY", ""),
		TemplateFetchTimeout: getEnvDuration("TEMPLATE_FETCH_TIMEOUT", 5*time.Second),
		TemplateFetchTries:   getEnvInt("TEMPLATE_FETCH_ATTEMPTS", 3),
		TemplateFetchBackoff: getEnvDuration("TEMPLATE_FETCH_BACKOFF", 200*time.Millisecond),

		SessionTTL:        getEnvDuration("SESSION_TTL", 30*24*time.Hour),
		PruneInterval:     getEnvDuration("PRUNE_INTERVAL", 1*time.Hour),
		AutosaveQueueSize: getEnvInt("AUTOSAVE_QUEUE_SIZE", 256),
		WordPoolPath:      getEnv("WORD_POOL_PATH", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),

		AudioDir:   getEnv("AUDIO_DIR", "./static/audio"),
		TTSBaseURL: getEnv("TTS_BASE_URL", "https://translate.google.com/translate_tts"),

		AWSRegion:    getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "VocabClash"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:8080"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid %s %q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid %s %q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvLogLevel(key string, defaultValue slog.Level) slog.Level {
	switch strings.ToLower(os.Getenv(key)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return defaultValue
	}
}
