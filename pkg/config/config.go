package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Upload        UploadConfig
	Extraction    ExtractionConfig
	Schedule      ScheduleConfig
	Spool         SpoolConfig
	Auth          AuthConfig
	CORS          CORSConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
}

type UploadConfig struct {
	MaxBytes int64
}

// ExtractionConfig tunes header recognition. WeekdayLabels overrides the
// built-in German school week, in display order; empty keeps the default.
type ExtractionConfig struct {
	WeekdayLabels []string
}

// ScheduleConfig describes the school's bell times, used when hour headers
// carry no clock range of their own.
type ScheduleConfig struct {
	Timezone      string
	FirstLesson   string
	LessonMinutes int
	BreakMinutes  int
}

type SpoolConfig struct {
	Dir           string
	SweepSchedule string
	MaxAgeMinutes int
}

type AuthConfig struct {
	Enabled   bool
	JWTSecret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 20),
		},
		Upload: UploadConfig{
			MaxBytes: getEnvAsInt64("UPLOAD_MAX_BYTES", 10<<20),
		},
		Extraction: ExtractionConfig{
			WeekdayLabels: getEnvAsList("EXTRACTION_WEEKDAYS", nil),
		},
		Schedule: ScheduleConfig{
			Timezone:      getEnv("SCHEDULE_TIMEZONE", "Europe/Berlin"),
			FirstLesson:   getEnv("SCHEDULE_FIRST_LESSON", "08:00"),
			LessonMinutes: getEnvAsInt("SCHEDULE_LESSON_MINUTES", 45),
			BreakMinutes:  getEnvAsInt("SCHEDULE_BREAK_MINUTES", 5),
		},
		Spool: SpoolConfig{
			Dir:           getEnv("SPOOL_DIR", filepath.Join(os.TempDir(), "stundenplan-spool")),
			SweepSchedule: getEnv("SPOOL_SWEEP_SCHEDULE", "@every 10m"),
			MaxAgeMinutes: getEnvAsInt("SPOOL_MAX_AGE_MINUTES", 60),
		},
		Auth: AuthConfig{
			Enabled:   getEnvAsBool("AUTH_ENABLED", false),
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
	}

	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required when AUTH_ENABLED is set")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
