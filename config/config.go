// config/config.go - Environment configuration
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting read from the environment.
type Config struct {
	Port        string
	AppEnv      string
	DatabaseURL string
	JWTSecret   string
	CORSOrigins string

	GraderURL     string
	GraderTimeout time.Duration

	AchievementWorkers int
	AchievementQueue   int
	FrequencyTTL       time.Duration

	// TriggerRateLimit is the number of trigger requests a user may send
	// per TriggerRateWindow.
	TriggerRateLimit  int
	TriggerRateWindow time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment and validates it.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "3000"),
		AppEnv:             getEnv("APP_ENV", "development"),
		DatabaseURL:        databaseURL(),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		CORSOrigins:        getEnv("CORS_ORIGINS", "http://localhost:3000"),
		GraderURL:          getEnv("GRADER_URL", "http://localhost:8080"),
		GraderTimeout:      getEnvDuration("GRADER_TIMEOUT", 10*time.Second),
		AchievementWorkers: getEnvInt("ACHIEVEMENT_WORKERS", 4),
		AchievementQueue:   getEnvInt("ACHIEVEMENT_QUEUE", 256),
		FrequencyTTL:       getEnvDuration("FREQUENCY_TTL", time.Hour),
		TriggerRateLimit:   getEnvInt("TRIGGER_RATE_LIMIT", 30),
		TriggerRateWindow:  getEnvDuration("TRIGGER_RATE_WINDOW", time.Minute),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set. Generate one with: openssl rand -base64 64"))
	} else if len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters long"))
	}
	if c.AchievementWorkers <= 0 {
		errs = append(errs, fmt.Errorf("ACHIEVEMENT_WORKERS must be positive, got %d", c.AchievementWorkers))
	}
	if c.AchievementQueue < 0 {
		errs = append(errs, fmt.Errorf("ACHIEVEMENT_QUEUE must not be negative, got %d", c.AchievementQueue))
	}
	if c.TriggerRateLimit <= 0 {
		errs = append(errs, fmt.Errorf("TRIGGER_RATE_LIMIT must be positive, got %d", c.TriggerRateLimit))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	// Fallback to individual parameters
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", ""),
		getEnv("DB_NAME", "smartbeans"),
		getEnv("DB_SSLMODE", "disable"))
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
		log.Printf("Warning: %s=%q is not a number, using %d", key, val, def)
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
		log.Printf("Warning: %s=%q is not a duration, using %s", key, val, def)
	}
	return def
}
