package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Juvonno practice-management API
	JuvonnoAPIKey  string
	JuvonnoBaseURL string
	JuvonnoTimeout time.Duration
	BranchID       int

	// AppointmentsSince bounds the branch appointment pull.
	AppointmentsSince string

	// Optional shared payload cache. Empty RedisAddr selects the in-process cache.
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	SyncOnStartup bool
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		JuvonnoAPIKey:  getEnv("JUV_API_KEY", ""),
		JuvonnoBaseURL: getEnv("JUV_BASE_URL", "https://csipacific.juvonno.com/api"),
		JuvonnoTimeout: getEnvAsDuration("JUV_TIMEOUT", 20*time.Second),
		BranchID:       getEnvAsInt("JUV_BRANCH_ID", 1),

		AppointmentsSince: getEnv("APPOINTMENTS_SINCE", "2000-01-01"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		SyncOnStartup: getEnvAsBool("SYNC_ON_STARTUP", true),
	}
}

// Validate reports fatal configuration problems. A missing upstream API key
// fails the whole service before any fetch is attempted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JuvonnoAPIKey) == "" {
		return fmt.Errorf("config: JUV_API_KEY is required")
	}
	if strings.TrimSpace(c.JuvonnoBaseURL) == "" {
		return fmt.Errorf("config: JUV_BASE_URL is required")
	}
	if c.BranchID <= 0 {
		return fmt.Errorf("config: JUV_BRANCH_ID must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer with a fallback default
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean with a fallback default
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration with a fallback default
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
