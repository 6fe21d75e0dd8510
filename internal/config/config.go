package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	S3         S3Config
	Redis      RedisConfig
	Kafka      KafkaConfig
	Payment    PaymentConfig
	Matching   MatchingConfig
	Settlement SettlementConfig
	Geocode    GeocodeConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// S3Config holds AWS S3 configuration for promo code files.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "promos/")
}

// RedisConfig holds Redis configuration for settlement notifications
// and cross-instance deduplication. When disabled the watcher falls
// back to polling only.
type RedisConfig struct {
	Enabled bool
	Addr    string
}

// KafkaConfig holds Kafka producer configuration for domain events.
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// PaymentConfig holds payment provider configuration.
type PaymentConfig struct {
	BaseURL    string
	SecretKey  string
	SuccessURL string
	CancelURL  string
	Locale     string
	Currency   string
	Timeout    time.Duration
	MethodSets [][]string
}

// MatchingConfig holds florist matching configuration.
type MatchingConfig struct {
	NearestAnyFallback bool
}

// SettlementConfig holds settlement watcher configuration.
type SettlementConfig struct {
	PollInterval time.Duration
	Timeout      time.Duration // zero disables the timeout
}

// GeocodeConfig holds address geocoding configuration.
type GeocodeConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
}

// Load loads configuration from environment variables. A .env file in
// the working directory is applied first when present, without
// overriding variables already set in the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "bloomkart"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Prefix:  getEnv("S3_PREFIX", "promos/"),
		},
		Redis: RedisConfig{
			Enabled: getEnvAsBool("REDIS_ENABLED", false),
			Addr:    getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvAsBool("KAFKA_ENABLED", false),
			Brokers: getEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC", "checkout.events"),
		},
		Payment: PaymentConfig{
			BaseURL:    getEnv("PAYMENT_BASE_URL", ""),
			SecretKey:  getEnv("PAYMENT_SECRET_KEY", ""),
			SuccessURL: getEnv("PAYMENT_SUCCESS_URL", ""),
			CancelURL:  getEnv("PAYMENT_CANCEL_URL", ""),
			Locale:     getEnv("PAYMENT_LOCALE", "en-US"),
			Currency:   getEnv("PAYMENT_CURRENCY", "USD"),
			Timeout:    getEnvAsDuration("PAYMENT_TIMEOUT", 15*time.Second),
			MethodSets: parseMethodSets(getEnv("PAYMENT_METHOD_SETS", "")),
		},
		Matching: MatchingConfig{
			NearestAnyFallback: getEnvAsBool("MATCH_NEAREST_ANY_FALLBACK", false),
		},
		Settlement: SettlementConfig{
			PollInterval: getEnvAsDuration("SETTLEMENT_POLL_INTERVAL", 2*time.Second),
			Timeout:      getEnvAsDuration("SETTLEMENT_TIMEOUT", 0),
		},
		Geocode: GeocodeConfig{
			Enabled: getEnvAsBool("GEOCODE_ENABLED", false),
			BaseURL: getEnv("GEOCODE_BASE_URL", ""),
			APIKey:  getEnv("GEOCODE_API_KEY", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("Redis address is required when Redis is enabled")
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("Kafka brokers are required when Kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("Kafka topic is required when Kafka is enabled")
		}
	}

	if c.Payment.BaseURL == "" {
		return fmt.Errorf("payment base URL is required")
	}

	if c.Payment.SecretKey == "" {
		return fmt.Errorf("payment secret key is required")
	}

	if c.Payment.Timeout <= 0 {
		return fmt.Errorf("payment timeout must be positive")
	}

	if c.Settlement.PollInterval <= 0 {
		return fmt.Errorf("settlement poll interval must be positive")
	}

	if c.Geocode.Enabled && c.Geocode.BaseURL == "" {
		return fmt.Errorf("geocode base URL is required when geocoding is enabled")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// parseMethodSets parses an ordered list of payment method sets from a
// string like "klarna+card,card". Each comma-separated group is one
// attempt; methods within a group are joined with '+'. An empty string
// yields nil, letting the broker fall back to its defaults.
func parseMethodSets(raw string) [][]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var sets [][]string
	for _, group := range strings.Split(raw, ",") {
		var methods []string
		for _, m := range strings.Split(group, "+") {
			if m = strings.TrimSpace(m); m != "" {
				methods = append(methods, m)
			}
		}
		if len(methods) > 0 {
			sets = append(sets, methods)
		}
	}
	return sets
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration or returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsSlice retrieves a comma-separated environment variable as a
// string slice or returns a default value.
func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
