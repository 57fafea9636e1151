// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	App       AppConfig
	Log       LogConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds the connection settings. Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
	Debug      bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev           bool
	Migrations    bool
	MigrationsDir string
	Seed          bool
}

// LogConfig selects the logrus level and formatter ("json" or "text").
type LogConfig struct {
	Level  string
	Format string
}

// RedisConfig enables the numbering lock when Address is set.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	LockTTL  time.Duration
}

// KafkaConfig enables document events when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// TelemetryConfig enables OTLP trace export when Endpoint is set.
type TelemetryConfig struct {
	Endpoint    string
	ServiceName string
	Insecure    bool
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format, as golang-migrate expects it.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "devis"),
			Password:   getEnv("DB_PASSWORD", "devis123"),
			DBName:     getEnv("DB_NAME", "devis"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "devis.db"),
			Debug:      getEnvBool("DB_DEBUG", false),
		},
		App: AppConfig{
			Dev:           getEnvBool("DEV", true),
			Migrations:    getEnvBool("MIGRATIONS", false),
			MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
			Seed:          getEnvBool("DB_SEED", false),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			LockTTL:  time.Duration(getEnvInt("NUMBERING_LOCK_TTL_MS", 5000)) * time.Millisecond,
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_TOPIC", "document-events"),
		},
		Telemetry: TelemetryConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "go-devis"),
			Insecure:    getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
