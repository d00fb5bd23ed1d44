package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	API struct {
		Port     string
		BasePath string
	}
	DB struct {
		DSN string // empty means the in-memory profile store
	}
	Kafka struct {
		Broker string // empty disables event publishing
		Topic  string
	}
	Logging struct {
		Dir   string
		Level string
	}
	Monitor struct {
		VitalsInterval     time.Duration
		EscalationInterval time.Duration
		EscalationAge      time.Duration
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	// API settings
	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")

	// Profile store DSN (optional)
	cfg.DB.DSN = os.Getenv("DB_DSN")

	// Kafka settings (optional)
	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")

	// Logging settings
	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	// Monitor timing, in seconds
	var err error
	if cfg.Monitor.VitalsInterval, err = secondsEnv("VITALS_INTERVAL", 4); err != nil {
		return Config{}, err
	}
	if cfg.Monitor.EscalationInterval, err = secondsEnv("ESCALATION_INTERVAL", 15); err != nil {
		return Config{}, err
	}
	if cfg.Monitor.EscalationAge, err = secondsEnv("ESCALATION_AGE", 15); err != nil {
		return Config{}, err
	}

	// Apply defaults
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api/v0"
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "monitor_events"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return cfg, nil
}

// secondsEnv reads a positive integer number of seconds from the environment,
// returning def seconds when the variable is unset.
func secondsEnv(key string, def int) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Duration(def) * time.Second, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q (want a positive number of seconds)", key, raw)
	}
	return time.Duration(n) * time.Second, nil
}
