// internal/config/config.go
//
// Process configuration, read from the environment (and a .env file in
// development). Every setting has a default except the store-specific
// connection strings, which are required only for the store that uses them.
//
// Environment variables:
//   PORT, LOG_LEVEL, LOG_FORMAT (json|console), LOG_FILE
//   MAX_ATTEMPTS, TARGET_WORD, SCORING (simple|classic)
//   STORE (memory|sqlite|postgres|redis), SQLITE_PATH, POSTGRES_DSN,
//   REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, REDIS_TTL
//   CLIENT_ORIGIN, RATE_LIMIT_RPS, RATE_LIMIT_BURST, REQUEST_TIMEOUT,
//   SHUTDOWN_TIMEOUT

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	Port        string
	MaxAttempts int
	TargetWord  string
	Scoring     string
	Log         LogConfig
	Store       StoreConfig
	HTTP        HTTPConfig
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

type StoreConfig struct {
	Driver        string
	SQLitePath    string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration
}

type HTTPConfig struct {
	ClientOrigin    string
	RateLimitRPS    float64
	RateLimitBurst  int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

var defaults = map[string]any{
	"port":             "5175",
	"log_level":        "info",
	"log_format":       "json",
	"log_file":         "",
	"max_attempts":     "5",
	"target_word":      "stave",
	"scoring":          "simple",
	"store":            StoreMemory,
	"sqlite_path":      "./data/wordle.db",
	"postgres_dsn":     "",
	"redis_addr":       "",
	"redis_password":   "",
	"redis_db":         0,
	"redis_ttl":        "24h",
	"client_origin":    "http://localhost:5173",
	"rate_limit_rps":   10.0,
	"rate_limit_burst": 20,
	"request_timeout":  "10s",
	"shutdown_timeout": "15s",
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	// GetInt would turn garbage into 0; parse explicitly to report it.
	rawMax := strings.TrimSpace(v.GetString("max_attempts"))
	maxAttempts, err := strconv.Atoi(rawMax)
	if err != nil {
		return Config{}, fmt.Errorf("config: cannot parse MAX_ATTEMPTS %q as a number", rawMax)
	}

	cfg := Config{
		Port:        v.GetString("port"),
		MaxAttempts: maxAttempts,
		TargetWord:  strings.TrimSpace(v.GetString("target_word")),
		Scoring:     strings.ToLower(v.GetString("scoring")),
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: strings.ToLower(v.GetString("log_format")),
			File:   v.GetString("log_file"),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(v.GetString("store")),
			SQLitePath:    v.GetString("sqlite_path"),
			PostgresDSN:   v.GetString("postgres_dsn"),
			RedisAddr:     v.GetString("redis_addr"),
			RedisPassword: v.GetString("redis_password"),
			RedisDB:       v.GetInt("redis_db"),
			RedisTTL:      v.GetDuration("redis_ttl"),
		},
		HTTP: HTTPConfig{
			ClientOrigin:    v.GetString("client_origin"),
			RateLimitRPS:    v.GetFloat64("rate_limit_rps"),
			RateLimitBurst:  v.GetInt("rate_limit_burst"),
			RequestTimeout:  v.GetDuration("request_timeout"),
			ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate checks cross-field rules.
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("config: MAX_ATTEMPTS must be at least 1, got %d", c.MaxAttempts)
	}
	switch c.Scoring {
	case "simple", "classic":
	default:
		return fmt.Errorf("config: unknown SCORING %q", c.Scoring)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: unknown LOG_FORMAT %q", c.Log.Format)
	}
	if c.HTTP.RequestTimeout <= 0 {
		return fmt.Errorf("config: REQUEST_TIMEOUT must be positive")
	}

	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("config: SQLITE_PATH is required for STORE=sqlite")
		}
	case StorePostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("config: POSTGRES_DSN is required for STORE=postgres")
		}
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("config: REDIS_ADDR is required for STORE=redis")
		}
	default:
		return fmt.Errorf("config: unknown STORE %q", c.Store.Driver)
	}
	return nil
}
