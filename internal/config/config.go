package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Redis   RedisConfig
	Cache   CacheConfig
	Limits  LimitsConfig
	Log     LogConfig
	Metrics MetricsConfig
}

type ServerConfig struct {
	Host string
	Port int
}

// RedisConfig is optional: an empty Addr disables caching, change
// notifications, rate limiting and idempotency keys.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type CacheConfig struct {
	TTL time.Duration
}

type LimitsConfig struct {
	WriteLimit     int
	WriteWindow    time.Duration
	IdempotencyTTL time.Duration
}

type LogConfig struct {
	Level slog.Level
}

type MetricsConfig struct {
	Enabled bool
}

// New reads the configuration from the environment. Variables found in
// envFiles (default ".env") are loaded first without overriding ones that
// are already set.
func New(envFiles ...string) (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load(envFiles...)

	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheTTL, err := durationEnv("CACHE_TTL", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	writeLimit, err := intEnv("RATE_LIMIT", 30)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	writeWindow, err := durationEnv("RATE_WINDOW", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	idemTTL, err := durationEnv("IDEMPOTENCY_TTL", 2*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(stringEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("%s: invalid LOG_LEVEL: %w", op, err)
	}

	metricsEnabled, err := boolEnv("METRICS_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Config{
		Server: ServerConfig{
			Host: stringEnv("SERVER_HOST", "localhost"),
			Port: serverPort,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Cache: CacheConfig{
			TTL: cacheTTL,
		},
		Limits: LimitsConfig{
			WriteLimit:     writeLimit,
			WriteWindow:    writeWindow,
			IdempotencyTTL: idemTTL,
		},
		Log: LogConfig{
			Level: level,
		},
		Metrics: MetricsConfig{
			Enabled: metricsEnabled,
		},
	}, nil
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func boolEnv(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}

	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
