package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Makepad-fr/fxlist/internal/remote"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// EnvPrefix is prepended to every key when read from the environment.
const EnvPrefix = "FXLIST"

// Config holds application configuration.
type Config struct {
	RatesURL        string
	HTTPTimeout     time.Duration
	RefreshInterval time.Duration
	MoveSettle      time.Duration

	CacheBackend string
	CachePath    string // empty means the user cache dir

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration // zero keeps the cache forever

	LogLevel string
	LogFile  string // empty means stderr
}

// Load reads the environment, after merging the dotenv file at path when it
// exists. Variables already set in the environment win over the file.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)

	v.SetDefault("RATES_URL", remote.DefaultURL)
	v.SetDefault("HTTP_TIMEOUT", "5s")
	v.SetDefault("REFRESH_INTERVAL", "1s")
	v.SetDefault("MOVE_SETTLE", "300ms")
	v.SetDefault("CACHE_BACKEND", BackendFile)
	v.SetDefault("CACHE_PATH", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_TTL", "0s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "fxlist.log")

	v.AutomaticEnv()

	cfg := &Config{
		RatesURL:      strings.TrimSpace(v.GetString("RATES_URL")),
		CacheBackend:  strings.ToLower(strings.TrimSpace(v.GetString("CACHE_BACKEND"))),
		CachePath:     v.GetString("CACHE_PATH"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFile:       v.GetString("LOG_FILE"),
	}

	var err error
	if cfg.RedisDB, err = parseInt(v, "REDIS_DB"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = parseDuration(v, "HTTP_TIMEOUT", true); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = parseDuration(v, "REFRESH_INTERVAL", true); err != nil {
		return nil, err
	}
	if cfg.MoveSettle, err = parseDuration(v, "MOVE_SETTLE", true); err != nil {
		return nil, err
	}
	if cfg.RedisTTL, err = parseDuration(v, "REDIS_TTL", false); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that do not depend on parsing.
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case BackendFile, BackendRedis:
	default:
		return fmt.Errorf("%s_CACHE_BACKEND: unknown backend %q (want %s or %s)", EnvPrefix, c.CacheBackend, BackendFile, BackendRedis)
	}
	if c.RatesURL == "" {
		return fmt.Errorf("%s_RATES_URL: must not be empty", EnvPrefix)
	}
	if c.CacheBackend == BackendRedis && c.RedisAddr == "" {
		return fmt.Errorf("%s_REDIS_ADDR: required for the redis backend", EnvPrefix)
	}
	return nil
}

func parseDuration(v *viper.Viper, key string, positive bool) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s_%s: %w", EnvPrefix, key, err)
	}
	if d < 0 || (positive && d == 0) {
		return 0, fmt.Errorf("%s_%s: %s is out of range", EnvPrefix, key, raw)
	}
	return d, nil
}

func parseInt(v *viper.Viper, key string) (int, error) {
	var n int
	raw := strings.TrimSpace(v.GetString(key))
	if _, err := fmt.Sscan(raw, &n); err != nil || n < 0 {
		return 0, fmt.Errorf("%s_%s: invalid value %q", EnvPrefix, key, raw)
	}
	return n, nil
}
