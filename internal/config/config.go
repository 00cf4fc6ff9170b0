package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type Config struct {
	BackendURL     string
	BackendTimeout time.Duration
	HTTPAddr       string

	LogLevel  string
	LogFormat string

	// Local storage shared by every process of one user.
	StorageDriver    string
	StoragePath      string
	StorageNamespace string
	RedisURL         string
	DatabaseDSN      string
	RunMigrations    bool

	// Cache invalidation bus; empty disables it.
	RabbitMQURL    string
	QueryStaleTime time.Duration

	CORSAllowOrigins []string
	TraceStdout      bool
	CookieJarPath    string
}

// fileConfig mirrors Config in the optional YAML file. Every field is a
// string so the same parsing applies to the file and the environment.
type fileConfig struct {
	BackendURL       string `yaml:"backend_url"`
	BackendTimeout   string `yaml:"backend_timeout"`
	HTTPAddr         string `yaml:"http_addr"`
	LogLevel         string `yaml:"log_level"`
	LogFormat        string `yaml:"log_format"`
	StorageDriver    string `yaml:"storage_driver"`
	StoragePath      string `yaml:"storage_path"`
	StorageNamespace string `yaml:"storage_namespace"`
	RedisURL         string `yaml:"redis_url"`
	DatabaseDSN      string `yaml:"database_dsn"`
	RunMigrations    string `yaml:"run_migrations"`
	RabbitMQURL      string `yaml:"rabbitmq_url"`
	QueryStaleTime   string `yaml:"query_stale_time"`
	CORSAllowOrigins string `yaml:"cors_allow_origins"`
	TraceStdout      string `yaml:"trace_stdout"`
	CookieJarPath    string `yaml:"cookie_jar_path"`
}

// Load reads .env, then the YAML file at path (or $STOREFRONT_CONFIG), then
// the environment. Later sources win.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv("STOREFRONT_CONFIG")
	}
	var fc fileConfig
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	dataDir := defaultDataDir()

	cfg := Config{
		BackendURL:     getenv("BACKEND_URL", or(fc.BackendURL, "http://localhost:8000")),
		BackendTimeout: parseDuration(getenv("BACKEND_TIMEOUT", fc.BackendTimeout), 10*time.Second),
		HTTPAddr:       getenv("HTTP_ADDR", or(fc.HTTPAddr, ":3000")),

		LogLevel:  getenv("LOG_LEVEL", or(fc.LogLevel, "info")),
		LogFormat: getenv("LOG_FORMAT", or(fc.LogFormat, "text")),

		StorageDriver:    strings.ToLower(getenv("STORAGE_DRIVER", or(fc.StorageDriver, DriverFile))),
		StoragePath:      getenv("STORAGE_PATH", or(fc.StoragePath, filepath.Join(dataDir, "storage.json"))),
		StorageNamespace: getenv("STORAGE_NAMESPACE", or(fc.StorageNamespace, "default")),
		RedisURL:         getenv("REDIS_URL", or(fc.RedisURL, "redis://localhost:6379/0")),
		DatabaseDSN:      getenv("DATABASE_DSN", fc.DatabaseDSN),
		RunMigrations:    envBool(getenv("RUN_MIGRATIONS", fc.RunMigrations), true),

		RabbitMQURL:    getenv("RABBITMQ_URL", fc.RabbitMQURL),
		QueryStaleTime: parseDuration(getenv("QUERY_STALE_TIME", fc.QueryStaleTime), 30*time.Second),

		CORSAllowOrigins: splitCSV(getenv("CORS_ALLOW_ORIGINS", or(fc.CORSAllowOrigins, "*"))),
		TraceStdout:      envBool(getenv("TRACE_STDOUT", fc.TraceStdout), false),
		CookieJarPath:    getenv("COOKIE_JAR_PATH", or(fc.CookieJarPath, filepath.Join(dataDir, "cookies.json"))),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case DriverMemory, DriverFile, DriverRedis:
	case DriverPostgres:
		if c.DatabaseDSN == "" {
			return errors.New("config: DATABASE_DSN is required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.BackendURL == "" {
		return errors.New("config: BACKEND_URL is empty")
	}
	return nil
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".storefront"
	}
	return filepath.Join(dir, "storefront")
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func or(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envBool(v string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}
