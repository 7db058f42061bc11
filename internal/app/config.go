package app

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	storedb "github.com/yungbote/menusync-backend/internal/data/db"
	"github.com/yungbote/menusync-backend/internal/jobs/reconcile"
)

const (
	CacheRedis  = "redis"
	CacheMemory = "memory"

	ReconcileTicker   = "ticker"
	ReconcileTemporal = "temporal"
	ReconcileOff      = "off"
)

type Config struct {
	ServiceName string
	Environment string
	Version     string
	LogMode     string

	Port            string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	DBDriver   string
	DSN        string
	SQLitePath string

	CacheDriver   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheKey      string

	FeedURL       string
	FeedLocalPath string
	FeedTimeout   time.Duration
	FeedWatch     bool

	ReconcileDriver       string
	ReconcileInterval     time.Duration
	ReconcileRetryDelay   time.Duration
	ReconcileInitialDelay time.Duration
	ReconcileRunsPerExec  int
}

func defaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "menusync")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("VERSION", "dev")
	v.SetDefault("LOG_MODE", "development")

	v.SetDefault("PORT", "8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("CORS_ORIGINS", "")

	v.SetDefault("DB_DRIVER", storedb.DriverPostgres)
	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("POSTGRES_NAME", "menusync")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "menusync.db")

	v.SetDefault("CACHE_DRIVER", CacheRedis)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_KEY", "menus")

	v.SetDefault("FEED_URL", "")
	v.SetDefault("FEED_LOCAL_PATH", "sheet.csv")
	v.SetDefault("FEED_TIMEOUT", "30s")
	v.SetDefault("FEED_WATCH", false)

	v.SetDefault("RECONCILE_DRIVER", ReconcileTicker)
	v.SetDefault("RECONCILE_INTERVAL", reconcile.DefaultInterval.String())
	v.SetDefault("RECONCILE_RETRY_DELAY", reconcile.DefaultRetryDelay.String())
	v.SetDefault("RECONCILE_INITIAL_DELAY", "0s")
	v.SetDefault("RECONCILE_RUNS_PER_EXECUTION", 100)
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	v := viper.New()
	v.AutomaticEnv()
	defaults(v)
	return configFrom(v)
}

func configFrom(v *viper.Viper) (Config, error) {
	cfg := Config{
		ServiceName: v.GetString("SERVICE_NAME"),
		Environment: v.GetString("ENVIRONMENT"),
		Version:     v.GetString("VERSION"),
		LogMode:     v.GetString("LOG_MODE"),

		Port:            strings.TrimPrefix(strings.TrimSpace(v.GetString("PORT")), ":"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),

		DBDriver:   strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		SQLitePath: v.GetString("SQLITE_PATH"),

		CacheDriver:   strings.ToLower(strings.TrimSpace(v.GetString("CACHE_DRIVER"))),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		CacheKey:      v.GetString("CACHE_KEY"),

		FeedURL:       strings.TrimSpace(v.GetString("FEED_URL")),
		FeedLocalPath: v.GetString("FEED_LOCAL_PATH"),
		FeedTimeout:   v.GetDuration("FEED_TIMEOUT"),
		FeedWatch:     v.GetBool("FEED_WATCH"),

		ReconcileDriver:       strings.ToLower(strings.TrimSpace(v.GetString("RECONCILE_DRIVER"))),
		ReconcileInterval:     v.GetDuration("RECONCILE_INTERVAL"),
		ReconcileRetryDelay:   v.GetDuration("RECONCILE_RETRY_DELAY"),
		ReconcileInitialDelay: v.GetDuration("RECONCILE_INITIAL_DELAY"),
		ReconcileRunsPerExec:  v.GetInt("RECONCILE_RUNS_PER_EXECUTION"),
	}

	switch cfg.DBDriver {
	case storedb.DriverPostgres:
		cfg.DSN = strings.TrimSpace(v.GetString("POSTGRES_DSN"))
		if cfg.DSN == "" {
			cfg.DSN = postgresDSN(v)
		}
	case storedb.DriverSQLite:
		cfg.DSN = fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", cfg.SQLitePath)
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	switch cfg.CacheDriver {
	case CacheRedis, CacheMemory:
	default:
		return Config{}, fmt.Errorf("unsupported CACHE_DRIVER %q", cfg.CacheDriver)
	}

	switch cfg.ReconcileDriver {
	case ReconcileTicker, ReconcileTemporal, ReconcileOff:
	default:
		return Config{}, fmt.Errorf("unsupported RECONCILE_DRIVER %q", cfg.ReconcileDriver)
	}
	return cfg, nil
}

func postgresDSN(v *viper.Viper) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(v.GetString("POSTGRES_USER"), v.GetString("POSTGRES_PASSWORD")),
		Host:   v.GetString("POSTGRES_HOST") + ":" + v.GetString("POSTGRES_PORT"),
		Path:   "/" + v.GetString("POSTGRES_NAME"),
	}
	q := url.Values{}
	q.Set("sslmode", v.GetString("POSTGRES_SSLMODE"))
	u.RawQuery = q.Encode()
	return u.String()
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FeedEnabled reports whether a feed location is configured.
func (c Config) FeedEnabled() bool { return c.FeedURL != "" }

func (c Config) Address() string { return ":" + c.Port }
