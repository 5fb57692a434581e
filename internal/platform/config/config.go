package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

const (
	// PORT is reserved for platform/Caddy. HTTP_ADDR controls the Go backend.
	defaultHTTPAddr = ":8080"
	defaultVersion  = "1.0"
	defaultDriver   = DriverPostgres

	// Sentry
	defaultSentryFlushTimeout      = 2 * time.Second
	defaultSentryMiddlewareTimeout = 2 * time.Second

	// DB pool
	defaultDBMaxOpenConns    = 10
	defaultDBMaxIdleConns    = 10
	defaultDBConnMaxLifetime = 30 * time.Minute

	// HTTP server timeouts
	defaultHTTPReadHeaderTimeout = 5 * time.Second
	defaultHTTPReadTimeout       = 15 * time.Second
	defaultHTTPWriteTimeout      = 15 * time.Second
	defaultHTTPIdleTimeout       = 60 * time.Second
	defaultHTTPShutdownTimeout   = 5 * time.Second

	// Request budget
	defaultRequestBudget = 2 * time.Second
)

type Config struct {
	// HTTPAddr is the Go backend listen address; PORT is reserved for platform/Caddy.
	HTTPAddr string
	BaseURL  string
	Version  string

	StoreDriver    string
	DatabaseURL    string
	RedisURL       string
	MigrateOnStart bool

	SentryDSN string

	SentryFlushTimeout      time.Duration
	SentryMiddlewareTimeout time.Duration

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	HTTPReadHeaderTimeout time.Duration
	HTTPReadTimeout       time.Duration
	HTTPWriteTimeout      time.Duration
	HTTPIdleTimeout       time.Duration
	HTTPShutdownTimeout   time.Duration
	RequestBudget         time.Duration

	CORSAllowedOrigins []string

	LogLevel slog.Level
}

type durationSpec struct {
	key string
	def time.Duration
	dst *time.Duration
}

// Load reads an optional .env file into the process environment and then
// builds Config from the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", defaultHTTPAddr)
	v.SetDefault("APP_VERSION", defaultVersion)
	v.SetDefault("STORE_DRIVER", defaultDriver)
	v.SetDefault("MIGRATE_ON_START", "true")
	v.SetDefault("LOG_LEVEL", "info")

	return v
}

// FromViper builds Config from values already present in v.
func FromViper(v *viper.Viper) (Config, error) {
	r := reader{v: v}

	cfg := Config{
		HTTPAddr:  normalizeListenAddr(r.get("HTTP_ADDR", defaultHTTPAddr)),
		Version:   r.get("APP_VERSION", defaultVersion),
		SentryDSN: r.env("SENTRY_DSN"),
	}

	baseURL, err := r.must("BASE_URL", ErrBaseURLEmpty)
	if err != nil {
		return Config{}, err
	}

	cfg.BaseURL = normalizeBaseURL(baseURL)
	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return Config{}, err
	}

	loaders := []func(reader, *Config) error{
		loadStore,
		loadSentry,
		loadDBPool,
		loadHTTPServer,
		loadRequestBudget,
		loadLogLevel,
	}

	for _, load := range loaders {
		if err := load(r, &cfg); err != nil {
			return Config{}, err
		}
	}

	loadCORS(r, &cfg)

	return cfg, nil
}

func normalizeListenAddr(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return defaultHTTPAddr
	}

	if strings.Contains(v, ":") {
		return v
	}

	return ":" + v
}

func normalizeBaseURL(v string) string {
	return strings.TrimRight(strings.TrimSpace(v), "/")
}

func validateBaseURL(v string) error {
	if v == "" {
		return ErrBaseURLEmpty
	}

	u, err := url.Parse(v)
	if err != nil {
		return ErrInvalidBaseURL
	}

	return validateBaseURLParts(u)
}

func validateBaseURLParts(u *url.URL) error {
	if !isAllowedScheme(u.Scheme) {
		return ErrInvalidBaseURL
	}

	if u.Hostname() == "" {
		return ErrInvalidBaseURL
	}

	if u.RawQuery != "" || u.Fragment != "" {
		return ErrInvalidBaseURL
	}

	if u.Path != "" && u.Path != "/" {
		return ErrInvalidBaseURL
	}

	return nil
}

func isAllowedScheme(scheme string) bool {
	return scheme == "http" || scheme == "https"
}

// reader wraps viper with the trimming and strict parsing the loaders rely on.
type reader struct {
	v *viper.Viper
}

func (r reader) env(key string) string {
	return strings.TrimSpace(r.v.GetString(key))
}

func (r reader) get(key, def string) string {
	v := r.env(key)
	if v == "" {
		return def
	}

	return v
}

func (r reader) must(key string, errEmpty error) (string, error) {
	v := r.env(key)
	if v == "" {
		return "", errEmpty
	}

	return v, nil
}

// typed parsers

func (r reader) getDuration(key string, def time.Duration) (time.Duration, error) {
	raw := r.env(key)
	if raw == "" {
		return def, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidDuration, key, raw)
	}

	return d, nil
}

func (r reader) getInt(key string, def int) (int, error) {
	raw := r.env(key)
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidInt, key, raw)
	}

	return n, nil
}

func (r reader) getBool(key string, def bool) (bool, error) {
	raw := r.env(key)
	if raw == "" {
		return def, nil
	}

	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrInvalidBool, key, raw)
	}

	return b, nil
}

// grouped loaders

func loadStore(r reader, cfg *Config) error {
	driver := strings.ToLower(r.get("STORE_DRIVER", defaultDriver))

	switch driver {
	case DriverPostgres, DriverSQLite:
		dbURL, err := r.must("DATABASE_URL", ErrDatabaseURLEmpty)
		if err != nil {
			return err
		}

		cfg.DatabaseURL = dbURL
	case DriverRedis:
		redisURL, err := r.must("REDIS_URL", ErrRedisURLEmpty)
		if err != nil {
			return err
		}

		cfg.RedisURL = redisURL
	case DriverMemory:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStoreDriver, driver)
	}

	migrate, err := r.getBool("MIGRATE_ON_START", true)
	if err != nil {
		return err
	}

	cfg.StoreDriver = driver
	cfg.MigrateOnStart = migrate

	return nil
}

func loadSentry(r reader, cfg *Config) error {
	flush, err := r.getDuration("SENTRY_FLUSH_TIMEOUT", defaultSentryFlushTimeout)
	if err != nil {
		return err
	}

	mw, err := r.getDuration("SENTRY_MIDDLEWARE_TIMEOUT", defaultSentryMiddlewareTimeout)
	if err != nil {
		return err
	}

	if flush <= 0 || mw <= 0 {
		return fmt.Errorf("%w: sentry flush=%s middleware=%s", ErrInvalidDuration, flush, mw)
	}

	cfg.SentryFlushTimeout = flush
	cfg.SentryMiddlewareTimeout = mw

	return nil
}

func loadDBPool(r reader, cfg *Config) error {
	maxOpen, err := r.getInt("DB_MAX_OPEN_CONNS", defaultDBMaxOpenConns)
	if err != nil {
		return err
	}

	maxIdle, err := r.getInt("DB_MAX_IDLE_CONNS", defaultDBMaxIdleConns)
	if err != nil {
		return err
	}

	connLife, err := r.getDuration("DB_CONN_MAX_LIFETIME", defaultDBConnMaxLifetime)
	if err != nil {
		return err
	}

	if maxOpen <= 0 || maxIdle <= 0 || connLife <= 0 {
		return fmt.Errorf("%w: open=%d idle=%d lifetime=%s", ErrInvalidDBPool, maxOpen, maxIdle, connLife)
	}

	if maxIdle > maxOpen {
		return fmt.Errorf("%w: idle=%d > open=%d", ErrInvalidDBPool, maxIdle, maxOpen)
	}

	cfg.DBMaxOpenConns = maxOpen
	cfg.DBMaxIdleConns = maxIdle
	cfg.DBConnMaxLifetime = connLife

	return nil
}

func loadHTTPServer(r reader, cfg *Config) error {
	specs := []durationSpec{
		{
			key: "HTTP_READ_HEADER_TIMEOUT",
			def: defaultHTTPReadHeaderTimeout,
			dst: &cfg.HTTPReadHeaderTimeout,
		},
		{
			key: "HTTP_READ_TIMEOUT",
			def: defaultHTTPReadTimeout,
			dst: &cfg.HTTPReadTimeout,
		},
		{
			key: "HTTP_WRITE_TIMEOUT",
			def: defaultHTTPWriteTimeout,
			dst: &cfg.HTTPWriteTimeout,
		},
		{
			key: "HTTP_IDLE_TIMEOUT",
			def: defaultHTTPIdleTimeout,
			dst: &cfg.HTTPIdleTimeout,
		},
		{
			key: "HTTP_SHUTDOWN_TIMEOUT",
			def: defaultHTTPShutdownTimeout,
			dst: &cfg.HTTPShutdownTimeout,
		},
	}

	for _, spec := range specs {
		d, err := r.getDuration(spec.key, spec.def)
		if err != nil {
			return err
		}

		if d <= 0 {
			return fmt.Errorf("%w: %s=%s", ErrInvalidDuration, spec.key, d)
		}

		*spec.dst = d
	}

	return nil
}

func loadRequestBudget(r reader, cfg *Config) error {
	budget, err := r.getDuration("REQUEST_BUDGET", defaultRequestBudget)
	if err != nil {
		return err
	}

	if budget <= 0 {
		return fmt.Errorf("%w: REQUEST_BUDGET=%s", ErrInvalidDuration, budget)
	}

	cfg.RequestBudget = budget

	return nil
}

func loadLogLevel(r reader, cfg *Config) error {
	raw := r.get("LOG_LEVEL", "info")

	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, raw)
	}

	cfg.LogLevel = level

	return nil
}

func loadCORS(r reader, cfg *Config) {
	raw := r.env("CORS_ALLOWED_ORIGINS")
	if raw == "" {
		return
	}

	parts := strings.Split(raw, ",")
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}

		cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
	}
}
