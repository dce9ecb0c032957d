// Package config loads the service configuration.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Log       LogConfig
	Backend   BackendConfig
	Pricing   PricingConfig
	Catalog   CatalogConfig
	Checkout  CheckoutConfig
	Cache     CacheConfig
	Redis     RedisConfig
	Store     StoreConfig
	Cookie    CookieConfig
	Telemetry TelemetryConfig
	Metrics   MetricsConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBurst    int
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// BackendConfig points at the remote REST API
type BackendConfig struct {
	URL             string // scheme://host[:port] without the API prefix
	APIPrefix       string
	Timeout         time.Duration
	MutationRetries int
	RetryBackoff    time.Duration
}

// BaseURL returns URL joined with APIPrefix
func (b BackendConfig) BaseURL() string {
	return strings.TrimRight(b.URL, "/") + "/" + strings.Trim(b.APIPrefix, "/")
}

// PricingConfig holds the cart pricing policy
type PricingConfig struct {
	TaxRate float64 // fraction, 0.15 = 15%
}

// CatalogConfig holds storefront listing settings
type CatalogConfig struct {
	PageSize       int
	SearchDebounce time.Duration
	MinStock       int
}

// CheckoutConfig holds payment redirect settings
type CheckoutConfig struct {
	// PublicOrigin is the storefront origin used for payment callbacks.
	// When empty the request Origin header is used.
	PublicOrigin string
}

// CacheConfig holds query cache settings
type CacheConfig struct {
	Driver              string // memory, redis
	StaleTime           time.Duration
	GCTime              time.Duration
	CleanupInterval     time.Duration
	InvalidationChannel string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// StoreConfig holds the persisted client store settings
type StoreConfig struct {
	Driver        string // memory, redis, sqlite
	TTL           time.Duration
	SQLitePath    string
	PurgeInterval time.Duration // sqlite only; redis and memory expire on their own
}

// CookieConfig holds settings for the profile cookie
type CookieConfig struct {
	Name     string
	Domain   string // empty = current domain
	Path     string
	Secure   bool
	SameSite string // strict, lax, none
	MaxAge   time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // e.g. "localhost:4317"
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool // development only
	LogsEnabled       bool // bridge zap records to the OTLP logs pipeline
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STOREFRONT_ prefix (e.g., STOREFRONT_BACKEND_URL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/storefront")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:   v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			RateLimitBurst:    v.GetInt("http.rate_limit_burst"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Backend: BackendConfig{
			URL:             v.GetString("backend.url"),
			APIPrefix:       v.GetString("backend.api_prefix"),
			Timeout:         v.GetDuration("backend.timeout"),
			MutationRetries: v.GetInt("backend.mutation_retries"),
			RetryBackoff:    v.GetDuration("backend.retry_backoff"),
		},
		Pricing: PricingConfig{
			TaxRate: v.GetFloat64("pricing.tax_rate"),
		},
		Catalog: CatalogConfig{
			PageSize:       v.GetInt("catalog.page_size"),
			SearchDebounce: v.GetDuration("catalog.search_debounce"),
			MinStock:       v.GetInt("catalog.min_stock"),
		},
		Checkout: CheckoutConfig{
			PublicOrigin: v.GetString("checkout.public_origin"),
		},
		Cache: CacheConfig{
			Driver:              v.GetString("cache.driver"),
			StaleTime:           v.GetDuration("cache.stale_time"),
			GCTime:              v.GetDuration("cache.gc_time"),
			CleanupInterval:     v.GetDuration("cache.cleanup_interval"),
			InvalidationChannel: v.GetString("cache.invalidation_channel"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Store: StoreConfig{
			Driver:        v.GetString("store.driver"),
			TTL:           v.GetDuration("store.ttl"),
			SQLitePath:    v.GetString("store.sqlite_path"),
			PurgeInterval: v.GetDuration("store.purge_interval"),
		},
		Cookie: CookieConfig{
			Name:     v.GetString("cookie.name"),
			Domain:   v.GetString("cookie.domain"),
			Path:     v.GetString("cookie.path"),
			Secure:   v.GetBool("cookie.secure"),
			SameSite: v.GetString("cookie.same_site"),
			MaxAge:   v.GetDuration("cookie.max_age"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
			Path:    v.GetString("metrics.path"),
		},
	}

	// pricing.tax_rate = 0 is a legal policy, so only fill it when unset
	if !v.IsSet("pricing.tax_rate") {
		cfg.Pricing.TaxRate = 0.15
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB, uploads included
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 300
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.HTTP.RateLimitBurst == 0 {
		cfg.HTTP.RateLimitBurst = 30
	}
	// CORS origins have no wildcard fallback; an empty list allows none.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Confirm"}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Backend.URL == "" {
		cfg.Backend.URL = "http://localhost:3000"
	}
	if cfg.Backend.APIPrefix == "" {
		cfg.Backend.APIPrefix = "/api/v1"
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = 10 * time.Second
	}
	if cfg.Backend.MutationRetries == 0 {
		cfg.Backend.MutationRetries = 1
	}
	if cfg.Backend.RetryBackoff == 0 {
		cfg.Backend.RetryBackoff = 200 * time.Millisecond
	}
	if cfg.Catalog.PageSize == 0 {
		cfg.Catalog.PageSize = 10
	}
	if cfg.Catalog.SearchDebounce == 0 {
		cfg.Catalog.SearchDebounce = 500 * time.Millisecond
	}
	if cfg.Catalog.MinStock == 0 {
		cfg.Catalog.MinStock = 1
	}
	if cfg.Cache.Driver == "" {
		cfg.Cache.Driver = "memory"
	}
	if cfg.Cache.StaleTime == 0 {
		cfg.Cache.StaleTime = 10 * time.Minute
	}
	if cfg.Cache.GCTime == 0 {
		cfg.Cache.GCTime = 15 * time.Minute
	}
	if cfg.Cache.CleanupInterval == 0 {
		cfg.Cache.CleanupInterval = time.Minute
	}
	if cfg.Cache.InvalidationChannel == "" {
		cfg.Cache.InvalidationChannel = "storefront:cache:invalidate"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "memory"
	}
	if cfg.Store.TTL == 0 {
		cfg.Store.TTL = 30 * 24 * time.Hour
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = "storefront.db"
	}
	if cfg.Store.PurgeInterval == 0 {
		cfg.Store.PurgeInterval = time.Hour
	}
	if cfg.Cookie.Name == "" {
		cfg.Cookie.Name = "sf_profile"
	}
	if cfg.Cookie.Path == "" {
		cfg.Cookie.Path = "/"
	}
	if cfg.Cookie.SameSite == "" {
		cfg.Cookie.SameSite = "lax"
	}
	if cfg.Cookie.MaxAge == 0 {
		cfg.Cookie.MaxAge = cfg.Store.TTL
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

var (
	cacheDrivers = map[string]bool{"memory": true, "redis": true}
	storeDrivers = map[string]bool{"memory": true, "redis": true, "sqlite": true}
)

// validate performs validation on the configuration
func (c *Config) validate() error {
	backendURL, err := url.Parse(c.Backend.URL)
	if err != nil || backendURL.Scheme == "" || backendURL.Host == "" {
		return fmt.Errorf("backend.url must be an absolute URL, got %q", c.Backend.URL)
	}
	if c.Backend.MutationRetries < 0 {
		return fmt.Errorf("backend.mutation_retries cannot be negative")
	}
	if c.Pricing.TaxRate < 0 || c.Pricing.TaxRate >= 1 {
		return fmt.Errorf("pricing.tax_rate must be in [0, 1), got %f", c.Pricing.TaxRate)
	}
	if c.Catalog.PageSize < 1 || c.Catalog.PageSize > 100 {
		return fmt.Errorf("catalog.page_size must be between 1 and 100, got %d", c.Catalog.PageSize)
	}
	if !cacheDrivers[c.Cache.Driver] {
		return fmt.Errorf("cache.driver must be one of memory, redis; got %q", c.Cache.Driver)
	}
	if !storeDrivers[c.Store.Driver] {
		return fmt.Errorf("store.driver must be one of memory, redis, sqlite; got %q", c.Store.Driver)
	}
	if c.Cache.GCTime < c.Cache.StaleTime {
		return fmt.Errorf("cache.gc_time (%s) cannot be shorter than cache.stale_time (%s)", c.Cache.GCTime, c.Cache.StaleTime)
	}
	if c.Checkout.PublicOrigin != "" {
		u, err := url.Parse(c.Checkout.PublicOrigin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("checkout.public_origin must be an absolute URL, got %q", c.Checkout.PublicOrigin)
		}
	}
	if c.Cookie.SameSite == "none" && !c.Cookie.Secure {
		return fmt.Errorf("cookie.same_site=none requires cookie.secure=true")
	}

	if c.App.Env == "production" {
		if backendURL.Scheme != "https" {
			return fmt.Errorf("backend.url must use https in production")
		}
		if !c.Cookie.Secure {
			return fmt.Errorf("cookie.secure must be true in production (HTTPS required for secure cookies)")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Store.Driver == "memory" {
			return fmt.Errorf("store.driver=memory loses carts on restart and is not allowed in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
