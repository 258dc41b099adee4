package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the skillpulse service.
type Config struct {
	Server       ServerConfig
	Storage      StorageConfig
	Cache        CacheConfig
	AI           AIConfig
	Catalog      CatalogConfig
	Filter       FilterConfig
	Trend        TrendConfig
	Notification NotificationConfig
	Refresh      RefreshConfig
}

// ServerConfig controls the HTTP and MCP transports.
type ServerConfig struct {
	Addr        string
	ReadTimeout time.Duration
	MCPStdio    bool // also serve MCP over stdin/stdout
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string // "sqlite", "postgres" or "none"
	Path   string // sqlite database file
	DSN    string // postgres connection string, expanded from env by Load
}

// CacheConfig controls where generated summaries are cached.
type CacheConfig struct {
	Driver        string // "store", "redis" or "none"
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

// AIConfig controls the optional text-generation backend.
type AIConfig struct {
	Enabled     bool
	Provider    string // "openai" or "gemini"
	BaseURL     string // defaults to https://api.openai.com/v1
	Model       string
	APIKey      string        // expanded from env var by Load
	Timeout     time.Duration // per-call timeout
	MaxAttempts int
	BaseDelay   time.Duration // backoff base between attempts
	MaxDelay    time.Duration // upper bound on a provider Retry-After wait
	MinDelay    time.Duration // minimum gap between calls to the same provider
	Temperature float64
	MaxTokens   int
}

// CatalogConfig points at an optional role catalog file. Empty uses the
// built-in roles.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// FilterConfig overrides the built-in keyword tables. Nil slices keep the defaults.
type FilterConfig struct {
	BannedKeywords    []string `yaml:"banned_keywords"`
	RisingKeywords    []string `yaml:"rising_keywords"`
	DecliningKeywords []string `yaml:"declining_keywords"`
}

// TrendConfig tunes the trend synthesizer and the demand cache.
type TrendConfig struct {
	BaseDemand     map[string]float64
	DemandCacheTTL time.Duration
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log", "slack" or "amqp"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
	AMQPURL    string `yaml:"amqp_url"`    // required if type is "amqp"
	Exchange   string `yaml:"exchange"`
}

// RefreshConfig controls the background maintenance jobs.
type RefreshConfig struct {
	Enabled  bool
	Interval time.Duration
}

const (
	defaultAddr          = ":8080"
	defaultReadTimeout   = 15 * time.Second
	defaultSQLitePath    = "data/skillpulse.db"
	defaultCacheTTL      = 24 * time.Hour
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultGeminiModel   = "gemini-1.5-flash"
	defaultAITimeout     = 10 * time.Second
	defaultMaxAttempts   = 3
	defaultBaseDelay     = time.Second
	defaultMaxDelay      = 5 * time.Second
	defaultTemperature   = 0.7
	defaultMaxTokens     = 1000
	defaultDemandTTL     = time.Hour
	defaultRefresh       = 24 * time.Hour
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Server       rawServerConfig    `yaml:"server"`
	Storage      rawStorageConfig   `yaml:"storage"`
	Cache        rawCacheConfig     `yaml:"cache"`
	AI           rawAIConfig        `yaml:"ai"`
	Catalog      CatalogConfig      `yaml:"catalog"`
	Filter       FilterConfig       `yaml:"filter"`
	Trend        rawTrendConfig     `yaml:"trend"`
	Notification NotificationConfig `yaml:"notification"`
	Refresh      rawRefreshConfig   `yaml:"refresh"`
}

type rawServerConfig struct {
	Addr        string `yaml:"addr"`
	ReadTimeout string `yaml:"read_timeout"`
	MCPStdio    bool   `yaml:"mcp_stdio"`
}

type rawStorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

type rawCacheConfig struct {
	Driver        string `yaml:"driver"`
	TTL           string `yaml:"ttl"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	KeyPrefix     string `yaml:"key_prefix"`
}

type rawAIConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Provider    string   `yaml:"provider"`
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	APIKey      string   `yaml:"api_key"`
	Timeout     string   `yaml:"timeout"`
	MaxAttempts int      `yaml:"max_attempts"`
	BaseDelay   string   `yaml:"base_delay"`
	MaxDelay    string   `yaml:"max_delay"`
	MinDelay    string   `yaml:"min_delay"`
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
}

type rawTrendConfig struct {
	BaseDemand     map[string]float64 `yaml:"base_demand"`
	DemandCacheTTL string             `yaml:"demand_cache_ttl"`
}

type rawRefreshConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Interval string `yaml:"interval"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg, err := Parse(nil)
	if err != nil {
		panic(fmt.Sprintf("default config invalid: %v", err))
	}
	return cfg
}

// Parse expands environment variables in data, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	var err error
	cfg := &Config{
		Server: ServerConfig{
			Addr:     orDefault(raw.Server.Addr, defaultAddr),
			MCPStdio: raw.Server.MCPStdio,
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(orDefault(raw.Storage.Driver, "sqlite")),
			Path:   raw.Storage.Path,
			DSN:    raw.Storage.DSN,
		},
		Cache: CacheConfig{
			Driver:        strings.ToLower(orDefault(raw.Cache.Driver, "store")),
			RedisAddr:     raw.Cache.RedisAddr,
			RedisPassword: raw.Cache.RedisPassword,
			RedisDB:       raw.Cache.RedisDB,
			KeyPrefix:     raw.Cache.KeyPrefix,
		},
		AI: AIConfig{
			Enabled:     raw.AI.Enabled,
			Provider:    strings.ToLower(orDefault(raw.AI.Provider, "openai")),
			BaseURL:     raw.AI.BaseURL,
			Model:       raw.AI.Model,
			APIKey:      raw.AI.APIKey,
			MaxAttempts: raw.AI.MaxAttempts,
			Temperature: defaultTemperature,
			MaxTokens:   raw.AI.MaxTokens,
		},
		Catalog:      raw.Catalog,
		Filter:       raw.Filter,
		Trend:        TrendConfig{BaseDemand: raw.Trend.BaseDemand},
		Notification: raw.Notification,
		Refresh:      RefreshConfig{Enabled: raw.Refresh.Enabled},
	}
	if cfg.Server.ReadTimeout, err = parseDuration("server.read_timeout", raw.Server.ReadTimeout, defaultReadTimeout); err != nil {
		return nil, err
	}
	if cfg.Cache.TTL, err = parseDuration("cache.ttl", raw.Cache.TTL, defaultCacheTTL); err != nil {
		return nil, err
	}
	if cfg.AI.Timeout, err = parseDuration("ai.timeout", raw.AI.Timeout, defaultAITimeout); err != nil {
		return nil, err
	}
	if cfg.AI.BaseDelay, err = parseDuration("ai.base_delay", raw.AI.BaseDelay, defaultBaseDelay); err != nil {
		return nil, err
	}
	if cfg.AI.MaxDelay, err = parseDuration("ai.max_delay", raw.AI.MaxDelay, defaultMaxDelay); err != nil {
		return nil, err
	}
	if cfg.AI.MinDelay, err = parseDuration("ai.min_delay", raw.AI.MinDelay, 0); err != nil {
		return nil, err
	}
	if cfg.Trend.DemandCacheTTL, err = parseDuration("trend.demand_cache_ttl", raw.Trend.DemandCacheTTL, defaultDemandTTL); err != nil {
		return nil, err
	}
	if cfg.Refresh.Interval, err = parseDuration("refresh.interval", raw.Refresh.Interval, defaultRefresh); err != nil {
		return nil, err
	}

	if cfg.Storage.Driver == "sqlite" && cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultSQLitePath
	}
	if cfg.AI.MaxAttempts == 0 {
		cfg.AI.MaxAttempts = defaultMaxAttempts
	}
	if raw.AI.Temperature != nil {
		cfg.AI.Temperature = *raw.AI.Temperature
	}
	if cfg.AI.MaxTokens == 0 {
		cfg.AI.MaxTokens = defaultMaxTokens
	}
	switch cfg.AI.Provider {
	case "openai":
		cfg.AI.BaseURL = orDefault(cfg.AI.BaseURL, defaultOpenAIBaseURL)
		cfg.AI.Model = orDefault(cfg.AI.Model, defaultOpenAIModel)
	case "gemini":
		cfg.AI.Model = orDefault(cfg.AI.Model, defaultGeminiModel)
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseDuration(name, raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", name, raw, err)
	}
	return d, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func validate(cfg *Config) error {
	if cfg.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive, got %v", cfg.Server.ReadTimeout)
	}

	switch cfg.Storage.Driver {
	case "sqlite", "none":
	case "postgres":
		if cfg.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required when driver is \"postgres\"")
		}
	default:
		return fmt.Errorf("storage.driver must be sqlite, postgres or none, got %q", cfg.Storage.Driver)
	}

	switch cfg.Cache.Driver {
	case "store", "none":
	case "redis":
		if cfg.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required when driver is \"redis\"")
		}
	default:
		return fmt.Errorf("cache.driver must be store, redis or none, got %q", cfg.Cache.Driver)
	}
	if cfg.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %v", cfg.Cache.TTL)
	}

	switch cfg.AI.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("ai.provider must be openai or gemini, got %q", cfg.AI.Provider)
	}
	if cfg.AI.Enabled && cfg.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key is required when ai.enabled is true")
	}
	if cfg.AI.MaxAttempts < 1 || cfg.AI.MaxAttempts > 10 {
		return fmt.Errorf("ai.max_attempts must be between 1 and 10, got %d", cfg.AI.MaxAttempts)
	}
	if cfg.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive, got %v", cfg.AI.Timeout)
	}
	if cfg.AI.BaseDelay < 0 || cfg.AI.MinDelay < 0 {
		return fmt.Errorf("ai.base_delay and ai.min_delay must not be negative")
	}
	if cfg.AI.MaxDelay <= 0 {
		return fmt.Errorf("ai.max_delay must be positive, got %v", cfg.AI.MaxDelay)
	}
	if cfg.AI.Temperature < 0 || cfg.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be between 0 and 2, got %v", cfg.AI.Temperature)
	}
	if cfg.AI.MaxTokens < 1 {
		return fmt.Errorf("ai.max_tokens must be positive, got %d", cfg.AI.MaxTokens)
	}

	for skill, d := range cfg.Trend.BaseDemand {
		if d < 0 || d > 100 {
			return fmt.Errorf("trend.base_demand[%q] must be between 0 and 100, got %v", skill, d)
		}
	}
	if cfg.Trend.DemandCacheTTL <= 0 {
		return fmt.Errorf("trend.demand_cache_ttl must be positive, got %v", cfg.Trend.DemandCacheTTL)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	case "amqp":
		if cfg.Notification.AMQPURL == "" {
			return fmt.Errorf("notification.amqp_url is required when type is \"amqp\"")
		}
	default:
		return fmt.Errorf("notification.type must be log, slack or amqp, got %q", cfg.Notification.Type)
	}

	if cfg.Refresh.Enabled && cfg.Refresh.Interval < time.Minute {
		return fmt.Errorf("refresh.interval must be at least 1m, got %v", cfg.Refresh.Interval)
	}
	return nil
}
