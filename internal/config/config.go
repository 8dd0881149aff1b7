// Package config loads and validates scraper configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. AWARDS_FETCH_USER_AGENT.
const EnvPrefix = "AWARDS"

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Logging     LoggingConfig     `mapstructure:"logging"`
	Registry    RegistryConfig    `mapstructure:"registry"`
	Seed        SeedConfig        `mapstructure:"seed"`
	Fetch       FetchConfig       `mapstructure:"fetch"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
	Analysis    AnalysisConfig    `mapstructure:"analysis"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Output      OutputConfig      `mapstructure:"output"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	PubSub      PubSubConfig      `mapstructure:"pubsub"`
	DB          DBConfig          `mapstructure:"db"`
	Server      ServerConfig      `mapstructure:"server"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// RegistryConfig points at an optional YAML registry overriding the built-in sources.
type RegistryConfig struct {
	File string `mapstructure:"file"`
}

// SeedConfig controls the curated records merged ahead of scraped data.
type SeedConfig struct {
	IncludeFallback bool `mapstructure:"include_fallback"`
}

// FetchConfig governs both retrieval strategies.
type FetchConfig struct {
	UserAgent       string         `mapstructure:"user_agent"`
	TimeoutSeconds  int            `mapstructure:"timeout_seconds"`
	RespectRobots   bool           `mapstructure:"respect_robots"`
	RPS             float64        `mapstructure:"rps"`
	Burst           int            `mapstructure:"burst"`
	HeadlessEnabled bool           `mapstructure:"headless_enabled"`
	Headless        HeadlessConfig `mapstructure:"headless"`
}

// HeadlessConfig configures the headless rendering subsystem.
type HeadlessConfig struct {
	ExecPath               string `mapstructure:"exec_path"`
	MaxParallel            int    `mapstructure:"max_parallel"`
	NavTimeoutSeconds      int    `mapstructure:"nav_timeout_seconds"`
	SelectorTimeoutSeconds int    `mapstructure:"selector_timeout_seconds"`
	SettleSeconds          int    `mapstructure:"settle_seconds"`
	ScrollStep             int    `mapstructure:"scroll_step"`
	ScrollIntervalMs       int    `mapstructure:"scroll_interval_ms"`
	MaxScrollSteps         int    `mapstructure:"max_scroll_steps"`
	Screenshot             bool   `mapstructure:"screenshot"`
}

// PipelineConfig tunes orchestration.
type PipelineConfig struct {
	Concurrency    int `mapstructure:"concurrency"`
	MinDescription int `mapstructure:"min_description"`
}

// AnalysisConfig selects the text-generation provider. An empty APIKey
// disables analysis.
type AnalysisConfig struct {
	Provider       string  `mapstructure:"provider"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	BaseURL        string  `mapstructure:"base_url"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	Temperature    float64 `mapstructure:"temperature"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	QPS            float64 `mapstructure:"qps"`
}

// CacheConfig selects where analysis results are cached.
type CacheConfig struct {
	Backend  string `mapstructure:"backend"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTLHours int    `mapstructure:"ttl_hours"`
}

// OutputConfig selects where artifacts are written.
type OutputConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
	Bucket  string `mapstructure:"bucket"`
	Prefix  string `mapstructure:"prefix"`
}

// DiagnosticsConfig controls persistence of raw markup and screenshots.
type DiagnosticsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// MetricsConfig controls the Prometheus textfile written after each run.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// PubSubConfig holds metadata for run notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// DBConfig controls access to the snapshot database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// ServerConfig controls the read-only HTTP API.
type ServerConfig struct {
	Port                int `mapstructure:"port"`
	ReadTimeoutSeconds  int `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// TracingConfig controls OpenTelemetry span sampling.
type TracingConfig struct {
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// Load builds a Config from a .env file, disk and the environment, in
// increasing order of precedence. A missing .env file is not an error.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	// Provider credentials are also read from their conventional names.
	if err := v.BindEnv("credentials.openai", "OPENAI_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}
	if err := v.BindEnv("credentials.gemini", "GEMINI_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Analysis.APIKey == "" {
		cfg.Analysis.APIKey = v.GetString("credentials." + strings.ToLower(cfg.Analysis.Provider))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("registry.file", "")
	v.SetDefault("seed.include_fallback", true)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; awards-crawler/1.0)")
	v.SetDefault("fetch.timeout_seconds", 30)
	v.SetDefault("fetch.respect_robots", false)
	v.SetDefault("fetch.rps", 1.0)
	v.SetDefault("fetch.burst", 1)
	v.SetDefault("fetch.headless_enabled", true)
	v.SetDefault("fetch.headless.exec_path", "")
	v.SetDefault("fetch.headless.max_parallel", 1)
	v.SetDefault("fetch.headless.nav_timeout_seconds", 60)
	v.SetDefault("fetch.headless.selector_timeout_seconds", 10)
	v.SetDefault("fetch.headless.settle_seconds", 5)
	v.SetDefault("fetch.headless.scroll_step", 100)
	v.SetDefault("fetch.headless.scroll_interval_ms", 100)
	v.SetDefault("fetch.headless.max_scroll_steps", 400)
	v.SetDefault("fetch.headless.screenshot", true)
	v.SetDefault("pipeline.concurrency", 1)
	v.SetDefault("pipeline.min_description", 50)
	v.SetDefault("analysis.provider", "openai")
	v.SetDefault("analysis.api_key", "")
	v.SetDefault("analysis.model", "")
	v.SetDefault("analysis.base_url", "")
	v.SetDefault("analysis.max_tokens", 500)
	v.SetDefault("analysis.temperature", 0.3)
	v.SetDefault("analysis.timeout_seconds", 30)
	v.SetDefault("analysis.qps", 1.0)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.addr", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl_hours", 24*30)
	v.SetDefault("output.backend", "local")
	v.SetDefault("output.dir", "data")
	v.SetDefault("output.bucket", "")
	v.SetDefault("output.prefix", "")
	v.SetDefault("diagnostics.enabled", true)
	v.SetDefault("diagnostics.dir", "debug")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic_name", "")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.table", "award_snapshots")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", 10)
	v.SetDefault("server.write_timeout_seconds", 10)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.api_key", "")
	v.SetDefault("tracing.service_name", "awards-crawler")
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Pipeline.Concurrency <= 0 {
		return fmt.Errorf("pipeline.concurrency must be > 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Fetch.RPS < 0 {
		return fmt.Errorf("fetch.rps must be >= 0")
	}
	if c.Fetch.HeadlessEnabled && c.Fetch.Headless.MaxParallel < 0 {
		return fmt.Errorf("fetch.headless.max_parallel must be >= 0")
	}
	switch c.Analysis.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("analysis.provider must be openai or gemini, got %q", c.Analysis.Provider)
	}
	switch c.Cache.Backend {
	case "memory", "none":
	case "redis":
		if c.Cache.Addr == "" {
			return fmt.Errorf("cache.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend must be memory, redis or none, got %q", c.Cache.Backend)
	}
	switch c.Output.Backend {
	case "local":
		if c.Output.Dir == "" {
			return fmt.Errorf("output.dir is required for the local backend")
		}
	case "gcs":
		if c.Output.Bucket == "" {
			return fmt.Errorf("output.bucket is required for the gcs backend")
		}
	default:
		return fmt.Errorf("output.backend must be local or gcs, got %q", c.Output.Backend)
	}
	if c.Diagnostics.Enabled && c.Diagnostics.Dir == "" {
		return fmt.Errorf("diagnostics.dir is required when diagnostics are enabled")
	}
	if c.PubSub.TopicName != "" && c.PubSub.ProjectID == "" {
		return fmt.Errorf("pubsub.project_id is required when pubsub.topic_name is set")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be within [0, 1]")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	return nil
}

// FetchTimeout is the per-request budget of the HTTP fallback.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// AnalysisTimeout is the per-call budget of the analyzer.
func (c Config) AnalysisTimeout() time.Duration {
	return time.Duration(c.Analysis.TimeoutSeconds) * time.Second
}

// CacheTTL is how long analysis results stay cached.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}
