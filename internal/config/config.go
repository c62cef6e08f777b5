package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/rs/zerolog/log"
)

type FlushPolicy string

const (
	FlushDebounce FlushPolicy = "debounce"
	FlushInterval FlushPolicy = "interval"
)

type StorageBackend string

const (
	StorageFile   StorageBackend = "file"
	StorageRedis  StorageBackend = "redis"
	StorageMemory StorageBackend = "memory"
)

type IngestSink string

const (
	SinkLog        IngestSink = "log"
	SinkClickHouse IngestSink = "clickhouse"
	SinkPostgres   IngestSink = "postgres"
)

type Config struct {
	// Delivery
	APIBase     string        `env:"API_BASE" envDefault:"https://content.zrobie.jutro.net/api/v1"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`

	// Buffer
	FlushPolicy   FlushPolicy   `env:"FLUSH_POLICY" envDefault:"debounce"`
	FlushDelay    time.Duration `env:"FLUSH_DELAY" envDefault:"5s"`
	MaxPending    int           `env:"MAX_PENDING" envDefault:"50"`
	LogCapacity   int           `env:"PERSISTENT_LOG_CAPACITY" envDefault:"100"`
	AnalyticsKey  string        `env:"ANALYTICS_STORAGE_KEY" envDefault:"analytics_queue"`
	ViewportWidth int           `env:"VIEWPORT_WIDTH" envDefault:"1280"`
	UserAgent     string        `env:"USER_AGENT"`

	// Storage
	StorageBackend StorageBackend `env:"STORAGE_BACKEND" envDefault:"file"`
	StorageDir     string         `env:"STORAGE_DIR" envDefault:"data/storage"`
	RedisURL       string         `env:"REDIS_URL"`
	RedisKeyPrefix string         `env:"REDIS_KEY_PREFIX" envDefault:"portal:"`

	// Session
	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"pl"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"true"`

	// Ingest server
	IngestAddr         string        `env:"INGEST_ADDR" envDefault:":8080"`
	IngestSink         IngestSink    `env:"INGEST_SINK" envDefault:"log"`
	ClickHouseAddr     string        `env:"CLICKHOUSE_ADDR"`
	ClickHouseDB       string        `env:"CLICKHOUSE_DB" envDefault:"default"`
	ClickHouseUsername string        `env:"CLICKHOUSE_USERNAME" envDefault:"default"`
	ClickHousePassword string        `env:"CLICKHOUSE_PASSWORD"`
	DatabaseURL        string        `env:"DATABASE_URL"`
	AllowedOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	DedupTTL           time.Duration `env:"DEDUP_TTL" envDefault:"10m"`

	// Reports
	ReportCron       string `env:"REPORT_CRON" envDefault:"0 21 * * *"`
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL"`
	OpenAIModel      string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
}

// BatchEndpoint returns the ingestion URL the buffer posts to.
func (c *Config) BatchEndpoint() string {
	return trimSlash(c.APIBase) + "/analytics/batch"
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// Parse reads the configuration from the environment and validates it.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func New() *Config {
	cfg, err := Parse()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse config")
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.FlushPolicy {
	case FlushDebounce, FlushInterval:
	default:
		return fmt.Errorf("unknown flush policy: %s", c.FlushPolicy)
	}
	switch c.StorageBackend {
	case StorageFile, StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for redis storage")
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", c.StorageBackend)
	}
	switch c.IngestSink {
	case SinkLog:
	case SinkClickHouse:
		if c.ClickHouseAddr == "" {
			return fmt.Errorf("CLICKHOUSE_ADDR is required for clickhouse sink")
		}
	case SinkPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres sink")
		}
	default:
		return fmt.Errorf("unknown ingest sink: %s", c.IngestSink)
	}
	if c.FlushDelay <= 0 {
		return fmt.Errorf("FLUSH_DELAY must be positive, got %s", c.FlushDelay)
	}
	if c.LogCapacity <= 0 {
		return fmt.Errorf("PERSISTENT_LOG_CAPACITY must be positive, got %d", c.LogCapacity)
	}
	return nil
}
