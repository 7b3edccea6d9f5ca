// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Index, Lemma, Search, Ingest, Kafka, Redis, Postgres, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Index    IndexConfig    `yaml:"index"`
	Lemma    LemmaConfig    `yaml:"lemma"`
	Search   SearchConfig   `yaml:"search"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// Posting store backends accepted by IndexConfig.Store.
const (
	StoreDir      = "dir"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// IndexConfig selects the index variant, where it lives and which backend
// holds its posting lists.
type IndexConfig struct {
	Dir          string `yaml:"dir"`
	Positional   bool   `yaml:"positional"`
	Store        string `yaml:"store"`
	WriteWorkers int    `yaml:"writeWorkers"`
}

// Lemma resolver modes accepted by LemmaConfig.Mode.
const (
	LemmaIdentity   = "identity"
	LemmaDictionary = "dictionary"
	LemmaStemmer    = "stemmer"
	LemmaCombined   = "combined"
)

// LemmaConfig controls how surface tokens are mapped to index terms.
type LemmaConfig struct {
	Mode     string `yaml:"mode"`
	Path     string `yaml:"path"`
	Language string `yaml:"language"`
}

// SearchConfig controls result limits and highlighting.
type SearchConfig struct {
	MaxResults         int    `yaml:"maxResults"`
	DefaultLimit       int    `yaml:"defaultLimit"`
	HighlightOpen      string `yaml:"highlightOpen"`
	HighlightClose     string `yaml:"highlightClose"`
	HighlightByDefault bool   `yaml:"highlightByDefault"`
}

// Ingestion sources accepted by IngestConfig.Source.
const (
	SourceDump  = "dump"
	SourceKafka = "kafka"
)

// IngestConfig selects where the indexer reads documents from.
type IngestConfig struct {
	Source   string `yaml:"source"`
	DumpPath string `yaml:"dumpPath"`
}

// KafkaConfig holds Kafka broker and topic settings for document ingestion.
type KafkaConfig struct {
	Brokers       []string      `yaml:"brokers"`
	ConsumerGroup string        `yaml:"consumerGroup"`
	Topic         string        `yaml:"topic"`
	IdleTimeout   time.Duration `yaml:"idleTimeout"`
}

// RedisConfig holds Redis connection, posting store and caching parameters.
type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	PoolSize  int           `yaml:"poolSize"`
	KeyPrefix string        `yaml:"keyPrefix"`
	CacheTTL  time.Duration `yaml:"cacheTTL"`
	Cache     bool          `yaml:"cache"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// SQLiteConfig points at the embedded posting database. An empty Path puts
// it inside the index directory.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects enum fields the services cannot act on.
func (c *Config) Validate() error {
	switch c.Index.Store {
	case StoreDir, StoreRedis, StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("invalid index.store %q", c.Index.Store)
	}
	switch c.Lemma.Mode {
	case LemmaIdentity, LemmaStemmer:
	case LemmaDictionary, LemmaCombined:
		if c.Lemma.Path == "" {
			return fmt.Errorf("lemma.mode %q requires lemma.path", c.Lemma.Mode)
		}
	default:
		return fmt.Errorf("invalid lemma.mode %q", c.Lemma.Mode)
	}
	switch c.Ingest.Source {
	case SourceDump, SourceKafka:
	default:
		return fmt.Errorf("invalid ingest.source %q", c.Ingest.Source)
	}
	if c.Index.Dir == "" {
		return fmt.Errorf("index.dir must not be empty")
	}
	return nil
}

// defaultConfig returns a Config with defaults for local development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Index: IndexConfig{
			Dir:          "data/index",
			Store:        StoreDir,
			WriteWorkers: 8,
		},
		Lemma: LemmaConfig{
			Mode:     LemmaIdentity,
			Language: "english",
		},
		Search: SearchConfig{
			MaxResults:     100,
			DefaultLimit:   10,
			HighlightOpen:  "\x1b[31m",
			HighlightClose: "\x1b[0m",
		},
		Ingest: IngestConfig{
			Source:   SourceDump,
			DumpPath: "data/fp_wiki.txt",
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "docsearch-indexer",
			Topic:         "documents",
			IdleTimeout:   10 * time.Second,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			PoolSize:  10,
			KeyPrefix: "postings:",
			CacheTTL:  60 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "docsearch",
			User:            "docsearch",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads DS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DS_INDEX_DIR"); v != "" {
		cfg.Index.Dir = v
	}
	if v := os.Getenv("DS_INDEX_POSITIONAL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Index.Positional = b
		}
	}
	if v := os.Getenv("DS_INDEX_STORE"); v != "" {
		cfg.Index.Store = v
	}
	if v := os.Getenv("DS_LEMMA_MODE"); v != "" {
		cfg.Lemma.Mode = v
	}
	if v := os.Getenv("DS_LEMMA_PATH"); v != "" {
		cfg.Lemma.Path = v
	}
	if v := os.Getenv("DS_INGEST_SOURCE"); v != "" {
		cfg.Ingest.Source = v
	}
	if v := os.Getenv("DS_INGEST_DUMP_PATH"); v != "" {
		cfg.Ingest.DumpPath = v
	}
	if v := os.Getenv("DS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("DS_KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
	if v := os.Getenv("DS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("DS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("DS_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("DS_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("DS_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("DS_SQLITE_PATH"); v != "" {
		cfg.SQLite.Path = v
	}
	if v := os.Getenv("DS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
