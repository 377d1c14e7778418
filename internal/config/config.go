// Package config provides configuration management for the ranking service.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SSL mode constants for database connections.
const (
	// SSLModeDisable disables SSL (use only for local development).
	SSLModeDisable = "disable"
	// SSLModeRequire requires SSL but does not verify certificates.
	SSLModeRequire = "require"
	// SSLModeVerifyCA verifies the server certificate against a CA.
	SSLModeVerifyCA = "verify-ca"
	// SSLModeVerifyFull verifies the server certificate and hostname.
	SSLModeVerifyFull = "verify-full"
)

// Config holds all configuration for the ranking service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Database contains PostgreSQL connection settings for the journal store.
	Database DatabaseConfig `mapstructure:"database"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Embedding contains embedding provider settings.
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	// PaperSources contains paper source API configurations.
	PaperSources PaperSourcesConfig `mapstructure:"paper_sources"`
	// Translation contains translation provider settings.
	Translation TranslationConfig `mapstructure:"translation"`
	// Ranking contains scoring engine tuning parameters.
	Ranking RankingConfig `mapstructure:"ranking"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname.
	Host string `mapstructure:"host"`
	// Port is the PostgreSQL server port (default: 5432).
	Port int `mapstructure:"port"`
	// User is the database username.
	User string `mapstructure:"user"`
	// Password is the database password, loaded exclusively from the
	// environment (see loadSecrets).
	Password string `mapstructure:"-"`
	// Name is the database name.
	Name string `mapstructure:"name"`
	// SSLMode controls SSL connection security (require, verify-ca,
	// verify-full, disable). Use "disable" only for local development.
	SSLMode string `mapstructure:"ssl_mode"`
	// MaxConns is the maximum number of connections in the pool.
	MaxConns int32 `mapstructure:"max_conns"`
	// MinConns is the minimum number of connections to keep open.
	MinConns int32 `mapstructure:"min_conns"`
	// MaxConnLifetime is the maximum lifetime of a connection.
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	// MaxConnIdleTime is the maximum idle time before a connection closes.
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	// HealthCheckPeriod is the interval between idle connection checks.
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	// ConnectTimeout is the maximum time to wait for a connection.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	// MigrationPath is the path to migration files.
	MigrationPath string `mapstructure:"migration_path"`
	// MigrationAutoRun enables automatic migration on startup.
	MigrationAutoRun bool `mapstructure:"migration_auto_run"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the output format (json, console).
	Format string `mapstructure:"format"`
	// Output is the output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line number to log entries.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the time format for timestamps.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics exposure configuration.
type MetricsConfig struct {
	// Enabled enables the /metrics endpoint.
	Enabled bool `mapstructure:"enabled"`
	// Path is the metrics endpoint path.
	Path string `mapstructure:"path"`
	// Namespace is the metric name prefix.
	Namespace string `mapstructure:"namespace"`
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	// BaseURL is the embedding provider endpoint.
	BaseURL string `mapstructure:"base_url"`
	// Model is the embedding model identifier.
	Model string `mapstructure:"model"`
	// APIKey is loaded exclusively from the environment (see loadSecrets).
	APIKey string `mapstructure:"-"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `mapstructure:"timeout"`
}

// PaperSourceConfig holds configuration for one paper source API.
type PaperSourceConfig struct {
	// Enabled controls whether the source participates in searches.
	Enabled bool `mapstructure:"enabled"`
	// BaseURL is the source API base URL.
	BaseURL string `mapstructure:"base_url"`
	// APIKey is loaded exclusively from the environment (see loadSecrets).
	APIKey string `mapstructure:"-"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum sustained requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
}

// PaperSourcesConfig holds all paper source configurations.
type PaperSourcesConfig struct {
	SemanticScholar PaperSourceConfig `mapstructure:"semantic_scholar"`
	ArXiv           PaperSourceConfig `mapstructure:"arxiv"`
	CrossRef        CrossRefConfig    `mapstructure:"crossref"`
}

// CrossRefConfig holds the CrossRef citation index configuration.
type CrossRefConfig struct {
	// Enabled controls whether citation suggestions are available.
	Enabled bool `mapstructure:"enabled"`
	// BaseURL is the API base URL.
	BaseURL string `mapstructure:"base_url"`
	// MailTo is the polite-pool contact address sent on every request.
	MailTo string `mapstructure:"mailto"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum sustained requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
}

// TranslationConfig holds translation provider configuration.
type TranslationConfig struct {
	// Enabled controls whether response localization is available.
	Enabled bool `mapstructure:"enabled"`
	// BaseURL is the translation provider endpoint.
	BaseURL string `mapstructure:"base_url"`
	// APIKey is loaded exclusively from the environment (see loadSecrets).
	APIKey string `mapstructure:"-"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `mapstructure:"timeout"`
	// MaxBatchChars caps the size of one translation batch.
	MaxBatchChars int `mapstructure:"max_batch_chars"`
}

// RankingConfig holds scoring engine tuning parameters.
type RankingConfig struct {
	// SimilarityThreshold flags plagiarism matches at or above this cosine
	// similarity. Must lie in [0.75, 0.80].
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	// MaxRecommendations caps journals returned per request.
	MaxRecommendations int `mapstructure:"max_recommendations"`
	// MaxTopics caps trending topics returned per request.
	MaxTopics int `mapstructure:"max_topics"`
	// CandidateLimit is the per-source candidate fetch size.
	CandidateLimit int `mapstructure:"candidate_limit"`
	// KeywordCount is the number of keywords extracted for queries.
	KeywordCount int `mapstructure:"keyword_count"`
	// ChunkMaxChars is the sentence chunker's target chunk size.
	ChunkMaxChars int `mapstructure:"chunk_max_chars"`
	// ChunkMinChars is the minimum chunk size before merging.
	ChunkMinChars int `mapstructure:"chunk_min_chars"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	params := url.Values{}
	params.Set("sslmode", c.SSLMode)
	if c.ConnectTimeout > 0 {
		params.Set("connect_timeout", fmt.Sprintf("%d", int(c.ConnectTimeout.Seconds())))
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		params.Encode(),
	)
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("ARSP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/ranking-service")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing config file is fine, env vars and defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	loadSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadSecrets populates secret fields exclusively from environment variables.
// These fields are tagged with mapstructure:"-" to keep them out of config
// files.
func loadSecrets(cfg *Config) {
	cfg.Database.Password = os.Getenv("ARSP_DATABASE_PASSWORD")
	cfg.Embedding.APIKey = os.Getenv("ARSP_EMBEDDING_API_KEY")
	cfg.Translation.APIKey = os.Getenv("ARSP_TRANSLATION_API_KEY")
	cfg.PaperSources.SemanticScholar.APIKey = os.Getenv("ARSP_PAPER_SOURCES_SEMANTIC_SCHOLAR_API_KEY")
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "ranking")
	v.SetDefault("database.name", "ranking_service")
	v.SetDefault("database.ssl_mode", SSLModeRequire)
	v.SetDefault("database.max_conns", 25)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")
	v.SetDefault("database.health_check_period", "30s")
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.migration_path", "migrations")
	v.SetDefault("database.migration_auto_run", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "ranking")

	// Embedding defaults
	v.SetDefault("embedding.base_url", "https://api-inference.huggingface.co/models/sentence-transformers/all-mpnet-base-v2")
	v.SetDefault("embedding.model", "sentence-transformers/all-mpnet-base-v2")
	v.SetDefault("embedding.timeout", "60s")

	// Paper sources defaults - Semantic Scholar
	// API keys are loaded exclusively from environment variables (see loadSecrets).
	v.SetDefault("paper_sources.semantic_scholar.enabled", true)
	v.SetDefault("paper_sources.semantic_scholar.base_url", "https://api.semanticscholar.org/graph/v1")
	v.SetDefault("paper_sources.semantic_scholar.timeout", "30s")
	v.SetDefault("paper_sources.semantic_scholar.rate_limit", 1.0)

	// Paper sources defaults - arXiv
	v.SetDefault("paper_sources.arxiv.enabled", true)
	v.SetDefault("paper_sources.arxiv.base_url", "http://export.arxiv.org/api/query")
	v.SetDefault("paper_sources.arxiv.timeout", "30s")
	// arXiv asks for at most one request every three seconds.
	v.SetDefault("paper_sources.arxiv.rate_limit", 0.33)

	// Paper sources defaults - CrossRef
	v.SetDefault("paper_sources.crossref.enabled", true)
	v.SetDefault("paper_sources.crossref.base_url", "https://api.crossref.org")
	v.SetDefault("paper_sources.crossref.mailto", "")
	v.SetDefault("paper_sources.crossref.timeout", "30s")
	v.SetDefault("paper_sources.crossref.rate_limit", 2.0)

	// Translation defaults
	v.SetDefault("translation.enabled", false)
	v.SetDefault("translation.base_url", "")
	v.SetDefault("translation.timeout", "30s")
	v.SetDefault("translation.max_batch_chars", 4500)

	// Ranking defaults
	v.SetDefault("ranking.similarity_threshold", 0.78)
	v.SetDefault("ranking.max_recommendations", 10)
	v.SetDefault("ranking.max_topics", 10)
	v.SetDefault("ranking.candidate_limit", 20)
	v.SetDefault("ranking.keyword_count", 5)
	v.SetDefault("ranking.chunk_max_chars", 500)
	v.SetDefault("ranking.chunk_min_chars", 50)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("max_conns (%d) must be >= min_conns (%d)",
			c.Database.MaxConns, c.Database.MinConns)
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding base_url is required")
	}

	if c.Ranking.SimilarityThreshold < 0.75 || c.Ranking.SimilarityThreshold > 0.80 {
		return fmt.Errorf("similarity_threshold %.2f outside [0.75, 0.80]",
			c.Ranking.SimilarityThreshold)
	}
	if c.Ranking.MaxRecommendations <= 0 {
		return fmt.Errorf("max_recommendations must be positive")
	}
	if c.Ranking.ChunkMaxChars <= 0 {
		return fmt.Errorf("chunk_max_chars must be positive")
	}

	if c.Translation.Enabled && c.Translation.BaseURL == "" {
		return fmt.Errorf("translation base_url is required when translation is enabled")
	}

	return nil
}
