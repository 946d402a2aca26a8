package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/nobelidx/internal/domain/award"
	"github.com/kailas-cloud/nobelidx/internal/domain/layout"
	"github.com/kailas-cloud/nobelidx/internal/domain/retry"
)

// Embedding providers.
const (
	ProviderCharCode = "charcode"
	ProviderOpenAI   = "openai"
)

// DefaultSourceURL is the public prize feed.
const DefaultSourceURL = "https://api.nobelprize.org/v1/prize.json"

// Config holds the nobelidx configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Source    SourceConfig    `yaml:"source"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Query     QueryConfig     `yaml:"query"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds RPC authentication settings. No keys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds RPC server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds key layout settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// SourceConfig holds the award feed settings.
type SourceConfig struct {
	URL        string `yaml:"url"`
	File       string `yaml:"file"` // local feed copy, takes precedence over url
	TimeoutSec int    `yaml:"timeout_sec"`
	FromYear   int    `yaml:"from_year"`
	ToYear     int    `yaml:"to_year"`
}

// IngestConfig holds ingestion settings.
type IngestConfig struct {
	Layouts             []string `yaml:"layouts"`
	Workers             int      `yaml:"workers"`
	WriteMaxRetries     *int     `yaml:"write_max_retries"` // nil = default; 0 disables retries
	WriteInitialDelayMs int      `yaml:"write_initial_delay_ms"`
	WriteBackoffFactor  float64  `yaml:"write_backoff_factor"`
}

// QueryConfig holds query bounds.
type QueryConfig struct {
	MaxResults      int `yaml:"max_results"`
	SimilarDefaultK int `yaml:"similar_default_k"`
	SimilarMaxK     int `yaml:"similar_max_k"`
}

// EmbeddingConfig selects the name embedder.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // charcode (default) | openai
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
	Cache      bool   `yaml:"cache"` // store remote embeddings, keyed by model and text
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "nobel:"
	}

	if c.Source.URL == "" {
		c.Source.URL = DefaultSourceURL
	}
	if c.Source.TimeoutSec <= 0 {
		c.Source.TimeoutSec = 30
	}
	if c.Source.FromYear == 0 {
		c.Source.FromYear = award.MinYear
	}
	if c.Source.ToYear == 0 {
		c.Source.ToYear = award.MaxYear
	}

	def := retry.Default()
	if len(c.Ingest.Layouts) == 0 {
		for _, l := range layout.All() {
			c.Ingest.Layouts = append(c.Ingest.Layouts, string(l))
		}
	}
	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = 4
	}
	if c.Ingest.WriteMaxRetries == nil {
		n := def.MaxRetries
		c.Ingest.WriteMaxRetries = &n
	}
	if c.Ingest.WriteInitialDelayMs <= 0 {
		c.Ingest.WriteInitialDelayMs = int(def.InitialDelay / time.Millisecond)
	}
	if c.Ingest.WriteBackoffFactor <= 0 {
		c.Ingest.WriteBackoffFactor = def.BackoffFactor
	}

	if c.Query.MaxResults <= 0 {
		c.Query.MaxResults = 1000
	}
	if c.Query.SimilarDefaultK <= 0 {
		c.Query.SimilarDefaultK = 5
	}
	if c.Query.SimilarMaxK <= 0 {
		c.Query.SimilarMaxK = 50
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderCharCode
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return errors.New("database.addrs is required")
	}
	for i, a := range c.Database.Addrs {
		if strings.TrimSpace(a) == "" {
			return fmt.Errorf("database.addrs[%d] is empty", i)
		}
	}
	if !award.InCorpus(c.Source.FromYear) || !award.InCorpus(c.Source.ToYear) {
		return fmt.Errorf("source.from_year and source.to_year must lie within %d-%d, got %d-%d",
			award.MinYear, award.MaxYear, c.Source.FromYear, c.Source.ToYear)
	}
	if c.Source.FromYear > c.Source.ToYear {
		return fmt.Errorf("source.from_year %d is after source.to_year %d", c.Source.FromYear, c.Source.ToYear)
	}
	if _, err := layout.ParseList(c.Ingest.Layouts); err != nil {
		return fmt.Errorf("ingest.layouts: %w", err)
	}
	if c.Ingest.WriteMaxRetries != nil && *c.Ingest.WriteMaxRetries < 0 {
		return fmt.Errorf("ingest.write_max_retries must not be negative, got %d", *c.Ingest.WriteMaxRetries)
	}
	if c.Ingest.WriteBackoffFactor < 1 {
		return fmt.Errorf("ingest.write_backoff_factor must be at least 1, got %g", c.Ingest.WriteBackoffFactor)
	}
	if c.Query.SimilarDefaultK > c.Query.SimilarMaxK {
		return fmt.Errorf("query.similar_default_k %d exceeds query.similar_max_k %d",
			c.Query.SimilarDefaultK, c.Query.SimilarMaxK)
	}
	switch c.Embedding.Provider {
	case ProviderCharCode:
	case ProviderOpenAI:
		if c.Embedding.Model == "" {
			return errors.New("embedding.model is required for the openai provider")
		}
	default:
		return fmt.Errorf("embedding.provider must be %q or %q, got %q",
			ProviderCharCode, ProviderOpenAI, c.Embedding.Provider)
	}
	return nil
}

// RetryPolicy returns the configured write retry policy.
func (c IngestConfig) RetryPolicy() retry.Policy {
	p := retry.Policy{
		InitialDelay:  time.Duration(c.WriteInitialDelayMs) * time.Millisecond,
		BackoffFactor: c.WriteBackoffFactor,
	}
	if c.WriteMaxRetries != nil {
		p.MaxRetries = *c.WriteMaxRetries
	}
	return p
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
