// Package config loads the analyzer's configuration from an optional YAML
// file with environment overrides. A .env file is loaded first when present,
// so local development matches the containerized layout.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	defaultServiceName    = "analyzer"
	defaultServicePort    = 8080
	defaultLogLevel       = "info"
	defaultProbeTimeout   = 10 * time.Second
	defaultProcessTimeout = 15 * time.Second
	defaultStorageDriver  = "memory"
	defaultSQLitePath     = "analyzer.db"
	defaultTranslateRPS   = 5
)

// Config holds all configuration for the analyzer service.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Sidecars SidecarConfig  `yaml:"sidecars"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

// PipelineConfig tunes the analysis pipeline.
type PipelineConfig struct {
	// ProbeTimeout bounds each capability probe.
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	// ProcessTimeout bounds one document when the caller sets no deadline.
	ProcessTimeout time.Duration `yaml:"process_timeout"`
	// LowConfidenceLanguage is the detection confidence threshold below
	// which the record is marked low_confidence_language.
	LowConfidenceLanguage float64 `yaml:"low_confidence_language"`
}

// SidecarConfig holds the base URLs of the optional ML sidecars. An empty URL
// disables that sidecar; the embedded fallback serves the stage instead.
type SidecarConfig struct {
	TranslateURL string `yaml:"translate_url"`
	SentimentURL string `yaml:"sentiment_url"`
	EventURL     string `yaml:"event_url"`
	NERURL       string `yaml:"ner_url"`
	// TranslateRPS rate-limits translation sidecar calls.
	TranslateRPS int `yaml:"translate_rps"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	// Driver is one of memory, sqlite, postgres.
	Driver      string `yaml:"driver"`
	PostgresDSN string `yaml:"postgres_dsn"`
	SQLitePath  string `yaml:"sqlite_path"`
	// ElasticsearchURL enables best-effort search indexing when set.
	ElasticsearchURL string `yaml:"elasticsearch_url"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the config file at path (optional, "" skips it), then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name: defaultServiceName,
			Port: defaultServicePort,
		},
		Pipeline: PipelineConfig{
			ProbeTimeout:   defaultProbeTimeout,
			ProcessTimeout: defaultProcessTimeout,
		},
		Sidecars: SidecarConfig{
			TranslateRPS: defaultTranslateRPS,
		},
		Storage: StorageConfig{
			Driver:     defaultStorageDriver,
			SQLitePath: defaultSQLitePath,
		},
		Logging: LoggingConfig{
			Level:  defaultLogLevel,
			Format: "json",
		},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Service.Name, "ANALYZER_SERVICE_NAME")
	setInt(&cfg.Service.Port, "ANALYZER_PORT")
	setDuration(&cfg.Pipeline.ProbeTimeout, "ANALYZER_PROBE_TIMEOUT")
	setDuration(&cfg.Pipeline.ProcessTimeout, "ANALYZER_PROCESS_TIMEOUT")
	setFloat(&cfg.Pipeline.LowConfidenceLanguage, "ANALYZER_LOW_CONFIDENCE_LANGUAGE")
	setString(&cfg.Sidecars.TranslateURL, "TRANSLATE_SERVICE_URL")
	setString(&cfg.Sidecars.SentimentURL, "SENTIMENT_ML_URL")
	setString(&cfg.Sidecars.EventURL, "EVENT_ML_URL")
	setString(&cfg.Sidecars.NERURL, "NER_ML_URL")
	setInt(&cfg.Sidecars.TranslateRPS, "TRANSLATE_RPS")
	setString(&cfg.Storage.Driver, "STORAGE_DRIVER")
	setString(&cfg.Storage.PostgresDSN, "POSTGRES_DSN")
	setString(&cfg.Storage.SQLitePath, "SQLITE_PATH")
	setString(&cfg.Storage.ElasticsearchURL, "ELASTICSEARCH_URL")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")
}

// Validate checks internal consistency.
func (c *Config) Validate() error {
	if c.Service.Port <= 0 || c.Service.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Service.Port)
	}
	switch c.Storage.Driver {
	case "memory", "sqlite":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("config: storage driver postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Pipeline.LowConfidenceLanguage < 0 || c.Pipeline.LowConfidenceLanguage > 1 {
		return fmt.Errorf("config: low_confidence_language must be in [0,1], got %v", c.Pipeline.LowConfidenceLanguage)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
