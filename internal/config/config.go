// Package config loads settings from finance.yaml, FINANCE_* environment
// variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dvloznov/household-finance/internal/aggregate"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/dvloznov/household-finance/internal/extract"
)

const (
	BackendSQLite   = "sqlite"
	BackendBigQuery = "bigquery"

	envPrefix  = "FINANCE"
	configName = "finance"
)

type Config struct {
	Household  HouseholdConfig  `mapstructure:"household"`
	Storage    StorageConfig    `mapstructure:"storage"`
	GCS        GCSConfig        `mapstructure:"gcs"`
	AI         AIConfig         `mapstructure:"ai"`
	Categories CategoriesConfig `mapstructure:"categories"`
	Recurring  RecurringConfig  `mapstructure:"recurring"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Notion     NotionConfig     `mapstructure:"notion"`
	Jobs       JobsConfig       `mapstructure:"jobs"`
}

type HouseholdConfig struct {
	ID     string `mapstructure:"id"`
	Member string `mapstructure:"member"`
}

type StorageConfig struct {
	Backend  string         `mapstructure:"backend"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	BigQuery BigQueryConfig `mapstructure:"bigquery"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type BigQueryConfig struct {
	Project string `mapstructure:"project"`
	Dataset string `mapstructure:"dataset"`
}

type GCSConfig struct {
	Bucket string `mapstructure:"bucket"`
}

type AIConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	Model        string        `mapstructure:"model"`
	ReceiptModel string        `mapstructure:"receipt_model"`
	AdvisorModel string        `mapstructure:"advisor_model"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type CategoriesConfig struct {
	RulesFile string `mapstructure:"rules_file"`
}

type RecurringConfig struct {
	Keywords []string `mapstructure:"keywords"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type NotionConfig struct {
	Token      string `mapstructure:"token"`
	DatabaseID string `mapstructure:"database_id"`
}

type JobsConfig struct {
	Workers int `mapstructure:"workers"`
	Buffer  int `mapstructure:"buffer"`
	// MaxRetries is how many times a failed import is re-queued.
	MaxRetries int `mapstructure:"max_retries"`
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// DefaultMember parses household.member.
func (h HouseholdConfig) DefaultMember() (domain.Member, error) {
	return domain.ParseMember(h.Member)
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("household.id", "default")
	v.SetDefault("household.member", string(domain.MemberJoint))

	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.sqlite.path", filepath.Join(home, ".local", "share", "finance", "finance.db"))
	v.SetDefault("storage.bigquery.project", "")
	v.SetDefault("storage.bigquery.dataset", "finance")

	v.SetDefault("gcs.bucket", "")

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", extract.DefaultStatementModel)
	v.SetDefault("ai.receipt_model", extract.DefaultReceiptModel)
	v.SetDefault("ai.advisor_model", extract.DefaultStatementModel)
	v.SetDefault("ai.timeout", extract.DefaultTimeout)

	v.SetDefault("categories.rules_file", "")
	v.SetDefault("recurring.keywords", aggregate.DefaultSubscriptionKeywords)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 2*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("notion.token", "")
	v.SetDefault("notion.database_id", "")

	v.SetDefault("jobs.workers", 5)
	v.SetDefault("jobs.buffer", 100)
	v.SetDefault("jobs.max_retries", 0)
}

// Load reads configuration. An empty path searches ./finance.yaml and
// $HOME/.config/finance/finance.yaml; a missing file is fine, defaults apply.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("Load: .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "finance"))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("ai.api_key", "FINANCE_AI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("notion.token", "FINANCE_NOTION_TOKEN", "NOTION_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("Load: read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("Load: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Household.ID) == "" {
		return fmt.Errorf("Validate: household.id is required")
	}
	if _, err := c.Household.DefaultMember(); err != nil {
		return fmt.Errorf("Validate: household.member: %w", err)
	}

	switch c.Storage.Backend {
	case BackendSQLite:
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("Validate: storage.sqlite.path is required")
		}
	case BackendBigQuery:
		if c.Storage.BigQuery.Project == "" || c.Storage.BigQuery.Dataset == "" {
			return fmt.Errorf("Validate: storage.bigquery.project and storage.bigquery.dataset are required")
		}
	default:
		return fmt.Errorf("Validate: unknown storage.backend %q", c.Storage.Backend)
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("Validate: ai.timeout must be positive")
	}
	if c.Jobs.Workers <= 0 {
		return fmt.Errorf("Validate: jobs.workers must be positive")
	}
	if c.Jobs.MaxRetries < 0 {
		return fmt.Errorf("Validate: jobs.max_retries must not be negative")
	}
	return nil
}
