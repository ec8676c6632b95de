package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath   = "config.yaml"
	defaultTextProvider = ProviderOpenAI
	defaultOpenAIModel  = "text-davinci-002"
	defaultGroqModel    = "llama-3.1-8b-instant"
	defaultImageDir     = "./output/images"
	defaultStoreDriver  = DriverMemory
	defaultGCSPrefix    = "generated"
	defaultServerAddr   = ":8080"
	defaultItemsPerKind = 1
	defaultPromptsPath  = "prompts.yaml"
	defaultSummaryURL   = "https://api.oneai.com/api/v0/pipeline"
)

const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"

	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	OpenAIAPIKey string
	GroqAPIKey   string
	OneAIAPIKey  string
	DatabaseURL  string
	GCSBucket    string
	GCPProject   string

	Text    TextConfig    `yaml:"text"`
	Images  ImagesConfig  `yaml:"images"`
	Summary SummaryConfig `yaml:"summary"`
	Store   StoreConfig   `yaml:"store"`
	GCS     GCSConfig     `yaml:"gcs"`
	Server  ServerConfig  `yaml:"server"`
	Prompts PromptsConfig `yaml:"prompts"`
}

type TextConfig struct {
	Provider string `yaml:"provider"` // "openai" or "groq"
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
}

type ImagesConfig struct {
	Disabled bool   `yaml:"disabled"`
	Dir      string `yaml:"dir"`
}

type SummaryConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type StoreConfig struct {
	Driver string   `yaml:"driver"` // "memory" or "postgres"
	Users  []string `yaml:"users"`
}

type GCSConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

type ServerConfig struct {
	Addr     string        `yaml:"addr"`
	Schedule string        `yaml:"schedule"`
	Request  RequestConfig `yaml:"request"`
}

// RequestConfig is the generation request the scheduler replays.
type RequestConfig struct {
	Method             string `yaml:"method"`
	CompanyName        string `yaml:"company_name"`
	CompanyDescription string `yaml:"company_description"`
	SourceURL          string `yaml:"source_url"`
	ItemsPerKind       int    `yaml:"items_per_kind"`
}

type PromptsConfig struct {
	Path string `yaml:"path"`
}

func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		GroqAPIKey:   os.Getenv("GROQ_API_KEY"),
		OneAIAPIKey:  os.Getenv("ONEAI_API_KEY"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		GCSBucket:    os.Getenv("GCS_BUCKET"),
		GCPProject:   os.Getenv("GOOGLE_CLOUD_PROJECT"),
	}

	if err := loadYAMLConfig(cfg); err != nil {
		return nil, err
	}
	loadSecrets(ctx, cfg)
	applyDefaults(cfg)

	return cfg, nil
}

func loadYAMLConfig(cfg *Config) error {
	data, err := os.ReadFile(defaultConfigPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", defaultConfigPath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", defaultConfigPath, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	applyTextDefaults(cfg)
	applyImagesDefaults(cfg)
	if cfg.Summary.Endpoint == "" {
		cfg.Summary.Endpoint = defaultSummaryURL
	}
	applyStoreDefaults(cfg)
	if cfg.GCS.Prefix == "" {
		cfg.GCS.Prefix = defaultGCSPrefix
	}
	applyServerDefaults(cfg)
	if cfg.Prompts.Path == "" {
		cfg.Prompts.Path = defaultPromptsPath
	}
}

func applyTextDefaults(cfg *Config) {
	if cfg.Text.Provider == "" {
		cfg.Text.Provider = defaultTextProvider
	}
	if cfg.Text.Model == "" {
		switch cfg.Text.Provider {
		case ProviderGroq:
			cfg.Text.Model = defaultGroqModel
		default:
			cfg.Text.Model = defaultOpenAIModel
		}
	}
}

func applyImagesDefaults(cfg *Config) {
	if cfg.Images.Dir == "" {
		cfg.Images.Dir = defaultImageDir
	}
}

func applyStoreDefaults(cfg *Config) {
	if cfg.Store.Driver == "" {
		if cfg.DatabaseURL != "" {
			cfg.Store.Driver = DriverPostgres
		} else {
			cfg.Store.Driver = defaultStoreDriver
		}
	}
}

func applyServerDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = getEnvOrDefault("PORT", "")
		if cfg.Server.Addr != "" {
			cfg.Server.Addr = ":" + cfg.Server.Addr
		} else {
			cfg.Server.Addr = defaultServerAddr
		}
	}
	if cfg.Server.Request.ItemsPerKind == 0 {
		cfg.Server.Request.ItemsPerKind = defaultItemsPerKind
	}
}

// TextAPIKey returns the key of the configured text provider.
func (c *Config) TextAPIKey() string {
	if c.Text.Provider == ProviderGroq {
		return c.GroqAPIKey
	}
	return c.OpenAIAPIKey
}

// UseGCS reports whether images go to a bucket instead of the local disk.
func (c *Config) UseGCS() bool {
	return c.GCS.Enabled && c.GCSBucket != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
