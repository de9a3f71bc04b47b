package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultUserAgent identifies the crawler in HTTP requests and against
// robots.txt rules.
const DefaultUserAgent = "MiddagsflytBot"

// Config is the application configuration, loaded from a YAML file.
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Crawler  CrawlerConfig  `yaml:"crawler"`
	Database DatabaseConfig `yaml:"database"`
}

// LLMConfig configures the text-extraction service client. The API key is
// read from the environment variable named by APIKeyEnv so keys stay out of
// config files.
type LLMConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	APIKeyEnv      string `yaml:"api_key_env"`
	APIKey         string `yaml:"-"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type CrawlerConfig struct {
	UserAgent      string `yaml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (c CrawlerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoadConfig reads and validates the configuration file, applying defaults
// for anything left unset.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if cfg.LLM.BaseURL == "" {
		return nil, fmt.Errorf("llm.base_url is required")
	}
	cfg.LLM.APIKey = os.Getenv(cfg.LLM.APIKeyEnv)

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LLM.Model == "" {
		c.LLM.Model = "gemini-2.0-flash"
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = "MIDDAGSFLYT_LLM_API_KEY"
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = 120
	}
	if c.Crawler.UserAgent == "" {
		c.Crawler.UserAgent = DefaultUserAgent
	}
	if c.Crawler.TimeoutSeconds <= 0 {
		c.Crawler.TimeoutSeconds = 30
	}
	if c.Database.Path == "" {
		c.Database.Path = "middagsflyt.db"
	}
}
