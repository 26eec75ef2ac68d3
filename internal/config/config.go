// Package config handles agent configuration loading and management.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	apperrors "github.com/sierra-outfitters/sierra-agent/internal/errors"
)

// Providers the agent knows how to talk to.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: ProviderOpenAI,
			OpenAI: OpenAIConfig{
				BaseURL:        "https://api.openai.com/v1",
				Model:          "gpt-4o-mini",
				TimeoutSeconds: 30,
			},
			Anthropic: AnthropicConfig{
				Model:     "claude-sonnet-4-5",
				MaxTokens: 1024,
			},
		},
		Data: DataConfig{
			Dir: "data",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads the configuration from the given path, merging over
// defaults. A missing file is not an error; environment variables
// override file values either way.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, apperrors.Wrap(err, apperrors.CodeConfigNotFound, "reading config file", apperrors.CategoryUser)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfigInvalid, "parsing config file", apperrors.CategoryUser)
	}

	cfg.applyEnv()
	expandPaths(cfg)

	return cfg, nil
}

// Save writes the configuration to the given path.
func (c *Config) Save(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	return encoder.Encode(c)
}

// applyEnv lets environment variables override file values, matching
// how the agent was originally configured in deployment.
func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.LLM.OpenAI.BaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.LLM.OpenAI.Model = v
	}
	if v := os.Getenv("OPENAI_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.LLM.OpenAI.TimeoutSeconds = secs
		}
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.LLM.Anthropic.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_MODEL"); v != "" {
		c.LLM.Anthropic.Model = v
	}
	if v := os.Getenv("SIERRA_DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("SIERRA_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks that the configuration can actually run the agent.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.OpenAI.APIKey == "" {
			return apperrors.User(apperrors.CodeConfigInvalid,
				"no OpenAI API key configured: set OPENAI_API_KEY or llm.openai.api_key")
		}
		if c.LLM.OpenAI.TimeoutSeconds <= 0 {
			return apperrors.User(apperrors.CodeConfigInvalid, "llm.openai.timeout_seconds must be positive")
		}
	case ProviderAnthropic:
		if c.LLM.Anthropic.APIKey == "" {
			return apperrors.User(apperrors.CodeConfigInvalid,
				"no Anthropic API key configured: set ANTHROPIC_API_KEY or llm.anthropic.api_key")
		}
		if c.LLM.Anthropic.MaxTokens <= 0 {
			return apperrors.User(apperrors.CodeConfigInvalid, "llm.anthropic.max_tokens must be positive")
		}
	default:
		return apperrors.User(apperrors.CodeConfigInvalid,
			"unknown llm.provider "+strconv.Quote(c.LLM.Provider)+": expected openai or anthropic")
	}

	if c.Data.Dir == "" {
		return apperrors.User(apperrors.CodeConfigInvalid, "data.dir must not be empty")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return apperrors.User(apperrors.CodeConfigInvalid,
			"unknown logging.level "+strconv.Quote(c.Logging.Level))
	}

	return nil
}

// OrdersPath returns the path of the orders seed file.
func (c *Config) OrdersPath() string {
	return filepath.Join(c.Data.Dir, "orders.json")
}

// ProductsPath returns the path of the products seed file.
func (c *Config) ProductsPath() string {
	return filepath.Join(c.Data.Dir, "products.json")
}

// CatalogDBPath returns the path of the catalog database.
func (c *Config) CatalogDBPath() string {
	return filepath.Join(c.Data.Dir, "catalog.db")
}

// expandPaths expands a leading ~ in configured paths.
func expandPaths(cfg *Config) {
	if strings.HasPrefix(cfg.Data.Dir, "~") {
		homeDir, _ := os.UserHomeDir()
		cfg.Data.Dir = filepath.Join(homeDir, cfg.Data.Dir[1:])
	}
	if strings.HasPrefix(cfg.Logging.File, "~") {
		homeDir, _ := os.UserHomeDir()
		cfg.Logging.File = filepath.Join(homeDir, cfg.Logging.File[1:])
	}
}
