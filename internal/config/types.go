package config

// Config represents the main agent configuration.
type Config struct {
	LLM     LLMConfig     `toml:"llm"`
	Data    DataConfig    `toml:"data"`
	Logging LoggingConfig `toml:"logging"`
}

// LLMConfig selects and configures the hosted model provider.
type LLMConfig struct {
	Provider  string          `toml:"provider"` // openai, anthropic
	OpenAI    OpenAIConfig    `toml:"openai"`
	Anthropic AnthropicConfig `toml:"anthropic"`
}

// OpenAIConfig configures the OpenAI-compatible provider.
type OpenAIConfig struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// AnthropicConfig configures the Anthropic provider.
type AnthropicConfig struct {
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	MaxTokens int    `toml:"max_tokens"`
}

// DataConfig locates the catalog seed files and database.
type DataConfig struct {
	Dir string `toml:"dir"` // holds orders.json, products.json, catalog.db
}

// LoggingConfig configures structured logging output.
type LoggingConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
	File  string `toml:"file"`  // empty logs to stderr
}
