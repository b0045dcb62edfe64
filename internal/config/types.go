package config

import "path/filepath"

// AssistantProvider identifies the LLM provider used to polish
// mediation recommendation prose. "none" keeps recommendations on the
// deterministic rule templates.
type AssistantProvider string

const (
	AssistantNone   AssistantProvider = "none"
	AssistantOpenAI AssistantProvider = "openai"
)

// Config is the top-level engine configuration, corresponding to
// .clarence.yml.
type Config struct {
	Port           int             `yaml:"port" koanf:"port"`
	DataDir        string          `yaml:"data_dir" koanf:"data_dir"`
	PackGlobs      []string        `yaml:"pack_globs" koanf:"pack_globs"`
	WebhookURL     string          `yaml:"webhook_url" koanf:"webhook_url"`
	AllowedOrigins []string        `yaml:"allowed_origins" koanf:"allowed_origins"`
	Assistant      AssistantConfig `yaml:"assistant" koanf:"assistant"`
	Search         SearchConfig    `yaml:"search" koanf:"search"`
}

// AssistantConfig holds the optional LLM assistant settings.
type AssistantConfig struct {
	Provider AssistantProvider `yaml:"provider" koanf:"provider"`
	Model    string            `yaml:"model" koanf:"model"`
	BaseURL  string            `yaml:"base_url" koanf:"base_url"`
}

// SearchConfig controls semantic search over the clause catalogue.
type SearchConfig struct {
	Enabled        bool   `yaml:"enabled" koanf:"enabled"`
	EmbeddingModel string `yaml:"embedding_model" koanf:"embedding_model"`
}

// DBPath is the SQLite file inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "clarence.db")
}
