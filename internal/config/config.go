package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultPath is where the engine looks for configuration unless told
// otherwise.
const DefaultPath = ".clarence.yml"

// DefaultConfig returns a Config with sensible defaults: a local
// SQLite store, no outbound webhook, and the assistant disabled.
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		DataDir:        "data",
		PackGlobs:      []string{"packs/**/*.yml", "packs/**/*.yaml"},
		AllowedOrigins: []string{"*"},
		Assistant: AssistantConfig{
			Provider: AssistantNone,
			Model:    "gpt-4o-mini",
		},
		Search: SearchConfig{
			Enabled:        false,
			EmbeddingModel: "text-embedding-3-small",
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (CLARENCE_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: CLARENCE_PORT -> port, etc.
	if err := k.Load(env.Provider("CLARENCE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "CLARENCE_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validAssistants is the set of recognized assistant provider values.
var validAssistants = map[AssistantProvider]bool{
	AssistantNone:   true,
	AssistantOpenAI: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Assistant.Provider == "" {
		c.Assistant.Provider = AssistantNone
	}
	if !validAssistants[c.Assistant.Provider] {
		return fmt.Errorf("invalid assistant provider %q: must be one of none, openai", c.Assistant.Provider)
	}
	if c.Assistant.Provider != AssistantNone && c.Assistant.Model == "" {
		return fmt.Errorf("assistant model is required when a provider is set")
	}

	if c.Search.Enabled && c.Search.EmbeddingModel == "" {
		return fmt.Errorf("search embedding_model is required when search is enabled")
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given assistant provider.
func APIKeyEnvVar(provider AssistantProvider) string {
	switch provider {
	case AssistantOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
