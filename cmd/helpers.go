package cmd

import (
	"context"
	"fmt"
	"os"

	chromem "github.com/philippgille/chromem-go"

	"github.com/SpikeIreland/clarence-engine/internal/catalog"
	"github.com/SpikeIreland/clarence-engine/internal/config"
	"github.com/SpikeIreland/clarence-engine/internal/embeddings"
	"github.com/SpikeIreland/clarence-engine/internal/mediation"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `clarence init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createAssistantFromConfig creates the recommendation assistant, or
// nil when the provider is "none".
func createAssistantFromConfig(cfg *config.Config) (mediation.Assistant, error) {
	if cfg.Assistant.Provider == config.AssistantNone {
		return nil, nil
	}
	envVar := config.APIKeyEnvVar(cfg.Assistant.Provider)
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable is required for the %s assistant", envVar, cfg.Assistant.Provider)
	}
	return mediation.NewOpenAIAssistant(apiKey, cfg.Assistant.Model), nil
}

// createSearchFromConfig builds the clause catalogue search index, or
// nil when search is disabled.
func createSearchFromConfig(ctx context.Context, cfg *config.Config, cat *catalog.Catalog) (*catalog.Search, error) {
	if !cfg.Search.Enabled {
		return nil, nil
	}
	apiKey := os.Getenv(config.APIKeyEnvVar(config.AssistantOpenAI))
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for clause search")
	}
	var embed chromem.EmbeddingFunc = embeddings.OpenAIFunc(apiKey, cfg.Search.EmbeddingModel)
	return catalog.NewSearch(ctx, cat, embed)
}
