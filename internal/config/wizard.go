package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .clarence.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to CLARENCE! Let's configure the engine.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Listen port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP listen port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 2. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory (SQLite store)",
		Default: cfg.DataDir,
	}
	if cfg.DataDir, err = dataPrompt.Run(); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 3. Clause pack locations.
	packsPrompt := promptui.Prompt{
		Label:   "Clause pack globs (comma-separated)",
		Default: strings.Join(cfg.PackGlobs, ","),
	}
	packsStr, err := packsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("pack globs: %w", err)
	}
	cfg.PackGlobs = splitAndTrim(packsStr)

	// 4. Outbound webhook.
	webhookPrompt := promptui.Prompt{
		Label:   "Outbound webhook URL (blank to disable)",
		Default: "",
	}
	if cfg.WebhookURL, err = webhookPrompt.Run(); err != nil {
		return nil, fmt.Errorf("webhook url: %w", err)
	}

	// 5. Assistant provider.
	assistantPrompt := promptui.Select{
		Label: "Recommendation assistant",
		Items: []string{
			"none   - deterministic rule templates only",
			"openai - polish recommendation prose with an LLM",
		},
	}
	idx, _, err := assistantPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("assistant selection: %w", err)
	}
	if idx == 1 {
		cfg.Assistant.Provider = AssistantOpenAI
		modelPrompt := promptui.Prompt{
			Label:   "Assistant model",
			Default: cfg.Assistant.Model,
		}
		if cfg.Assistant.Model, err = modelPrompt.Run(); err != nil {
			return nil, fmt.Errorf("assistant model: %w", err)
		}
		if envVar := APIKeyEnvVar(cfg.Assistant.Provider); os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: set %s in your environment before starting the server.\n", envVar)
		}
	}

	if err := cfg.Save(DefaultPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
