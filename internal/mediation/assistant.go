package mediation

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/SpikeIreland/clarence-engine/internal/negotiation"
)

// Assistant rewrites the templated suggestion text in a mediator's
// voice. It is an external collaborator behind the recommend contract:
// only the prose is delegated, never the structured compromise value,
// so a misbehaving assistant cannot change what is suggested, only how
// it reads.
type Assistant interface {
	Polish(ctx context.Context, it negotiation.Item, draft Result) (string, error)
}

// OpenAIAssistant implements Assistant over the Chat Completions API.
type OpenAIAssistant struct {
	client *openai.Client
	model  string
}

// NewOpenAIAssistant creates an assistant with the given API key and model.
func NewOpenAIAssistant(apiKey, model string) *OpenAIAssistant {
	return &OpenAIAssistant{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

const assistantSystemPrompt = `You are CLARENCE, a contract negotiation mediator.
Rewrite the draft suggestion in a neutral, constructive tone, two or three
sentences, keeping every number, option name and priority exactly as given.
Do not add new terms or change the proposed compromise.`

func (a *OpenAIAssistant) Polish(ctx context.Context, it negotiation.Item, draft Result) (string, error) {
	prompt := fmt.Sprintf(
		"Item: %s\nCustomer position: %s (priority %d)\nProvider position: %s (priority %d)\nProposed compromise: %s\nDraft suggestion: %s",
		it.DisplayName,
		it.CustomerPosition, it.CustomerPriority,
		it.ProviderPosition, it.ProviderPriority,
		draft.SuggestedCompromise, draft.Text)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: assistantSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   300,
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("assistant completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("assistant returned no content")
	}
	return resp.Choices[0].Message.Content, nil
}
