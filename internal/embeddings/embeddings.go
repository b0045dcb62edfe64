// Package embeddings provides the embedding function backing clause
// catalogue search.
package embeddings

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIFunc returns a chromem embedding function backed by the
// OpenAI embeddings API, embedding one text per call the way
// chromem-go expects.
func OpenAIFunc(apiKey, model string) chromem.EmbeddingFunc {
	client := openai.NewClient(apiKey)
	return func(ctx context.Context, text string) ([]float32, error) {
		resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(model),
		})
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		if len(resp.Data) != 1 {
			return nil, fmt.Errorf("expected 1 embedding, got %d", len(resp.Data))
		}
		return resp.Data[0].Embedding, nil
	}
}
