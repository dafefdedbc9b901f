package clients

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/googleai"
)

// ModelType names a provider model.
type ModelType string

const (
	GeminiFlash ModelType = "gemini-2.0-flash"
	GeminiPro   ModelType = "gemini-2.5-pro"
)

// GoogleAi creates a Gemini model. An empty model selects GeminiFlash.
func GoogleAi(ctx context.Context, apiKey string, model ModelType) (*googleai.GoogleAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google API key is not set")
	}
	if model == "" {
		model = GeminiFlash
	}

	// See https://ai.google.dev/gemini-api/docs/models/gemini for possible models
	llm, err := googleai.New(ctx, googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(string(model)))
	if err != nil {
		return nil, fmt.Errorf("failed to create google ai client: %w", err)
	}
	return llm, nil
}
