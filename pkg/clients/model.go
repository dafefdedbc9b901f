package clients

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderGoogleAI  = "googleai"
)

// NewModel creates the chat model for the named provider.
func NewModel(ctx context.Context, provider, apiKey, model string) (llms.Model, error) {
	switch provider {
	case ProviderAnthropic, "":
		llm, err := AnthropicAI(apiKey, ModelType(model))
		if err != nil {
			return nil, err
		}
		return llm, nil
	case ProviderGoogleAI:
		llm, err := GoogleAi(ctx, apiKey, ModelType(model))
		if err != nil {
			return nil, err
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", provider)
	}
}
