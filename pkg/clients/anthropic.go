package clients

import (
	"fmt"

	"github.com/tmc/langchaingo/llms/anthropic"
)

const (
	Claude35Sonnet ModelType = "claude-3-5-sonnet-20241022"
	Claude35Haiku  ModelType = "claude-3-5-haiku-20241022"
	Claude4Sonnet  ModelType = "claude-sonnet-4-20250514"
)

// AnthropicAI creates a Claude model. An empty model selects Claude35Sonnet.
func AnthropicAI(apiKey string, model ModelType) (*anthropic.LLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is not set")
	}
	if model == "" {
		model = Claude35Sonnet
	}

	llm, err := anthropic.New(anthropic.WithToken(apiKey), anthropic.WithModel(string(model)))
	if err != nil {
		return nil, fmt.Errorf("failed to create anthropic client: %w", err)
	}
	return llm, nil
}
