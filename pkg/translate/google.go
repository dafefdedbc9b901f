package translate

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no translation model is configured.
const DefaultModel = "gemini-2.0-flash"

// Translator renders text in another language.
type Translator interface {
	Translate(ctx context.Context, text, language string) (string, error)
}

// GoogleTranslator translates with a Gemini model.
type GoogleTranslator struct {
	client *genai.Client
	model  string
}

// NewGoogleTranslator creates a Gemini API backed translator
func NewGoogleTranslator(ctx context.Context, model, apiKey string) (*GoogleTranslator, error) {
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini API client: %w", err)
	}

	return &GoogleTranslator{
		client: client,
		model:  model,
	}, nil
}

// Translate returns text translated into language.
func (t *GoogleTranslator) Translate(ctx context.Context, text, language string) (string, error) {
	resp, err := t.client.Models.GenerateContent(ctx, t.model, []*genai.Content{
		{Parts: []*genai.Part{{Text: Prompt(text, language)}}},
	}, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to translate text: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty translation returned")
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("empty translation returned")
	}
	return out, nil
}

const systemInstruction = "You translate scientific abstracts. Reply with the translation only, keep technical terms and formulas intact."

// Prompt builds the translation request for text.
func Prompt(text, language string) string {
	return fmt.Sprintf("Translate the following abstract %s:\n\n%s", languageName(language), text)
}

var languageNames = map[string]string{
	"en": "into English",
	"ja": "into Japanese",
	"zh": "into Chinese",
	"ko": "into Korean",
	"es": "into Spanish",
	"fr": "into French",
	"de": "into German",
}

func languageName(language string) string {
	if s, ok := languageNames[strings.ToLower(language)]; ok {
		return s
	}
	return "into " + language
}
