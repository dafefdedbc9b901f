package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// LLMProvider adapts a langchaingo model to the Provider interface.
type LLMProvider struct {
	Model     llms.Model
	MaxTokens int
}

func NewLLMProvider(model llms.Model, maxTokens int) *LLMProvider {
	return &LLMProvider{Model: model, MaxTokens: maxTokens}
}

func (p *LLMProvider) Generate(ctx context.Context, turns []Turn, specs []ToolSpec) (*Response, error) {
	opts := []llms.CallOption{}
	if p.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(p.MaxTokens))
	}
	if len(specs) > 0 {
		opts = append(opts, llms.WithTools(toLLMTools(specs)))
	}

	resp, err := p.Model.GenerateContent(ctx, toMessages(turns), opts...)
	if err != nil {
		return nil, fmt.Errorf("llm generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm returned no choices")
	}
	return fromChoices(resp.Choices), nil
}

func toLLMTools(specs []ToolSpec) []llms.Tool {
	out := make([]llms.Tool, len(specs))
	for i, s := range specs {
		out[i] = llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        s.Name,
				Description: s.Description,
				Parameters:  s.Parameters,
			},
		}
	}
	return out
}

// toMessages emits one part per message for assistant and tool turns;
// some langchaingo backends only read the first part of a message.
func toMessages(turns []Turn) []llms.MessageContent {
	var messages []llms.MessageContent
	for _, turn := range turns {
		switch turn.Role {
		case RoleUser:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, turn.Text...))

		case RoleAssistant:
			for _, text := range turn.Text {
				if text == "" {
					continue
				}
				messages = append(messages, llms.MessageContent{
					Role:  llms.ChatMessageTypeAI,
					Parts: []llms.ContentPart{llms.TextContent{Text: text}},
				})
			}
			for _, call := range turn.ToolCalls {
				args := string(call.Arguments)
				if strings.TrimSpace(args) == "" {
					args = "{}"
				}
				messages = append(messages, llms.MessageContent{
					Role: llms.ChatMessageTypeAI,
					Parts: []llms.ContentPart{llms.ToolCall{
						ID:   call.ID,
						Type: "function",
						FunctionCall: &llms.FunctionCall{
							Name:      call.Name,
							Arguments: args,
						},
					}},
				})
			}

		case RoleTool:
			for _, result := range turn.ToolResults {
				messages = append(messages, llms.MessageContent{
					Role: llms.ChatMessageTypeTool,
					Parts: []llms.ContentPart{llms.ToolCallResponse{
						ToolCallID: result.CallID,
						Name:       result.Name,
						Content:    result.Content,
					}},
				})
			}
		}
	}
	return messages
}

func fromChoices(choices []*llms.ContentChoice) *Response {
	resp := &Response{}
	for _, choice := range choices {
		if choice == nil {
			continue
		}
		if choice.Content != "" {
			resp.Text = append(resp.Text, choice.Content)
		}
		for _, tc := range choice.ToolCalls {
			if tc.FunctionCall == nil {
				continue
			}
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{
				ID:        tc.ID,
				Name:      tc.FunctionCall.Name,
				Arguments: json.RawMessage(tc.FunctionCall.Arguments),
			})
		}
		if resp.RawStop == "" {
			resp.RawStop = choice.StopReason
		}
	}
	resp.Stop = classifyStop(resp.RawStop, len(resp.ToolCalls) > 0)
	return resp
}

// classifyStop normalizes provider specific stop reasons. Anthropic
// reports tool_use and end_turn, OpenAI style backends tool_calls and
// stop, Gemini STOP for both cases.
func classifyStop(raw string, hasToolCalls bool) StopReason {
	reason := strings.ToLower(raw)
	switch reason {
	case "tool_use", "tool_calls", "function_call":
		return StopToolUse
	}
	if hasToolCalls {
		switch reason {
		case "", "stop", "finishreasonstop", "end_turn":
			return StopToolUse
		}
	}
	switch reason {
	case "end_turn", "stop", "stop_sequence", "finishreasonstop":
		return StopFinished
	}
	return StopOther
}
