package research

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	resp     *llms.ContentResponse
	err      error
	messages []llms.MessageContent
	options  llms.CallOptions
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, opt := range options {
		opt(&m.options)
	}
	return m.resp, m.err
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestLLMProviderToolUse(t *testing.T) {
	model := &fakeModel{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{
		{Content: "Let me look that up.", StopReason: "tool_use"},
		{StopReason: "tool_use", ToolCalls: []llms.ToolCall{{
			ID:           "toolu_1",
			Type:         "function",
			FunctionCall: &llms.FunctionCall{Name: "repository_search", Arguments: `{"query":"rlhf"}`},
		}}},
	}}}
	p := NewLLMProvider(model, 4096)

	resp, err := p.Generate(context.Background(), []Turn{{Role: RoleUser, Text: []string{"rlhf papers?"}}}, NewToolset(webFunc(nil), nil).Specs())
	require.NoError(t, err)

	assert.Equal(t, StopToolUse, resp.Stop)
	assert.Equal(t, []string{"Let me look that up."}, resp.Text)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "toolu_1", resp.ToolCalls[0].ID)
	assert.JSONEq(t, `{"query":"rlhf"}`, string(resp.ToolCalls[0].Arguments))

	assert.Equal(t, 4096, model.options.MaxTokens)
	require.Len(t, model.options.Tools, 2)
	assert.Equal(t, "web_search", model.options.Tools[0].Function.Name)
}

func TestLLMProviderMessages(t *testing.T) {
	model := &fakeModel{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "ok", StopReason: "end_turn"}}}}
	p := NewLLMProvider(model, 0)

	turns := []Turn{
		{Role: RoleUser, Text: []string{"question"}},
		{Role: RoleAssistant, Text: []string{"thinking"}, ToolCalls: []ToolCall{
			{ID: "a", Name: "web_search", Arguments: json.RawMessage(`{"query":"x"}`)},
			{ID: "b", Name: "web_search"},
		}},
		{Role: RoleTool, ToolResults: []ToolResult{
			{CallID: "a", Name: "web_search", Content: "result a"},
			{CallID: "b", Name: "web_search", Content: "result b"},
		}},
	}

	resp, err := p.Generate(context.Background(), turns, nil)
	require.NoError(t, err)
	assert.Equal(t, StopFinished, resp.Stop)
	assert.Empty(t, model.options.Tools)

	require.Len(t, model.messages, 6)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, model.messages[1].Role)
	assert.Equal(t, llms.TextContent{Text: "thinking"}, model.messages[1].Parts[0])

	call, ok := model.messages[3].Parts[0].(llms.ToolCall)
	require.True(t, ok)
	assert.Equal(t, "b", call.ID)
	assert.Equal(t, "{}", call.FunctionCall.Arguments)

	result, ok := model.messages[5].Parts[0].(llms.ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, llms.ChatMessageTypeTool, model.messages[5].Role)
	assert.Equal(t, "b", result.ToolCallID)
	assert.Equal(t, "result b", result.Content)
}

func TestLLMProviderNoChoices(t *testing.T) {
	p := NewLLMProvider(&fakeModel{resp: &llms.ContentResponse{}}, 0)

	_, err := p.Generate(context.Background(), []Turn{{Role: RoleUser, Text: []string{"hi"}}}, nil)
	assert.Error(t, err)
}

func TestClassifyStop(t *testing.T) {
	tests := []struct {
		raw       string
		toolCalls bool
		want      StopReason
	}{
		{raw: "tool_use", want: StopToolUse},
		{raw: "tool_calls", want: StopToolUse},
		{raw: "end_turn", want: StopFinished},
		{raw: "stop", want: StopFinished},
		{raw: "FinishReasonStop", want: StopFinished},
		{raw: "FinishReasonStop", toolCalls: true, want: StopToolUse},
		{raw: "", toolCalls: true, want: StopToolUse},
		{raw: "max_tokens", want: StopOther},
		{raw: "", want: StopOther},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyStop(tt.raw, tt.toolCalls))
		})
	}
}
