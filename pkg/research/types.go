package research

import (
	"context"
	"encoding/json"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult answers exactly one ToolCall.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Turn is one message of a conversation. Assistant turns carry text
// segments and tool calls, tool turns carry the results of every call
// of the preceding assistant turn.
type Turn struct {
	Role        Role         `json:"role"`
	Text        []string     `json:"text,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// Conversation is the transcript owned by a single Converse call.
type Conversation struct {
	Turns []Turn
}

func (c *Conversation) append(t Turn) {
	c.Turns = append(c.Turns, t)
}

// StopReason tells the loop why the provider stopped generating.
type StopReason int

const (
	StopOther StopReason = iota
	StopToolUse
	StopFinished
)

// Response is one provider completion.
type Response struct {
	Stop      StopReason
	RawStop   string
	Text      []string
	ToolCalls []ToolCall
}

// ToolSpec declares a tool to the provider.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Provider produces the next assistant message for a conversation.
type Provider interface {
	Generate(ctx context.Context, turns []Turn, tools []ToolSpec) (*Response, error)
}
