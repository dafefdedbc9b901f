package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mikeboe/thesis-herald/pkg/research/tools"
)

// ToolName identifies one of the tools offered to the model.
type ToolName string

const (
	ToolWebSearch        ToolName = "web_search"
	ToolRepositorySearch ToolName = "repository_search"
)

// WebSearcher answers free text web queries.
type WebSearcher interface {
	Search(ctx context.Context, query string) string
}

type toolHandler func(ctx context.Context, args json.RawMessage) (string, error)

// Toolset is the closed registry of tools the loop can execute.
type Toolset struct {
	specs    []ToolSpec
	handlers map[ToolName]toolHandler
	Logger   *slog.Logger
}

func NewToolset(web WebSearcher, repo tools.KeywordSearcher) *Toolset {
	t := &Toolset{Logger: slog.Default()}

	t.specs = []ToolSpec{
		{
			Name:        string(ToolWebSearch),
			Description: "Search the web for general information, definitions, or current events. Use this for questions that are not about specific research papers.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The search query",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        string(ToolRepositorySearch),
			Description: "Search arXiv for academic papers. Use comma separated keywords in the query. Optionally restrict the search to arXiv categories such as cs.AI or cs.LG.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Comma separated search keywords",
					},
					"categories": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Optional arXiv categories",
					},
					"max_results": map[string]any{
						"type":        "integer",
						"description": "Maximum number of papers to return",
						"default":     tools.DefaultRepositoryResults,
					},
				},
				"required": []string{"query"},
			},
		},
	}

	t.handlers = map[ToolName]toolHandler{
		ToolWebSearch: func(ctx context.Context, raw json.RawMessage) (string, error) {
			var args tools.WebSearchArgs
			if err := decodeArgs(raw, &args); err != nil {
				return "", err
			}
			if args.Query == "" {
				return "", errors.New("query is required")
			}
			return web.Search(ctx, args.Query), nil
		},
		ToolRepositorySearch: func(ctx context.Context, raw json.RawMessage) (string, error) {
			var args tools.RepositorySearchArgs
			if err := decodeArgs(raw, &args); err != nil {
				return "", err
			}
			if args.Query == "" {
				return "", errors.New("query is required")
			}
			return tools.SearchRepository(ctx, repo, args), nil
		},
	}
	return t
}

// Specs returns the tool declarations sent with every provider request.
func (t *Toolset) Specs() []ToolSpec {
	return t.specs
}

// Execute runs one call. Every outcome, including an unknown tool name,
// is reported as the result content.
func (t *Toolset) Execute(ctx context.Context, call ToolCall) ToolResult {
	result := ToolResult{CallID: call.ID, Name: call.Name}

	content, err := t.dispatch(ctx, call)
	switch {
	case errors.Is(err, ErrUnknownTool):
		t.Logger.Warn("model requested unknown tool", "tool", call.Name)
		result.Content = fmt.Sprintf("Unknown tool: %s", call.Name)
	case err != nil:
		t.Logger.Warn("tool execution failed", "tool", call.Name, "error", err)
		result.Content = fmt.Sprintf("Error executing %s: %v", call.Name, err)
	default:
		result.Content = content
	}
	return result
}

// ExecuteAll runs calls concurrently and returns results in call order.
func (t *Toolset) ExecuteAll(ctx context.Context, calls []ToolCall) []ToolResult {
	results := make([]ToolResult, len(calls))
	var wg sync.WaitGroup

	for i, call := range calls {
		wg.Add(1)
		go func(i int, call ToolCall) {
			defer wg.Done()
			results[i] = t.Execute(ctx, call)
		}(i, call)
	}
	wg.Wait()

	return results
}

func (t *Toolset) dispatch(ctx context.Context, call ToolCall) (content string, err error) {
	handler, ok := t.handlers[ToolName(call.Name)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, call.Name)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panicked: %v", r)
		}
	}()

	t.Logger.Info("executing tool", "tool", call.Name, "args", string(call.Arguments))
	return handler(ctx, call.Arguments)
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
