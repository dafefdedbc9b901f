package research

import (
	"context"
	"log/slog"
	"strings"
)

// DefaultMaxIterations bounds the number of provider calls per question.
const DefaultMaxIterations = 5

// Engine answers free form questions by letting the model call tools.
type Engine struct {
	Provider      Provider
	Tools         *Toolset
	Papers        PaperSearcher
	MaxIterations int
	Logger        *slog.Logger
}

func NewEngine(provider Provider, toolset *Toolset, papers PaperSearcher) *Engine {
	return &Engine{
		Provider:      provider,
		Tools:         toolset,
		Papers:        papers,
		MaxIterations: DefaultMaxIterations,
		Logger:        slog.Default(),
	}
}

// Converse runs the tool loop for query and always returns text for the
// user. Failures are rendered with RenderError.
func (e *Engine) Converse(ctx context.Context, query string) string {
	answer, conv, err := e.run(ctx, query)
	if err != nil {
		e.Logger.Error("conversational search failed", "error", err, "turns", len(conv.Turns))
		return RenderError(err)
	}
	return answer
}

func (e *Engine) run(ctx context.Context, query string) (string, *Conversation, error) {
	conv := &Conversation{}
	conv.append(Turn{Role: RoleUser, Text: []string{query}})

	maxIterations := e.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	for iteration := 1; iteration <= maxIterations; iteration++ {
		e.Logger.Debug("calling provider", "iteration", iteration, "max", maxIterations)

		resp, err := e.Provider.Generate(ctx, conv.Turns, e.Tools.Specs())
		if err != nil {
			return "", conv, &ProviderError{Err: err}
		}

		switch {
		case resp.Stop == StopToolUse && len(resp.ToolCalls) > 0:
			conv.append(Turn{Role: RoleAssistant, Text: resp.Text, ToolCalls: resp.ToolCalls})
			for _, call := range resp.ToolCalls {
				e.Logger.Info("model requested tool", "tool", call.Name, "iteration", iteration)
			}
			results := e.Tools.ExecuteAll(ctx, resp.ToolCalls)
			conv.append(Turn{Role: RoleTool, ToolResults: results})

		case resp.Stop == StopFinished:
			conv.append(Turn{Role: RoleAssistant, Text: resp.Text})
			return strings.Join(resp.Text, "\n"), conv, nil

		default:
			e.Logger.Warn("unexpected stop reason", "reason", resp.RawStop)
			return "", conv, &UnexpectedStopError{Reason: resp.RawStop}
		}
	}

	return "", conv, ErrMaxIterations
}

// complete sends a single prompt without tools and joins the text segments.
func (e *Engine) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := e.Provider.Generate(ctx, []Turn{{Role: RoleUser, Text: []string{prompt}}}, nil)
	if err != nil {
		return "", err
	}
	return strings.Join(resp.Text, "\n"), nil
}
