package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mikeboe/thesis-herald/pkg/research/tools"
)

type TextOutput struct {
	Text string `json:"text"`
}

type GetPaperInput struct {
	ID string `json:"id" jsonschema:"arXiv ID or abs/pdf URL"`
}

type PaperOutput struct {
	Found      bool     `json:"found"`
	ID         string   `json:"id,omitempty"`
	Title      string   `json:"title,omitempty"`
	Authors    []string `json:"authors,omitempty"`
	Published  string   `json:"published,omitempty"`
	PDFURL     string   `json:"pdf_url,omitempty"`
	Abstract   string   `json:"abstract,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

type AskInput struct {
	Question string `json:"question" jsonschema:"Question about research papers or topics"`
}

// NewMCPServer exposes the research tools over the Model Context Protocol.
func NewMCPServer(s *Service, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "thesisherald",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "repository_search",
		Description: "Search arXiv for academic papers by comma separated keywords, optionally within categories",
	}, s.repositorySearchTool)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "web_search",
		Description: "Search the web for general information, definitions, or current events",
	}, s.webSearchTool)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_paper",
		Description: "Look up a single arXiv paper by ID or URL",
	}, s.getPaperTool)

	if s.Assistant != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a research question, searching arXiv and the web as needed",
		}, s.askTool)
	}

	return server
}

// NewMCPHandler serves server over streamable HTTP.
func NewMCPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

func (s *Service) repositorySearchTool(ctx context.Context, req *mcp.CallToolRequest, args tools.RepositorySearchArgs) (*mcp.CallToolResult, TextOutput, error) {
	return nil, TextOutput{Text: tools.SearchRepository(ctx, s.Papers, args)}, nil
}

func (s *Service) webSearchTool(ctx context.Context, req *mcp.CallToolRequest, args tools.WebSearchArgs) (*mcp.CallToolResult, TextOutput, error) {
	if args.Query == "" {
		return nil, TextOutput{}, errors.New("query is required")
	}
	return nil, TextOutput{Text: s.Web.Search(ctx, args.Query)}, nil
}

func (s *Service) getPaperTool(ctx context.Context, req *mcp.CallToolRequest, in GetPaperInput) (*mcp.CallToolResult, PaperOutput, error) {
	paper, err := s.GetPaper(ctx, in.ID)
	if errors.Is(err, ErrPaperNotFound) {
		return nil, PaperOutput{Found: false}, nil
	}
	if err != nil {
		return nil, PaperOutput{}, err
	}
	return nil, PaperOutput{
		Found:      true,
		ID:         paper.ID,
		Title:      paper.Title,
		Authors:    paper.Authors,
		Published:  paper.PublishedDate(),
		PDFURL:     paper.PDFURL,
		Abstract:   paper.Abstract,
		Categories: paper.Categories,
	}, nil
}

func (s *Service) askTool(ctx context.Context, req *mcp.CallToolRequest, in AskInput) (*mcp.CallToolResult, TextOutput, error) {
	ex, err := s.Ask(ctx, AskRequest{Question: in.Question, UserID: "mcp"})
	if err != nil {
		return nil, TextOutput{}, err
	}
	return nil, TextOutput{Text: ex.Response}, nil
}
