package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/mikeboe/thesis-herald/pkg/app"
	"github.com/mikeboe/thesis-herald/pkg/arxiv"
	"github.com/mikeboe/thesis-herald/pkg/bot"
	"github.com/mikeboe/thesis-herald/pkg/config"
	"github.com/mikeboe/thesis-herald/pkg/server"
)

var version = "dev"

var (
	configPath string
	maxResults int
	categories string
	language   string

	components *app.App
	closeLog   func() error
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "thesisherald",
		Short:         "arXiv paper notifications and research assistant for Discord",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "version", "help", "completion":
				return nil
			}
			// It's okay if .env doesn't exist, as long as env vars are set
			_ = godotenv.Load()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// stdout carries the protocol when serving MCP over stdio.
			var console io.Writer = os.Stdout
			if cmd.Name() == "mcp" {
				console = os.Stderr
			}
			closeLog, err = app.SetupLogging(cfg.Log, console)
			if err != nil {
				return err
			}

			components, err = app.Build(cmd.Context(), cfg)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if components != nil {
				components.Close()
			}
			if closeLog != nil {
				return closeLog()
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")

	rootCmd.AddCommand(
		runCmd(),
		searchCmd(),
		keywordsCmd(),
		paperCmd(),
		askCmd(),
		summarizeCmd(),
		digestCmd(),
		mcpCmd(),
		versionCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the Discord bot and the notification scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Info("Starting ThesisHerald bot...", "version", version)
			return components.RunBot(cmd.Context())
		},
	}
}

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <category>",
		Short: "List recent papers in an arXiv category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			papers, err := components.Arxiv.SearchByCategory(cmd.Context(), []string{args[0]}, bot.CapResults(maxResults))
			if err != nil {
				return err
			}
			if len(papers) == 0 {
				fmt.Printf("No papers found for category '%s'.\n", args[0])
				return nil
			}
			printPapers(fmt.Sprintf("📚 Found %d papers in '%s':", len(papers), args[0]), papers)
			return nil
		},
	}
	cmd.Flags().IntVarP(&maxResults, "max", "n", bot.DefaultMaxResults, "maximum number of results (at most 20)")
	return cmd
}

func keywordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywords <comma separated keywords>",
		Short: "Search papers matching every keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keywords := strings.Join(args, " ")
			papers, err := components.Arxiv.SearchByKeywords(cmd.Context(), arxiv.SplitList(keywords), arxiv.SplitList(categories), bot.CapResults(maxResults))
			if err != nil {
				return err
			}
			if len(papers) == 0 {
				fmt.Printf("No papers found for keywords: %s\n", keywords)
				return nil
			}
			printPapers(fmt.Sprintf("📚 Found %d papers for keywords '%s':", len(papers), keywords), papers)
			return nil
		},
	}
	cmd.Flags().IntVarP(&maxResults, "max", "n", bot.DefaultMaxResults, "maximum number of results (at most 20)")
	cmd.Flags().StringVarP(&categories, "categories", "c", "", "restrict to comma separated categories")
	return cmd
}

func paperCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paper <id or url>",
		Short: "Show a single paper",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paper, err := components.Arxiv.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if paper == nil {
				return fmt.Errorf("paper not found: %s", args[0])
			}
			printMarkdown(bot.FormatPaper(*paper))
			return nil
		},
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a research question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if components.Engine == nil {
				return errLLMDisabled
			}
			printMarkdown(components.Engine.Converse(cmd.Context(), strings.Join(args, " ")))
			return nil
		},
	}
}

func summarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize <id or url>",
		Short: "Summarize a paper",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if components.Engine == nil {
				return errLLMDisabled
			}
			paper, err := components.Arxiv.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if paper == nil {
				return fmt.Errorf("paper not found: %s", args[0])
			}
			printMarkdown(components.Engine.Summarize(cmd.Context(), *paper, language))
			return nil
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "en", "response language")
	return cmd
}

func digestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest <topic>",
		Short: "Write a digest of recent papers on a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if components.Engine == nil {
				return errLLMDisabled
			}
			printMarkdown(components.Engine.Digest(cmd.Context(), strings.Join(args, " "), language))
			return nil
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "en", "response language")
	return cmd
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the research tools over MCP on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := server.NewService(components.Arxiv, components.Web, components.Assistant(), components.History)
			slog.Info("Starting MCP server (stdio transport)")
			return server.NewMCPServer(svc, version).Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

var errLLMDisabled = errors.New("LLM integration is not enabled. Please configure ANTHROPIC_API_KEY")

func printPapers(header string, papers []arxiv.Paper) {
	var sb strings.Builder
	sb.WriteString(header + "\n\n")
	for i, p := range papers {
		fmt.Fprintf(&sb, "**[%d/%d]**\n%s\n---\n\n", i+1, len(papers), bot.FormatPaper(p))
	}
	printMarkdown(sb.String())
}
