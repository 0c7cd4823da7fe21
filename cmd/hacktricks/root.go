package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/hacktricks-mcp/mcp-server/internal/config"
	"github.com/hacktricks-mcp/mcp-server/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

const version = "0.3.0"

// OutputFormat selects how command results are printed
type OutputFormat string

const (
	FormatJSON     OutputFormat = "json"
	FormatHuman    OutputFormat = "human"
	FormatMarkdown OutputFormat = "markdown"
)

const wordWrap = 100

// rootOptions holds the persistent flags shared by every subcommand
type rootOptions struct {
	configFile string
	corpus     string
	rgPath     string
	logLevel   string
	format     string

	// services overrides production collaborators in tests
	services tools.ServiceOptions
}

func newRootCmd(svcOpts tools.ServiceOptions) *cobra.Command {
	opts := &rootOptions{services: svcOpts}

	root := &cobra.Command{
		Use:   "hacktricks",
		Short: "Query a local HackTricks checkout",
		Long: `hacktricks searches and reads a local clone of the HackTricks pentesting
knowledge base. It runs the same operations the MCP server exposes, from the shell.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("hacktricks version {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Config file (YAML, JSON or TOML)")
	flags.StringVar(&opts.corpus, "corpus", "", "Corpus root, the src directory of a HackTricks clone")
	flags.StringVar(&opts.rgPath, "rg", "", "ripgrep binary")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.format, "format", string(FormatHuman), "Output format (human, json, markdown)")

	root.AddCommand(
		newSearchCmd(opts),
		newPageCmd(opts),
		newOutlineCmd(opts),
		newSectionCmd(opts),
		newCheatsheetCmd(opts),
		newCategoriesCmd(opts),
		newLookupCmd(opts),
		newDoctorCmd(opts),
		newVersionCmd(),
	)
	return root
}

// load reads the configuration, with changed flags taking precedence,
// and wires the shared services
func (o *rootOptions) load(cmd *cobra.Command) (*tools.Services, error) {
	overrides := map[string]any{}
	if cmd.Flags().Changed("corpus") {
		overrides["corpus.root"] = o.corpus
	}
	if cmd.Flags().Changed("rg") {
		overrides["search.rg_path"] = o.rgPath
	}
	if cmd.Flags().Changed("log-level") {
		overrides["log.level"] = o.logLevel
	}

	cfg, err := config.Load(config.Options{File: o.configFile, Overrides: overrides})
	if err != nil {
		return nil, err
	}
	logger := config.NewLogger(cmd.ErrOrStderr(), cfg.Log.Level)
	return tools.NewServices(cfg, logger, o.services)
}

// run calls a tool handler outside of an MCP session and prints its result
func run[In, Out any](cmd *cobra.Command, o *rootOptions, handler func(*tools.Services) mcp.ToolHandlerFor[In, Out], input In) error {
	format := OutputFormat(o.format)
	switch format {
	case FormatJSON, FormatHuman, FormatMarkdown:
	default:
		return fmt.Errorf("unsupported format: %s", o.format)
	}

	s, err := o.load(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, out, err := handler(s)(ctx, nil, input)
	if err != nil {
		return err
	}

	if format == FormatJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	for _, c := range res.Content {
		text, ok := c.(*mcp.TextContent)
		if !ok {
			continue
		}
		if format == FormatHuman {
			fmt.Fprintln(cmd.OutOrStdout(), text.Text)
			continue
		}
		rendered, err := renderMarkdown(text.Text)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
	}
	return nil
}

// renderMarkdown styles markdown for the terminal
func renderMarkdown(text string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(text)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
