package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/hacktricks-mcp/mcp-server/internal/docerr"
	"github.com/hacktricks-mcp/mcp-server/internal/markdown"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const noCodeBlocks = "No code blocks found"

// PageInput defines input for the tools that read a single page
type PageInput struct {
	Path string `json:"path" jsonschema:"Page path relative to the corpus root (e.g. pentesting-web/sql-injection/README.md)"`
}

// PageOutput defines output for get_hacktricks_page tool
type PageOutput struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Lines   int    `json:"lines"`
	Content string `json:"content"`
}

// OutlineOutput defines output for get_hacktricks_outline tool
type OutlineOutput struct {
	Path    string            `json:"path"`
	Title   string            `json:"title"`
	Headers []markdown.Header `json:"headers"`
	Outline string            `json:"outline"`
}

// SectionInput defines input for get_hacktricks_section tool
type SectionInput struct {
	Path    string `json:"path" jsonschema:"Page path relative to the corpus root"`
	Section string `json:"section" jsonschema:"Header text to look for (case-insensitive, partial match)"`
}

// SectionOutput defines output for get_hacktricks_section tool
type SectionOutput struct {
	Path    string `json:"path"`
	Section string `json:"section"`
	Content string `json:"content"`
}

// CheatsheetOutput defines output for get_hacktricks_cheatsheet tool
type CheatsheetOutput struct {
	Path       string               `json:"path"`
	Title      string               `json:"title"`
	Count      int                  `json:"count"`
	CodeBlocks []markdown.CodeBlock `json:"code_blocks"`
}

// Page returns the full text of a page
func (s *Services) Page(ctx context.Context, req *mcp.CallToolRequest, input PageInput) (*mcp.CallToolResult, PageOutput, error) {
	text, err := s.Corpus.ReadPage(input.Path)
	if err != nil {
		return nil, PageOutput{}, err
	}

	out := PageOutput{
		Path:    strings.TrimSpace(input.Path),
		Title:   markdown.ExtractTitle(text),
		Lines:   markdown.LineCount(text),
		Content: text,
	}
	return textResult(text), out, nil
}

// Outline returns the header tree of a page
func (s *Services) Outline(ctx context.Context, req *mcp.CallToolRequest, input PageInput) (*mcp.CallToolResult, OutlineOutput, error) {
	text, err := s.Corpus.ReadPage(input.Path)
	if err != nil {
		return nil, OutlineOutput{}, err
	}

	headers := markdown.ExtractHeaders(text)
	if headers == nil {
		headers = []markdown.Header{}
	}
	out := OutlineOutput{
		Path:    strings.TrimSpace(input.Path),
		Title:   markdown.ExtractTitle(text),
		Headers: headers,
		Outline: markdown.FormatOutline(headers),
	}
	return textResult(FormatOutline(out)), out, nil
}

// FormatOutline renders an outline with its page heading
func FormatOutline(out OutlineOutput) string {
	if len(out.Headers) == 0 {
		return fmt.Sprintf("No headers found in %s", out.Path)
	}
	return fmt.Sprintf("Outline of %s (%s):\n\n%s", out.Title, out.Path, out.Outline)
}

// Section returns one section of a page, chosen by header text
func (s *Services) Section(ctx context.Context, req *mcp.CallToolRequest, input SectionInput) (*mcp.CallToolResult, SectionOutput, error) {
	name := strings.TrimSpace(input.Section)
	if name == "" {
		return nil, SectionOutput{}, docerr.New(docerr.EmptyInput, "section name must not be empty")
	}

	text, err := s.Corpus.ReadPage(input.Path)
	if err != nil {
		return nil, SectionOutput{}, err
	}

	section, ok := markdown.ExtractSection(text, name)
	if !ok {
		return nil, SectionOutput{}, docerr.Newf(docerr.NotFound, "section %q not found in %s", name, input.Path).WithPath(input.Path)
	}

	out := SectionOutput{
		Path:    strings.TrimSpace(input.Path),
		Section: name,
		Content: section,
	}
	return textResult(section), out, nil
}

// Cheatsheet returns every code block of a page
func (s *Services) Cheatsheet(ctx context.Context, req *mcp.CallToolRequest, input PageInput) (*mcp.CallToolResult, CheatsheetOutput, error) {
	text, err := s.Corpus.ReadPage(input.Path)
	if err != nil {
		return nil, CheatsheetOutput{}, err
	}

	blocks := markdown.ExtractCodeBlocks(text)
	out := CheatsheetOutput{
		Path:       strings.TrimSpace(input.Path),
		Title:      markdown.ExtractTitle(text),
		Count:      len(blocks),
		CodeBlocks: blocks,
	}
	return textResult(FormatCheatsheet(out)), out, nil
}

// FormatCheatsheet renders the code blocks of a page, or a notice when there are none
func FormatCheatsheet(out CheatsheetOutput) string {
	if len(out.CodeBlocks) == 0 {
		return noCodeBlocks
	}
	return fmt.Sprintf("# %s: %d code blocks\n\n%s", out.Title, out.Count, markdown.FormatCodeBlocks(out.CodeBlocks, 0))
}

// RegisterPageTools registers the page reading tools with the MCP server
func RegisterPageTools(server *mcp.Server, s *Services) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_hacktricks_page",
			Description: "Returns the full markdown of a HackTricks page. Prefer get_hacktricks_outline and get_hacktricks_section for long pages.",
		},
		instrument(s.Logger, "get_hacktricks_page", s.Page),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_hacktricks_outline",
			Description: "Returns the headers of a HackTricks page as an indented outline, to find the section worth reading.",
		},
		instrument(s.Logger, "get_hacktricks_outline", s.Outline),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_hacktricks_section",
			Description: "Returns one section of a HackTricks page: the first header containing the given text, up to the next header of the same or a higher level.",
		},
		instrument(s.Logger, "get_hacktricks_section", s.Section),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_hacktricks_cheatsheet",
			Description: "Returns only the code blocks (commands, payloads, scripts) of a HackTricks page.",
		},
		instrument(s.Logger, "get_hacktricks_cheatsheet", s.Cheatsheet),
	)
}
