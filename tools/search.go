package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/hacktricks-mcp/mcp-server/internal/search"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchInput defines input for search_hacktricks tool
type SearchInput struct {
	Query    string `json:"query" jsonschema:"Search term or regular expression (case-insensitive)"`
	Category string `json:"category,omitempty" jsonschema:"Optional top-level category to search in (e.g. pentesting-web)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of pages to return (optional, defaults to 20, capped at 50)"`
}

// SearchOutput defines output for search_hacktricks tool
type SearchOutput struct {
	Query        string                 `json:"query"`
	Category     string                 `json:"category,omitempty"`
	TotalResults int                    `json:"total_results"`
	Results      []search.GroupedResult `json:"results"`
}

// Search runs a grouped full-text search
func (s *Services) Search(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.Aggregator.SearchGrouped(ctx, input.Query, input.Category, input.Limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	out := SearchOutput{
		Query:        strings.TrimSpace(input.Query),
		Category:     input.Category,
		TotalResults: len(results),
		Results:      results,
	}
	return textResult(FormatSearchResults(out.Query, results)), out, nil
}

// FormatSearchResults renders grouped results as markdown
func FormatSearchResults(query string, results []search.GroupedResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for %q", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d pages matching %q:\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(&b, "\n## %d. %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "File: %s\n", r.File)
		fmt.Fprintf(&b, "Matches: %d\n", r.MatchCount)
		if len(r.RelevantSections) > 0 {
			fmt.Fprintf(&b, "Sections: %s\n", strings.Join(r.RelevantSections, ", "))
		}
		for _, m := range r.TopMatches {
			fmt.Fprintf(&b, "  Line %d: %s\n", m.Line, m.Content)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// RegisterSearchTools registers the search tool with the MCP server
func RegisterSearchTools(server *mcp.Server, s *Services) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "search_hacktricks",
			Description: "Searches the HackTricks pentesting knowledge base. Results are grouped by page and ranked by number of matches; each page lists the sections the matches fall in and the first matching lines. Use a category to narrow the search.",
		},
		instrument(s.Logger, "search_hacktricks", s.Search),
	)
}
