package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/hacktricks-mcp/mcp-server/internal/lookup"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// LookupInput defines input for hacktricks_quick_lookup tool
type LookupInput struct {
	Topic    string `json:"topic" jsonschema:"Attack, technique or service to look up (e.g. sqli, kerberoasting, redis)"`
	Category string `json:"category,omitempty" jsonschema:"Optional top-level category to look in"`
}

// QuickLookup finds the best page for a topic with its exploitation sections and code
func (s *Services) QuickLookup(ctx context.Context, req *mcp.CallToolRequest, input LookupInput) (*mcp.CallToolResult, lookup.Result, error) {
	result, err := s.Resolver.Lookup(ctx, input.Topic, input.Category)
	if err != nil {
		return nil, lookup.Result{}, err
	}
	return textResult(FormatLookup(result)), *result, nil
}

// FormatLookup renders a lookup result as markdown
func FormatLookup(r *lookup.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", r.Title)
	fmt.Fprintf(&b, "Page: %s\n", r.Page)
	if r.MatchedTerm != r.Topic {
		fmt.Fprintf(&b, "Matched term: %s\n", r.MatchedTerm)
	}
	fmt.Fprintf(&b, "\n## Exploitation\n\n%s\n", r.Sections)
	fmt.Fprintf(&b, "\n## Code examples\n\n%s\n", r.CodeBlocks)
	if len(r.Related) > 0 {
		b.WriteString("\n## Related pages\n\n")
		for _, p := range r.Related {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// RegisterLookupTools registers the quick lookup tool with the MCP server
func RegisterLookupTools(server *mcp.Server, s *Services) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "hacktricks_quick_lookup",
			Description: "One-shot answer for 'how do I exploit X': expands common abbreviations (sqli, xss, ssrf, ...), picks the single best HackTricks page and returns its exploitation sections and up to five code examples.",
		},
		instrument(s.Logger, "hacktricks_quick_lookup", s.QuickLookup),
	)
}
