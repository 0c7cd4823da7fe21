package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/hacktricks-mcp/mcp-server/internal/corpus"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CategoriesInput defines input for list_hacktricks_categories tool
type CategoriesInput struct {
	Category string `json:"category,omitempty" jsonschema:"Optional category to expand into its page tree; omit to list all categories"`
}

// CategoriesOutput defines output for list_hacktricks_categories tool.
// Categories is filled when no category was given, Entries otherwise.
type CategoriesOutput struct {
	Category   string             `json:"category,omitempty"`
	Categories []string           `json:"categories"`
	Entries    []corpus.TreeEntry `json:"entries"`
	Tree       string             `json:"tree,omitempty"`
}

// Categories lists the top-level categories or the page tree of one of them
func (s *Services) Categories(ctx context.Context, req *mcp.CallToolRequest, input CategoriesInput) (*mcp.CallToolResult, CategoriesOutput, error) {
	out, err := s.ListCategories(input.Category)
	if err != nil {
		return nil, CategoriesOutput{}, err
	}
	return textResult(FormatCategories(out)), out, nil
}

// ListCategories builds the categories output without the MCP envelope
func (s *Services) ListCategories(category string) (CategoriesOutput, error) {
	category = strings.TrimSpace(category)
	out := CategoriesOutput{
		Category:   category,
		Categories: []string{},
		Entries:    []corpus.TreeEntry{},
	}

	if category == "" {
		categories, err := s.Corpus.Categories()
		if err != nil {
			return CategoriesOutput{}, err
		}
		if categories != nil {
			out.Categories = categories
		}
		return out, nil
	}

	nodes, err := s.Corpus.CategoryTree(category)
	if err != nil {
		return CategoriesOutput{}, err
	}
	if entries := corpus.Flatten(nodes); entries != nil {
		out.Entries = entries
	}
	out.Tree = corpus.FormatTree(nodes)
	return out, nil
}

// FormatCategories renders a category list or a category tree
func FormatCategories(out CategoriesOutput) string {
	if out.Category != "" {
		if out.Tree == "" {
			return fmt.Sprintf("No pages found in %s", out.Category)
		}
		return fmt.Sprintf("%s/\n%s", out.Category, indent(out.Tree, "  "))
	}

	if len(out.Categories) == 0 {
		return "No categories found"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Available categories (%d):\n", len(out.Categories))
	for _, c := range out.Categories {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	return strings.TrimRight(b.String(), "\n")
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// RegisterCategoryTools registers the category browsing tool with the MCP server
func RegisterCategoryTools(server *mcp.Server, s *Services) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_hacktricks_categories",
			Description: "Lists the HackTricks top-level categories, or the page tree (three levels deep) of one category.",
		},
		instrument(s.Logger, "list_hacktricks_categories", s.Categories),
	)
}
