package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/hacktricks-mcp/mcp-server/internal/markdown"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	guideURIPrefix = "hacktricks://guides/"
	aliasesURI     = "hacktricks://aliases"
)

// Guide is an embedded usage guide served as an MCP resource
type Guide struct {
	URI     string
	Name    string
	Title   string
	Content string
}

// LoadGuides reads every markdown guide from the data provider, sorted by name
func LoadGuides(data DataProvider) ([]Guide, error) {
	entries, err := data.ReadDir(guidesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list guides: %w", err)
	}

	var guides []Guide
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		content, err := data.ReadFile(path.Join(guidesDir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read guide %s: %w", e.Name(), err)
		}
		name := strings.TrimSuffix(e.Name(), ".md")
		guides = append(guides, Guide{
			URI:     guideURIPrefix + name,
			Name:    name,
			Title:   markdown.ExtractTitle(string(content)),
			Content: string(content),
		})
	}

	sort.Slice(guides, func(i, j int) bool { return guides[i].Name < guides[j].Name })
	return guides, nil
}

// RegisterResources registers the usage guides and the alias table as MCP
// resources. It returns the number of resources registered.
func RegisterResources(server *mcp.Server, s *Services) (int, error) {
	guides, err := LoadGuides(s.Data)
	if err != nil {
		return 0, err
	}

	for _, g := range guides {
		server.AddResource(
			&mcp.Resource{
				URI:         g.URI,
				Name:        g.Name,
				Title:       g.Title,
				Description: "Guide: " + g.Title,
				MIMEType:    "text/markdown",
			},
			staticResource(g.URI, "text/markdown", g.Content),
		)
	}

	aliases, err := json.MarshalIndent(s.Aliases, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to encode aliases: %w", err)
	}
	server.AddResource(
		&mcp.Resource{
			URI:         aliasesURI,
			Name:        "aliases",
			Description: "Topic abbreviations expanded by hacktricks_quick_lookup",
			MIMEType:    "application/json",
		},
		staticResource(aliasesURI, "application/json", string(aliases)),
	)

	return len(guides) + 1, nil
}

func staticResource(uri, mimeType, text string) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: uri, MIMEType: mimeType, Text: text},
			},
		}, nil
	}
}
