package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/hacktricks-mcp/mcp-server/internal/runtime"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerInfo names the running server in status output
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// StatusInput defines input for get_server_status tool
type StatusInput struct{}

// StatusOutput defines output for get_server_status tool
type StatusOutput struct {
	Server  ServerInfo           `json:"server"`
	Runtime *runtime.RuntimeInfo `json:"runtime"`
}

// Status reports whether ripgrep and the corpus are available
func (s *Services) Status(info ServerInfo) mcp.ToolHandlerFor[StatusInput, StatusOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
		out := StatusOutput{
			Server:  info,
			Runtime: s.Prober.Detect(s.Config.Search.RgPath, s.Corpus),
		}
		return textResult(FormatStatus(out)), out, nil
	}
}

// FormatStatus renders runtime detection results
func FormatStatus(out StatusOutput) string {
	env := out.Runtime.Environment

	var b strings.Builder
	fmt.Fprintf(&b, "%s v%s: %s\n", out.Server.Name, out.Server.Version, out.Runtime.Status)
	fmt.Fprintf(&b, "Corpus: %s", env.CorpusRoot)
	if env.CorpusExists {
		fmt.Fprintf(&b, " (%d categories)\n", env.CategoryCount)
	} else {
		b.WriteString(" (missing)\n")
	}
	if env.HasRipgrep {
		fmt.Fprintf(&b, "ripgrep: %s %s\n", env.RipgrepPath, env.RipgrepVersion)
	} else {
		b.WriteString("ripgrep: not found\n")
	}
	for _, r := range out.Runtime.Recommendations {
		fmt.Fprintf(&b, "%d. %s\n", r.Priority, r.Reason)
		if r.Command != "" {
			fmt.Fprintf(&b, "   %s\n", r.Command)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// RegisterRuntimeTools registers runtime-related tools with the MCP server
func RegisterRuntimeTools(server *mcp.Server, s *Services, info ServerInfo) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_server_status",
			Description: "Reports the corpus location, the number of categories and whether ripgrep is available, with steps to fix anything missing. Call it when searches fail unexpectedly.",
		},
		instrument(s.Logger, "get_server_status", s.Status(info)),
	)
}
