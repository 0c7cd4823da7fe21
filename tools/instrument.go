package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hacktricks-mcp/mcp-server/internal/docerr"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// instrument logs every call of a tool handler with a request id and its duration
func instrument[In, Out any](logger *slog.Logger, tool string, h mcp.ToolHandlerFor[In, Out]) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		requestID := uuid.NewString()
		start := time.Now()

		res, out, err := h(ctx, req, in)

		elapsed := time.Since(start).Round(time.Millisecond)
		if err != nil {
			logger.Warn("tool call failed",
				"tool", tool,
				"request_id", requestID,
				"duration", elapsed,
				"kind", string(docerr.KindOf(err)),
				"error", err)
			return res, out, err
		}
		logger.Info("tool call",
			"tool", tool,
			"request_id", requestID,
			"duration", elapsed)
		return res, out, nil
	}
}

// textResult wraps a text rendering; the typed output becomes the structured content
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
