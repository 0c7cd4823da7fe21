package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hacktricks-mcp/mcp-server/internal/config"
	"github.com/hacktricks-mcp/mcp-server/internal/runtime"
	"github.com/hacktricks-mcp/mcp-server/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	version     = "0.3.0"
	serverName  = "hacktricks-mcp-server"
	description = "MCP server for searching the HackTricks pentesting knowledge base"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("%s version %s\n", serverName, version)
		os.Exit(0)
	}

	cfg, err := config.Load(config.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serverName, err)
		os.Exit(1)
	}

	// Logs go to stderr, stdout carries the protocol
	logger := config.NewLogger(os.Stderr, cfg.Log.Level)
	slog.SetDefault(logger)
	logger.Info("starting", "server", serverName, "version", version, "corpus", cfg.Corpus.Root)

	services, err := tools.NewServices(cfg, logger, tools.ServiceOptions{})
	if err != nil {
		fatal(logger, "failed to initialize services", err)
	}

	server := createMCPServer(logger)

	if err := registerTools(server, services, logger); err != nil {
		fatal(logger, "failed to register tools", err)
	}
	if err := registerResources(server, services, logger); err != nil {
		fatal(logger, "failed to register resources", err)
	}

	info := services.Prober.Detect(cfg.Search.RgPath, services.Corpus)
	if info.Status != runtime.StatusReady {
		for _, r := range info.Recommendations {
			logger.Warn(r.Reason, "command", r.Command)
		}
	}

	logger.Info("✓ Server ready and waiting for connections", "status", info.Status)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Run server with stdio transport
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		fatal(logger, "server error", err)
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}

// createMCPServer initializes the MCP server
func createMCPServer(logger *slog.Logger) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version,
		},
		&mcp.ServerOptions{
			Instructions: description + ". Start with hacktricks_quick_lookup for a known technique, search_hacktricks otherwise.",
		},
	)

	logger.Info("server initialized", "server", serverName, "version", version)
	return server
}

// registerTools registers all MCP tools
func registerTools(server *mcp.Server, s *tools.Services, logger *slog.Logger) error {
	toolCount := 0

	// Search (1 tool)
	tools.RegisterSearchTools(server, s)
	toolCount++

	// Page reading: page, outline, section, cheatsheet (4 tools)
	tools.RegisterPageTools(server, s)
	toolCount += 4

	// Category browsing (1 tool)
	tools.RegisterCategoryTools(server, s)
	toolCount++

	// Quick lookup (1 tool)
	tools.RegisterLookupTools(server, s)
	toolCount++

	// Runtime status (1 tool)
	tools.RegisterRuntimeTools(server, s, tools.ServerInfo{Name: serverName, Version: version})
	toolCount++

	logger.Info(fmt.Sprintf("✓ All tools registered: %d tools", toolCount))
	return nil
}

// registerResources registers the bundled guides and the alias table
func registerResources(server *mcp.Server, s *tools.Services, logger *slog.Logger) error {
	count, err := tools.RegisterResources(server, s)
	if err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("✓ Resources registered: %d", count))
	return nil
}
