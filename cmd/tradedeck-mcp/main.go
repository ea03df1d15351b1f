package main

import (
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/tradedeck/internal/common"
)

func main() {
	// The MCP server is a thin client over the dashboard's REST API so it
	// never competes with the running server for the Badger lock
	serverURL := os.Getenv("TRADEDECK_SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	// Minimal logging to avoid cluttering MCP stdio
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	client := newAPIClient(serverURL)

	mcpServer := server.NewMCPServer(
		"tradedeck",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	// Queue monitor tools
	mcpServer.AddTool(createQueueStatsTool(), handleQueueStats(client, logger))
	mcpServer.AddTool(createQueueJobsTool(), handleQueueJobs(client, logger))
	mcpServer.AddTool(createQueueHealthTool(), handleQueueHealth(client, logger))

	// Portfolio tools
	mcpServer.AddTool(createWalletListTool(), handleWalletList(client, logger))
	mcpServer.AddTool(createWalletValueTool(), handleWalletValue(client, logger))

	// Layout tools
	mcpServer.AddTool(createLayoutListTool(), handleLayoutList(client, logger))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
