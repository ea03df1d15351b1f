package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// handleQueueStats implements the queue_stats tool
func handleQueueStats(client *apiClient, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := client.QueueStats(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("queue_stats failed")
			return textResult(fmt.Sprintf("Error fetching queue stats: %v", err)), nil
		}
		return textResult(formatQueueStats(stats)), nil
	}
}

// handleQueueJobs implements the queue_jobs tool
func handleQueueJobs(client *apiClient, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		queue, err := request.RequireString("queue")
		if err != nil || queue == "" {
			return textResult("Error: queue parameter is required"), nil
		}
		status := request.GetString("status", "")

		jobs, err := client.QueueJobs(ctx, queue, status)
		if err != nil {
			logger.Error().Err(err).Str("queue", queue).Msg("queue_jobs failed")
			return textResult(fmt.Sprintf("Error fetching jobs: %v", err)), nil
		}
		return textResult(formatJobs(queue, status, jobs)), nil
	}
}

// handleQueueHealth implements the queue_health tool
func handleQueueHealth(client *apiClient, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		health, err := client.QueueHealth(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("queue_health failed")
			return textResult(fmt.Sprintf("Error fetching queue health: %v", err)), nil
		}
		return textResult(formatQueueHealth(health)), nil
	}
}

// handleWalletList implements the wallet_list tool
func handleWalletList(client *apiClient, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		wallets, err := client.Wallets(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("wallet_list failed")
			return textResult(fmt.Sprintf("Error fetching wallets: %v", err)), nil
		}
		return textResult(formatWallets(wallets)), nil
	}
}

// handleWalletValue implements the wallet_value tool
func handleWalletValue(client *apiClient, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		walletID, err := request.RequireString("wallet_id")
		if err != nil || walletID == "" {
			return textResult("Error: wallet_id parameter is required"), nil
		}

		value, err := client.WalletValue(ctx, walletID)
		if err != nil {
			logger.Error().Err(err).Str("wallet_id", walletID).Msg("wallet_value failed")
			return textResult(fmt.Sprintf("Error pricing wallet: %v", err)), nil
		}
		return textResult(formatWalletValue(value)), nil
	}
}

// handleLayoutList implements the layout_list tool
func handleLayoutList(client *apiClient, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		layouts, err := client.Layouts(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("layout_list failed")
			return textResult(fmt.Sprintf("Error fetching layouts: %v", err)), nil
		}
		return textResult(formatLayouts(layouts)), nil
	}
}
