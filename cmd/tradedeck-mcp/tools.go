package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createQueueStatsTool returns the queue_stats tool definition
func createQueueStatsTool() mcp.Tool {
	return mcp.NewTool("queue_stats",
		mcp.WithDescription("Get current per-queue job counters (waiting, active, completed, failed, delayed, paused) from the trading pipeline"),
	)
}

// createQueueJobsTool returns the queue_jobs tool definition
func createQueueJobsTool() mcp.Tool {
	return mcp.NewTool("queue_jobs",
		mcp.WithDescription("List jobs in one queue, filtered by state"),
		mcp.WithString("queue",
			mcp.Required(),
			mcp.Description("Queue name (e.g. orders, signals)"),
		),
		mcp.WithString("status",
			mcp.Description("Job state: waiting, active, completed, failed, delayed, paused"),
		),
	)
}

// createQueueHealthTool returns the queue_health tool definition
func createQueueHealthTool() mcp.Tool {
	return mcp.NewTool("queue_health",
		mcp.WithDescription("Get the health classification (Healthy, Warning, At Risk) of every queue"),
	)
}

// createWalletListTool returns the wallet_list tool definition
func createWalletListTool() mcp.Tool {
	return mcp.NewTool("wallet_list",
		mcp.WithDescription("List tracked crypto wallets with asset and balance"),
	)
}

// createWalletValueTool returns the wallet_value tool definition
func createWalletValueTool() mcp.Tool {
	return mcp.NewTool("wallet_value",
		mcp.WithDescription("Price one wallet's balance at the current spot price"),
		mcp.WithString("wallet_id",
			mcp.Required(),
			mcp.Description("Wallet ID (format: wallet_{uuid})"),
		),
	)
}

// createLayoutListTool returns the layout_list tool definition
func createLayoutListTool() mcp.Tool {
	return mcp.NewTool("layout_list",
		mcp.WithDescription("List saved dashboard layouts with their widgets"),
	)
}
