package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Queue monitor
	mux.HandleFunc("/api/queue/stats", s.app.QueueHandler.GetStatsHandler)
	mux.HandleFunc("/api/queue/health", s.app.QueueHandler.GetHealthHandler)
	mux.HandleFunc("/api/queue/historical-stats", s.app.QueueHandler.GetHistoricalStatsHandler)
	mux.HandleFunc("/api/queue/jobs/", s.app.QueueHandler.JobsHandler) // GET /{queue}, POST /{queue}/{id}/retry, DELETE /{queue}/{id}
	mux.HandleFunc("/api/queue/", s.app.QueueHandler.ActionHandler)    // POST /{queue}/pause|resume|clean

	// API routes - Dashboard layouts
	mux.HandleFunc("/api/layouts", s.app.LayoutHandler.ListHandler)         // GET (list), POST (save)
	mux.HandleFunc("/api/layouts/active", s.app.LayoutHandler.ActiveHandler)
	mux.HandleFunc("/api/layouts/", s.app.LayoutHandler.ItemHandler) // GET/PUT/DELETE /{id} and widget subpaths
	mux.HandleFunc("/api/widgets/catalog", s.app.LayoutHandler.CatalogHandler)

	// API routes - Wallets and portfolio
	mux.HandleFunc("/api/wallets", s.app.WalletHandler.ListHandler)  // GET (list), POST (create)
	mux.HandleFunc("/api/wallets/", s.app.WalletHandler.ItemHandler) // item, value, transactions subpaths
	mux.HandleFunc("/api/portfolio/value", s.app.WalletHandler.PortfolioValueHandler)

	// API routes - Alerts
	mux.HandleFunc("/api/alerts", s.app.AlertHandler.ListHandler)
	mux.HandleFunc("/api/alerts/", s.app.AlertHandler.ItemHandler)

	// API routes - Goals
	mux.HandleFunc("/api/goals", s.app.GoalHandler.ListHandler)
	mux.HandleFunc("/api/goals/", s.app.GoalHandler.ItemHandler) // item and /{id}/progress

	// API routes - Exchange credentials
	mux.HandleFunc("/api/credentials", s.app.CredentialHandler.ListHandler)
	mux.HandleFunc("/api/credentials/", s.app.CredentialHandler.ItemHandler) // item and /{id}/refresh

	// API routes - Settings
	mux.HandleFunc("/api/settings", s.app.SettingsHandler.CollectionHandler) // GET (all), PUT (batch update)
	mux.HandleFunc("/api/settings/", s.app.SettingsHandler.ItemHandler)      // GET/DELETE /{key}

	// API routes - Assistant
	mux.HandleFunc("/api/assistant/chat", s.app.AssistantHandler.ChatHandler)

	// API routes - Reports
	mux.HandleFunc("/api/reports/portfolio.pdf", s.app.ReportHandler.PDFHandler)
	mux.HandleFunc("/api/reports/email", s.app.ReportHandler.EmailHandler)

	// API routes - Logs
	mux.HandleFunc("/api/logs/recent", s.app.WSHandler.GetRecentLogsHandler)

	// API routes - System
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
