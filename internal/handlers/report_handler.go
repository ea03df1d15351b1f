package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/services/mailer"
)

// ReportHandler serves portfolio report downloads and email delivery
type ReportHandler struct {
	service          interfaces.ReportService
	defaultRecipient string
	logger           arbor.ILogger
}

func NewReportHandler(service interfaces.ReportService, defaultRecipient string, logger arbor.ILogger) *ReportHandler {
	return &ReportHandler{
		service:          service,
		defaultRecipient: defaultRecipient,
		logger:           logger,
	}
}

// PDFHandler handles GET /api/reports/portfolio.pdf
func (h *ReportHandler) PDFHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	pdf, err := h.service.PortfolioPDF(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to render portfolio report")
		WriteError(w, http.StatusInternalServerError, "Failed to render portfolio report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="portfolio-report.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// EmailHandler handles POST /api/reports/email
func (h *ReportHandler) EmailHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req struct {
		Recipient string `json:"recipient"`
	}
	if r.Body != nil {
		// Empty body means the configured recipient
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	recipient := req.Recipient
	if recipient == "" {
		recipient = h.defaultRecipient
	}
	if recipient == "" {
		WriteError(w, http.StatusBadRequest, "Recipient is required")
		return
	}

	if err := h.service.EmailPortfolioReport(r.Context(), recipient); err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) {
			WriteError(w, http.StatusServiceUnavailable, "SMTP is not configured")
			return
		}
		h.logger.Error().Err(err).Str("recipient", recipient).Msg("Failed to email portfolio report")
		WriteError(w, http.StatusInternalServerError, "Failed to email portfolio report")
		return
	}
	WriteSuccess(w, "Report sent to "+recipient)
}
