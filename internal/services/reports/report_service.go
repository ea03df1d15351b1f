// -------------------------------------------------------------------------
// Last Modified: Tuesday, 18th August 2026 2:33:55 pm
// Modified By: Bob McAllan
// -------------------------------------------------------------------------

package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/services/mailer"
)

// mailSender is the slice of the mailer the report service needs
type mailSender interface {
	Configured(ctx context.Context) bool
	SendWithAttachments(ctx context.Context, to, subject, body string, attachments []mailer.Attachment) error
}

var _ interfaces.ReportService = (*Service)(nil)

// Service builds the portfolio + queue status report, as markdown for
// previews and as PDF for downloads and scheduled emails.
type Service struct {
	monitor  interfaces.MonitorService
	wallets  interfaces.WalletService
	goals    interfaces.GoalService
	mail     mailSender
	logger   arbor.ILogger
	currency string
	userID   string
}

func NewService(monitor interfaces.MonitorService, wallets interfaces.WalletService, goals interfaces.GoalService, mail mailSender, logger arbor.ILogger, currency string) *Service {
	if currency == "" {
		currency = "usd"
	}
	return &Service{
		monitor:  monitor,
		wallets:  wallets,
		goals:    goals,
		mail:     mail,
		logger:   logger,
		currency: currency,
		userID:   common.DefaultUserID,
	}
}

func (s *Service) PortfolioMarkdown(ctx context.Context) (string, error) {
	return s.buildMarkdown(ctx)
}

func (s *Service) PortfolioPDF(ctx context.Context) ([]byte, error) {
	markdown, err := s.buildMarkdown(ctx)
	if err != nil {
		return nil, err
	}

	pdf, err := renderPDF(markdown)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int("markdown_len", len(markdown)).
		Int("pdf_len", len(pdf)).
		Msg("Portfolio report rendered")
	return pdf, nil
}

// EmailPortfolioReport sends the PDF report as an attachment. Fails with
// mailer.ErrNotConfigured when no SMTP settings exist.
func (s *Service) EmailPortfolioReport(ctx context.Context, recipient string) error {
	if recipient == "" {
		return fmt.Errorf("recipient is required")
	}
	if !s.mail.Configured(ctx) {
		return mailer.ErrNotConfigured
	}

	pdf, err := s.PortfolioPDF(ctx)
	if err != nil {
		return err
	}

	today := time.Now().UTC().Format("2006-01-02")
	subject := fmt.Sprintf("TradeDeck portfolio report %s", today)
	body := "Your portfolio and queue status report is attached."
	attachment := mailer.Attachment{
		Filename:    fmt.Sprintf("portfolio-report-%s.pdf", today),
		ContentType: "application/pdf",
		Content:     pdf,
	}

	if err := s.mail.SendWithAttachments(ctx, recipient, subject, body, []mailer.Attachment{attachment}); err != nil {
		return fmt.Errorf("failed to email report: %w", err)
	}

	s.logger.Info().
		Str("recipient", recipient).
		Int("pdf_len", len(pdf)).
		Msg("Portfolio report emailed")
	return nil
}
