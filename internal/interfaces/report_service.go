package interfaces

import "context"

// ReportService builds the portfolio + queue status report
type ReportService interface {
	// PortfolioMarkdown renders the report as markdown
	PortfolioMarkdown(ctx context.Context) (string, error)

	// PortfolioPDF renders the report as a PDF document
	PortfolioPDF(ctx context.Context) ([]byte, error)

	// EmailPortfolioReport sends the PDF report to the recipient
	EmailPortfolioReport(ctx context.Context, recipient string) error
}
