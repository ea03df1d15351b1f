package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
)

// formatQueueStats renders queue counters as a markdown table
func formatQueueStats(stats []models.QueueStats) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Queue Stats (%d queues)\n\n", len(stats)))

	if len(stats) == 0 {
		sb.WriteString("No queue data yet. The monitor may not have completed its first poll.\n")
		return sb.String()
	}

	sb.WriteString("| Queue | Waiting | Active | Completed | Failed | Delayed | Paused | Total |\n")
	sb.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, s := range stats {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d | %d | %d | %d |\n",
			s.Name, s.Waiting, s.Active, s.Completed, s.Failed, s.Delayed, s.Paused, s.TotalJobs))
	}
	return sb.String()
}

// formatQueueHealth renders health classifications as markdown
func formatQueueHealth(health []models.QueueHealthStatus) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Queue Health (%d queues)\n\n", len(health)))

	if len(health) == 0 {
		sb.WriteString("No health data yet.\n")
		return sb.String()
	}

	for _, h := range health {
		sb.WriteString(fmt.Sprintf("- **%s**: %s\n", h.Queue, h.Health))
	}
	return sb.String()
}

// formatJobs renders a job listing as markdown
func formatJobs(queue, status string, jobs []models.Job) string {
	var sb strings.Builder
	if status == "" {
		sb.WriteString(fmt.Sprintf("## Jobs in %s (%d)\n\n", queue, len(jobs)))
	} else {
		sb.WriteString(fmt.Sprintf("## %s jobs in %s (%d)\n\n", status, queue, len(jobs)))
	}

	if len(jobs) == 0 {
		sb.WriteString("No jobs found.\n")
		return sb.String()
	}

	for i, job := range jobs {
		sb.WriteString(fmt.Sprintf("### %d. %s (id: %s)\n", i+1, job.Name, job.ID))
		sb.WriteString(fmt.Sprintf("**Status:** %s  **Progress:** %d%%  **Attempts:** %d\n",
			job.Status, job.Progress, job.AttemptsMade))
		created := time.UnixMilli(job.Timestamp).UTC()
		sb.WriteString(fmt.Sprintf("**Created:** %s\n", created.Format(time.RFC3339)))
		if len(job.Stacktrace) > 0 {
			trace := job.Stacktrace[0]
			if len(trace) > 300 {
				trace = trace[:300] + "..."
			}
			sb.WriteString(fmt.Sprintf("**Last error:**\n```\n%s\n```\n", trace))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatWallets renders the wallet list as markdown
func formatWallets(wallets []*models.Wallet) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Wallets (%d)\n\n", len(wallets)))

	if len(wallets) == 0 {
		sb.WriteString("No wallets tracked.\n")
		return sb.String()
	}

	for _, w := range wallets {
		sb.WriteString(fmt.Sprintf("- **%s** (id: %s): %.8f %s", w.Label, w.ID, w.Balance, strings.ToUpper(w.Asset)))
		if w.Chain != "" {
			sb.WriteString(fmt.Sprintf(" on %s", w.Chain))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatWalletValue renders one priced wallet as markdown
func formatWalletValue(v *interfaces.WalletValue) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Wallet %s\n\n", v.WalletID))
	sb.WriteString(fmt.Sprintf("**Balance:** %.8f %s\n", v.Balance, strings.ToUpper(v.Asset)))
	sb.WriteString(fmt.Sprintf("**Spot price:** %.2f %s\n", v.Price, strings.ToUpper(v.Currency)))
	sb.WriteString(fmt.Sprintf("**Value:** %.2f %s\n", v.Value, strings.ToUpper(v.Currency)))
	return sb.String()
}

// formatLayouts renders saved layouts as markdown
func formatLayouts(layouts []*models.DashboardLayout) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Dashboard Layouts (%d)\n\n", len(layouts)))

	if len(layouts) == 0 {
		sb.WriteString("No layouts saved.\n")
		return sb.String()
	}

	for _, l := range layouts {
		marker := ""
		if l.IsDefault {
			marker = " (default)"
		}
		sb.WriteString(fmt.Sprintf("### %s%s (id: %s)\n", l.Name, marker, l.ID))
		if len(l.Widgets) == 0 {
			sb.WriteString("No widgets.\n\n")
			continue
		}
		for i, w := range l.Widgets {
			sb.WriteString(fmt.Sprintf("%d. %s [%s]", i+1, w.Title, w.Type))
			if w.Size != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", w.Size))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
