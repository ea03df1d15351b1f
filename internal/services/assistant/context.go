package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/tradedeck/internal/interfaces"
)

// buildContextBlock renders a compact plain-text view of the dashboard for
// the system prompt. Sections that cannot be assembled are dropped rather
// than failing the chat.
func buildContextBlock(ctx context.Context, monitor interfaces.MonitorService, wallets interfaces.WalletService, userID, vsCurrency string) string {
	var b strings.Builder

	if wallets != nil {
		writePortfolioSection(ctx, &b, wallets, userID, vsCurrency)
	}
	if monitor != nil {
		writeQueueSection(&b, monitor)
	}

	return strings.TrimRight(b.String(), "\n")
}

func writePortfolioSection(ctx context.Context, b *strings.Builder, wallets interfaces.WalletService, userID, vsCurrency string) {
	list, err := wallets.ListWallets(ctx, userID)
	if err != nil || len(list) == 0 {
		return
	}

	total, err := wallets.PortfolioValue(ctx, userID)
	if err == nil {
		fmt.Fprintf(b, "Portfolio (total %.2f %s):\n", total, vsCurrency)
	} else {
		b.WriteString("Portfolio:\n")
	}
	for _, w := range list {
		fmt.Fprintf(b, "- %s: %g %s\n", w.Label, w.Balance, strings.ToUpper(w.Asset))
	}
	b.WriteString("\n")
}

func writeQueueSection(b *strings.Builder, monitor interfaces.MonitorService) {
	snap := monitor.Snapshot()
	if len(snap.Stats) == 0 {
		b.WriteString("Queues: no data from the queue engine yet.\n")
		return
	}

	health := make(map[string]string, len(snap.Health))
	for _, h := range snap.Health {
		health[h.Queue] = string(h.Health)
	}

	fmt.Fprintf(b, "Queues (as of %s):\n", snap.FetchedAt.UTC().Format(time.RFC3339))
	for _, q := range snap.Stats {
		fmt.Fprintf(b, "- %s: waiting=%d active=%d completed=%d failed=%d delayed=%d",
			q.Name, q.Waiting, q.Active, q.Completed, q.Failed, q.Delayed)
		if h, ok := health[q.Name]; ok {
			fmt.Fprintf(b, " [%s]", h)
		}
		b.WriteString("\n")
	}
	if lastErr := monitor.LastError(); lastErr != "" {
		fmt.Fprintf(b, "Note: the latest poll failed (%s), counts may be stale.\n", lastErr)
	}
}
