package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/tradedeck/internal/marketdata"
)

// buildMarkdown assembles the report source. Sections degrade one by one:
// a dead price API drops wallet values, an unpolled monitor drops queue
// rows, the report itself still renders.
func (s *Service) buildMarkdown(ctx context.Context) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# TradeDeck Portfolio Report\n\n")
	fmt.Fprintf(&b, "Generated %s\n\n", time.Now().UTC().Format("Monday, 2 January 2006 15:04 MST"))

	if err := s.writePortfolio(ctx, &b); err != nil {
		return "", err
	}
	s.writeGoals(ctx, &b)
	s.writeQueues(&b)

	return b.String(), nil
}

func (s *Service) writePortfolio(ctx context.Context, b *strings.Builder) error {
	wallets, err := s.wallets.ListWallets(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("failed to list wallets: %w", err)
	}

	b.WriteString("## Portfolio\n\n")
	if len(wallets) == 0 {
		b.WriteString("No wallets configured.\n\n")
		return nil
	}

	total := 0.0
	priced := 0

	fmt.Fprintf(b, "| Wallet | Asset | Balance | Value (%s) |\n", s.currency)
	b.WriteString("|---|---|---|---|\n")
	for _, w := range wallets {
		value, err := s.wallets.WalletValue(ctx, w.ID)
		if err != nil {
			if !errors.Is(err, marketdata.ErrNoPrice) {
				s.logger.Warn().Str("wallet_id", w.ID).Err(err).Msg("Report wallet valuation failed")
			}
			fmt.Fprintf(b, "| %s | %s | %g | - |\n", w.Label, strings.ToUpper(w.Asset), w.Balance)
			continue
		}
		fmt.Fprintf(b, "| %s | %s | %g | %.2f |\n", w.Label, strings.ToUpper(w.Asset), w.Balance, value.Value)
		total += value.Value
		priced++
	}
	b.WriteString("\n")

	if priced > 0 {
		fmt.Fprintf(b, "Total value: **%.2f %s**", total, s.currency)
		if priced < len(wallets) {
			fmt.Fprintf(b, " (%d of %d wallets priced)", priced, len(wallets))
		}
		b.WriteString("\n\n")
	} else {
		b.WriteString("No current prices available.\n\n")
	}
	return nil
}

func (s *Service) writeGoals(ctx context.Context, b *strings.Builder) {
	if s.goals == nil {
		return
	}
	goals, err := s.goals.ListGoals(ctx, s.userID)
	if err != nil || len(goals) == 0 {
		return
	}

	b.WriteString("## Goals\n\n")
	fmt.Fprintf(b, "| Goal | Target (%s) | Current (%s) | Progress |\n", s.currency, s.currency)
	b.WriteString("|---|---|---|---|\n")
	for _, goal := range goals {
		progress, err := s.goals.Progress(ctx, goal.ID)
		if err != nil {
			fmt.Fprintf(b, "| %s | %.2f | - | - |\n", goal.Name, goal.TargetUSD)
			continue
		}
		fmt.Fprintf(b, "| %s | %.2f | %.2f | %.1f%% |\n",
			goal.Name, progress.TargetUSD, progress.CurrentUSD, progress.Percent)
	}
	b.WriteString("\n")
}

func (s *Service) writeQueues(b *strings.Builder) {
	if s.monitor == nil {
		return
	}
	snap := s.monitor.Snapshot()

	b.WriteString("## Queues\n\n")
	if len(snap.Stats) == 0 {
		b.WriteString("No queue data available.\n\n")
		return
	}

	health := make(map[string]string, len(snap.Health))
	for _, h := range snap.Health {
		health[h.Queue] = string(h.Health)
	}

	b.WriteString("| Queue | Waiting | Active | Completed | Failed | Delayed | Health |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, q := range snap.Stats {
		fmt.Fprintf(b, "| %s | %d | %d | %d | %d | %d | %s |\n",
			q.Name, q.Waiting, q.Active, q.Completed, q.Failed, q.Delayed, health[q.Name])
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "Queue stats as of %s.\n", snap.FetchedAt.UTC().Format(time.RFC3339))

	if lastErr := s.monitor.LastError(); lastErr != "" {
		fmt.Fprintf(b, "\n*The latest poll failed (%s); counts may be stale.*\n", lastErr)
	}
}
