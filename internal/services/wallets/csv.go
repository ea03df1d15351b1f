package wallets

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ternarybob/tradedeck/internal/models"
)

// csvHeader is the export column order. Kept stable: spreadsheets and the
// dashboard's re-import both key off these names.
var csvHeader = []string{"id", "wallet_id", "type", "asset", "amount", "price_usd", "fee_usd", "timestamp", "note"}

func writeTransactionsCSV(w io.Writer, txs []*models.Transaction) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, tx := range txs {
		record := []string{
			tx.ID,
			tx.WalletID,
			tx.Type,
			tx.Asset,
			formatAmount(tx.Amount),
			formatAmount(tx.PriceUSD),
			formatAmount(tx.FeeUSD),
			tx.Timestamp.Format(time.RFC3339),
			tx.Note,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// formatAmount renders a float without trailing zeros, the same way the
// JSON API serializes it.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
