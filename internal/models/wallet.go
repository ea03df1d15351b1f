package models

import (
	"fmt"
	"time"
)

// Transaction type constants
const (
	TransactionBuy         = "buy"
	TransactionSell        = "sell"
	TransactionTransferIn  = "transfer_in"
	TransactionTransferOut = "transfer_out"
)

// ValidTransactionTypes lists every transaction type the ledger accepts
var ValidTransactionTypes = []string{
	TransactionBuy,
	TransactionSell,
	TransactionTransferIn,
	TransactionTransferOut,
}

// IsValidTransactionType reports whether t is a known transaction type
func IsValidTransactionType(t string) bool {
	for _, v := range ValidTransactionTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Wallet represents a tracked crypto wallet or exchange account balance
type Wallet struct {
	ID        string    `json:"id" badgerhold:"key"`
	UserID    string    `json:"user_id" badgerhold:"index"`
	Label     string    `json:"label"`             // Human-readable name (e.g., "Cold storage")
	Address   string    `json:"address,omitempty"` // On-chain address, empty for exchange accounts
	Chain     string    `json:"chain,omitempty"`   // "bitcoin", "ethereum", etc.
	Asset     string    `json:"asset"`             // Ticker the balance is denominated in (e.g., "btc")
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks required wallet fields
func (w *Wallet) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("wallet id is required")
	}
	if w.UserID == "" {
		return fmt.Errorf("wallet user id is required")
	}
	if w.Label == "" {
		return fmt.Errorf("wallet label is required")
	}
	if w.Asset == "" {
		return fmt.Errorf("wallet asset is required")
	}
	if w.Balance < 0 {
		return fmt.Errorf("wallet balance cannot be negative")
	}
	return nil
}

// Transaction represents a single ledger entry against a wallet
type Transaction struct {
	ID        string    `json:"id" badgerhold:"key"`
	WalletID  string    `json:"wallet_id" badgerhold:"index"`
	Type      string    `json:"type"` // buy, sell, transfer_in, transfer_out
	Asset     string    `json:"asset"`
	Amount    float64   `json:"amount"`
	PriceUSD  float64   `json:"price_usd"` // Unit price at execution time
	FeeUSD    float64   `json:"fee_usd"`
	Timestamp time.Time `json:"timestamp" badgerhold:"index"`
	Note      string    `json:"note,omitempty"`
}

// Validate checks required transaction fields
func (t *Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("transaction id is required")
	}
	if t.WalletID == "" {
		return fmt.Errorf("transaction wallet_id is required")
	}
	if !IsValidTransactionType(t.Type) {
		return fmt.Errorf("invalid transaction type: %s", t.Type)
	}
	if t.Asset == "" {
		return fmt.Errorf("transaction asset is required")
	}
	if t.Amount <= 0 {
		return fmt.Errorf("transaction amount must be positive")
	}
	if t.Timestamp.IsZero() {
		return fmt.Errorf("transaction timestamp is required")
	}
	return nil
}
