package interfaces

import (
	"context"
	"io"

	"github.com/ternarybob/tradedeck/internal/models"
)

// WalletValue is a wallet balance priced in a quote currency
type WalletValue struct {
	WalletID string  `json:"wallet_id"`
	Asset    string  `json:"asset"`
	Balance  float64 `json:"balance"`
	Price    float64 `json:"price"`
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

// WalletService manages wallets and their transaction ledgers
type WalletService interface {
	CreateWallet(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error)
	UpdateWallet(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error)
	GetWallet(ctx context.Context, id string) (*models.Wallet, error)
	ListWallets(ctx context.Context, userID string) ([]*models.Wallet, error)

	// DeleteWallet removes the wallet and its transactions
	DeleteWallet(ctx context.Context, id string) error

	// AddTransaction appends a ledger entry and adjusts the wallet balance
	AddTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)

	// ListTransactions returns a wallet's ledger newest first
	ListTransactions(ctx context.Context, walletID string, filter TransactionFilter) ([]*models.Transaction, error)

	// ExportTransactionsCSV streams the filtered ledger as CSV in display
	// order. Rows round-trip the listing exactly.
	ExportTransactionsCSV(ctx context.Context, w io.Writer, walletID string, filter TransactionFilter) error

	// WalletValue prices a wallet's balance at the current spot price
	WalletValue(ctx context.Context, id string) (*WalletValue, error)

	// PortfolioValue sums wallet values for a user
	PortfolioValue(ctx context.Context, userID string) (float64, error)
}
