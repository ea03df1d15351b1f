// -----------------------------------------------------------------------
// Last Modified: Friday, 14th August 2026 10:52:36 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package wallets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/marketdata"
	"github.com/ternarybob/tradedeck/internal/models"
)

// ErrInsufficientBalance is returned when a sell or transfer-out would take
// the wallet balance below zero.
var ErrInsufficientBalance = errors.New("insufficient wallet balance")

var _ interfaces.WalletService = (*Service)(nil)

// Service implements WalletService: wallet CRUD, the transaction ledger,
// CSV export, and spot-price valuation.
type Service struct {
	wallets      interfaces.WalletStorage
	transactions interfaces.TransactionStorage
	prices       *marketdata.Client
	logger       arbor.ILogger
	vsCurrency   string
}

// NewService creates a wallet service. vsCurrency is the quote currency for
// valuations (config marketdata.vs_currency).
func NewService(wallets interfaces.WalletStorage, transactions interfaces.TransactionStorage, prices *marketdata.Client, logger arbor.ILogger, vsCurrency string) *Service {
	if vsCurrency == "" {
		vsCurrency = "usd"
	}
	return &Service{
		wallets:      wallets,
		transactions: transactions,
		prices:       prices,
		logger:       logger,
		vsCurrency:   vsCurrency,
	}
}

// CreateWallet stores a new wallet. An empty id gets a generated one.
func (s *Service) CreateWallet(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error) {
	if wallet == nil {
		return nil, fmt.Errorf("wallet is required")
	}

	saved := *wallet
	now := time.Now()
	if saved.ID == "" {
		saved.ID = common.NewWalletID()
	}
	saved.CreatedAt = now
	saved.UpdatedAt = now

	if err := saved.Validate(); err != nil {
		return nil, err
	}
	if err := s.wallets.SaveWallet(ctx, &saved); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("wallet_id", saved.ID).
		Str("user_id", saved.UserID).
		Str("asset", saved.Asset).
		Msg("Wallet created")

	return &saved, nil
}

// UpdateWallet updates an existing wallet. Balance is taken as given so
// manual corrections are possible; CreatedAt is preserved.
func (s *Service) UpdateWallet(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error) {
	if wallet == nil || wallet.ID == "" {
		return nil, fmt.Errorf("wallet id is required")
	}

	existing, err := s.wallets.GetWallet(ctx, wallet.ID)
	if err != nil {
		return nil, err
	}

	saved := *wallet
	saved.CreatedAt = existing.CreatedAt
	saved.UpdatedAt = time.Now()
	if saved.UserID == "" {
		saved.UserID = existing.UserID
	}

	if err := saved.Validate(); err != nil {
		return nil, err
	}
	if err := s.wallets.SaveWallet(ctx, &saved); err != nil {
		return nil, err
	}

	return &saved, nil
}

// GetWallet returns one wallet by id.
func (s *Service) GetWallet(ctx context.Context, id string) (*models.Wallet, error) {
	return s.wallets.GetWallet(ctx, id)
}

// ListWallets returns a user's wallets ordered by label.
func (s *Service) ListWallets(ctx context.Context, userID string) ([]*models.Wallet, error) {
	return s.wallets.ListWallets(ctx, userID)
}

// DeleteWallet removes the wallet and its transaction ledger.
func (s *Service) DeleteWallet(ctx context.Context, id string) error {
	if _, err := s.wallets.GetWallet(ctx, id); err != nil {
		return err
	}

	if err := s.transactions.DeleteByWallet(ctx, id); err != nil {
		return fmt.Errorf("failed to delete wallet transactions: %w", err)
	}
	if err := s.wallets.DeleteWallet(ctx, id); err != nil {
		return err
	}

	s.logger.Info().
		Str("wallet_id", id).
		Msg("Wallet deleted")

	return nil
}

// AddTransaction appends a ledger entry and adjusts the wallet balance.
// Buys and transfers in add to the balance; sells and transfers out deduct
// and are refused when they would take it below zero.
func (s *Service) AddTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is required")
	}

	wallet, err := s.wallets.GetWallet(ctx, tx.WalletID)
	if err != nil {
		return nil, err
	}

	saved := *tx
	if saved.ID == "" {
		saved.ID = common.NewTransactionID()
	}
	if saved.Timestamp.IsZero() {
		saved.Timestamp = time.Now()
	}
	if saved.Asset == "" {
		saved.Asset = wallet.Asset
	}

	if err := saved.Validate(); err != nil {
		return nil, err
	}

	newBalance := wallet.Balance
	switch saved.Type {
	case models.TransactionBuy, models.TransactionTransferIn:
		newBalance += saved.Amount
	case models.TransactionSell, models.TransactionTransferOut:
		newBalance -= saved.Amount
	}
	if newBalance < 0 {
		return nil, fmt.Errorf("%w: balance %g, %s of %g", ErrInsufficientBalance, wallet.Balance, saved.Type, saved.Amount)
	}

	if err := s.transactions.SaveTransaction(ctx, &saved); err != nil {
		return nil, err
	}

	wallet.Balance = newBalance
	wallet.UpdatedAt = time.Now()
	if err := s.wallets.SaveWallet(ctx, wallet); err != nil {
		// Roll the ledger entry back so balance and ledger stay consistent.
		if delErr := s.transactions.DeleteTransaction(ctx, saved.ID); delErr != nil {
			s.logger.Error().
				Err(delErr).
				Str("transaction_id", saved.ID).
				Msg("Failed to roll back transaction after wallet update failure")
		}
		return nil, fmt.Errorf("failed to update wallet balance: %w", err)
	}

	s.logger.Info().
		Str("transaction_id", saved.ID).
		Str("wallet_id", saved.WalletID).
		Str("type", saved.Type).
		Float64("amount", saved.Amount).
		Float64("balance", newBalance).
		Msg("Transaction recorded")

	return &saved, nil
}

// ListTransactions returns a wallet's ledger newest first, narrowed by the
// filter.
func (s *Service) ListTransactions(ctx context.Context, walletID string, filter interfaces.TransactionFilter) ([]*models.Transaction, error) {
	if _, err := s.wallets.GetWallet(ctx, walletID); err != nil {
		return nil, err
	}
	return s.transactions.ListTransactions(ctx, walletID, filter)
}

// WalletValue prices a wallet's balance at the current spot price.
func (s *Service) WalletValue(ctx context.Context, id string) (*interfaces.WalletValue, error) {
	wallet, err := s.wallets.GetWallet(ctx, id)
	if err != nil {
		return nil, err
	}

	price, err := s.prices.Spot(ctx, wallet.Asset, s.vsCurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to price %s: %w", wallet.Asset, err)
	}

	return &interfaces.WalletValue{
		WalletID: wallet.ID,
		Asset:    wallet.Asset,
		Balance:  wallet.Balance,
		Price:    price,
		Value:    wallet.Balance * price,
		Currency: s.vsCurrency,
	}, nil
}

// PortfolioValue sums wallet values for a user. Wallets whose asset has no
// quote are skipped with a warning rather than zeroing the whole portfolio.
func (s *Service) PortfolioValue(ctx context.Context, userID string) (float64, error) {
	wallets, err := s.wallets.ListWallets(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(wallets) == 0 {
		return 0, nil
	}

	assetSet := make(map[string]bool, len(wallets))
	assets := make([]string, 0, len(wallets))
	for _, w := range wallets {
		if !assetSet[w.Asset] {
			assetSet[w.Asset] = true
			assets = append(assets, w.Asset)
		}
	}

	prices, err := s.prices.Spots(ctx, assets, s.vsCurrency)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch spot prices: %w", err)
	}

	var total float64
	for _, w := range wallets {
		price, ok := prices[w.Asset]
		if !ok {
			s.logger.Warn().
				Str("wallet_id", w.ID).
				Str("asset", w.Asset).
				Msg("No spot price for asset, excluded from portfolio value")
			continue
		}
		total += w.Balance * price
	}

	return total, nil
}

// ExportTransactionsCSV streams the filtered ledger as CSV. Rows come from
// the same listing path the API serves, so export order and values match
// what the dashboard displays.
func (s *Service) ExportTransactionsCSV(ctx context.Context, w io.Writer, walletID string, filter interfaces.TransactionFilter) error {
	txs, err := s.ListTransactions(ctx, walletID, filter)
	if err != nil {
		return err
	}
	return writeTransactionsCSV(w, txs)
}
