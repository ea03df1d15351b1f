package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// WalletStorage implements the WalletStorage interface for Badger
type WalletStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewWalletStorage creates a new WalletStorage instance
func NewWalletStorage(db *BadgerDB, logger arbor.ILogger) interfaces.WalletStorage {
	return &WalletStorage{
		db:     db,
		logger: logger,
	}
}

// SaveWallet inserts or updates a wallet
func (s *WalletStorage) SaveWallet(ctx context.Context, wallet *models.Wallet) error {
	if wallet.ID == "" {
		return fmt.Errorf("wallet ID is required")
	}
	if err := s.db.Store().Upsert(wallet.ID, *wallet); err != nil {
		s.logger.Error().Err(err).Str("wallet_id", wallet.ID).Msg("BadgerDB: Failed to upsert wallet")
		return fmt.Errorf("failed to save wallet: %w", err)
	}
	return nil
}

// GetWallet retrieves a wallet by id
func (s *WalletStorage) GetWallet(ctx context.Context, id string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.db.Store().Get(id, &wallet)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

// ListWallets returns a user's wallets ordered by label
func (s *WalletStorage) ListWallets(ctx context.Context, userID string) ([]*models.Wallet, error) {
	var found []models.Wallet
	if err := s.db.Store().Find(&found, badgerhold.Where("UserID").Eq(userID)); err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}

	wallets := make([]*models.Wallet, len(found))
	for i := range found {
		wallets[i] = &found[i]
	}
	sort.Slice(wallets, func(i, j int) bool {
		return wallets[i].Label < wallets[j].Label
	})
	return wallets, nil
}

// DeleteWallet removes a wallet by id
func (s *WalletStorage) DeleteWallet(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.Wallet{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete wallet: %w", err)
	}
	return nil
}

// CountWallets returns the number of stored wallets
func (s *WalletStorage) CountWallets(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Wallet{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count wallets: %w", err)
	}
	return int(count), nil
}
