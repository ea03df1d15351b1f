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

// TransactionStorage implements the TransactionStorage interface for Badger
type TransactionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewTransactionStorage creates a new TransactionStorage instance
func NewTransactionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.TransactionStorage {
	return &TransactionStorage{
		db:     db,
		logger: logger,
	}
}

// SaveTransaction inserts or updates a ledger entry
func (s *TransactionStorage) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		return fmt.Errorf("transaction ID is required")
	}
	if err := s.db.Store().Upsert(tx.ID, *tx); err != nil {
		s.logger.Error().Err(err).Str("transaction_id", tx.ID).Msg("BadgerDB: Failed to upsert transaction")
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a ledger entry by id
func (s *TransactionStorage) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.db.Store().Get(id, &tx)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

// ListTransactions returns a wallet's transactions newest first, narrowed
// by the filter. Time-range and type filters are applied in memory after
// the indexed WalletID lookup; limit and offset apply to the sorted result
// so exports and listings see identical ordering.
func (s *TransactionStorage) ListTransactions(ctx context.Context, walletID string, filter interfaces.TransactionFilter) ([]*models.Transaction, error) {
	var found []models.Transaction
	if err := s.db.Store().Find(&found, badgerhold.Where("WalletID").Eq(walletID)); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	txs := make([]*models.Transaction, 0, len(found))
	for i := range found {
		tx := &found[i]
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if filter.From != nil && tx.Timestamp.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !tx.Timestamp.Before(*filter.To) {
			continue
		}
		txs = append(txs, tx)
	}

	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Timestamp.Equal(txs[j].Timestamp) {
			return txs[i].ID > txs[j].ID
		}
		return txs[i].Timestamp.After(txs[j].Timestamp)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(txs) {
			return []*models.Transaction{}, nil
		}
		txs = txs[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(txs) {
		txs = txs[:filter.Limit]
	}

	return txs, nil
}

// DeleteTransaction removes a ledger entry by id
func (s *TransactionStorage) DeleteTransaction(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.Transaction{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// DeleteByWallet removes every transaction belonging to a wallet
func (s *TransactionStorage) DeleteByWallet(ctx context.Context, walletID string) error {
	err := s.db.Store().DeleteMatching(&models.Transaction{}, badgerhold.Where("WalletID").Eq(walletID))
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete wallet transactions: %w", err)
	}
	return nil
}

// CountTransactions returns the number of stored ledger entries
func (s *TransactionStorage) CountTransactions(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Transaction{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return int(count), nil
}
