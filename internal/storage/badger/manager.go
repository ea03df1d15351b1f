// -----------------------------------------------------------------------
// Last Modified: Tuesday, 11th August 2026 10:05:44 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package badger

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db          *BadgerDB
	layout      interfaces.LayoutStorage
	wallet      interfaces.WalletStorage
	transaction interfaces.TransactionStorage
	alert       interfaces.AlertStorage
	goal        interfaces.GoalStorage
	credential  interfaces.CredentialStorage
	kv          interfaces.KeyValueStorage
	snapshot    interfaces.SnapshotStorage
	logger      arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:          db,
		layout:      NewLayoutStorage(db, logger),
		wallet:      NewWalletStorage(db, logger),
		transaction: NewTransactionStorage(db, logger),
		alert:       NewAlertStorage(db, logger),
		goal:        NewGoalStorage(db, logger),
		credential:  NewCredentialStorage(db, logger),
		kv:          NewKVStorage(db, logger),
		snapshot:    NewSnapshotStorage(db, logger),
		logger:      logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// LayoutStorage returns the layout storage interface
func (m *Manager) LayoutStorage() interfaces.LayoutStorage {
	return m.layout
}

// WalletStorage returns the wallet storage interface
func (m *Manager) WalletStorage() interfaces.WalletStorage {
	return m.wallet
}

// TransactionStorage returns the transaction storage interface
func (m *Manager) TransactionStorage() interfaces.TransactionStorage {
	return m.transaction
}

// AlertStorage returns the alert storage interface
func (m *Manager) AlertStorage() interfaces.AlertStorage {
	return m.alert
}

// GoalStorage returns the goal storage interface
func (m *Manager) GoalStorage() interfaces.GoalStorage {
	return m.goal
}

// CredentialStorage returns the credential storage interface
func (m *Manager) CredentialStorage() interfaces.CredentialStorage {
	return m.credential
}

// KVStorage returns the key/value storage interface
func (m *Manager) KVStorage() interfaces.KeyValueStorage {
	return m.kv
}

// SnapshotStorage returns the snapshot storage interface
func (m *Manager) SnapshotStorage() interfaces.SnapshotStorage {
	return m.snapshot
}

// Stats summarizes store sizes for the status endpoint
func (m *Manager) Stats(ctx context.Context) (*interfaces.StorageStats, error) {
	layouts, err := m.layout.CountLayouts(ctx)
	if err != nil {
		return nil, err
	}
	wallets, err := m.wallet.CountWallets(ctx)
	if err != nil {
		return nil, err
	}
	transactions, err := m.transaction.CountTransactions(ctx)
	if err != nil {
		return nil, err
	}
	snapshots, err := m.snapshot.CountSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	keys, err := m.kv.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &interfaces.StorageStats{
		Layouts:      layouts,
		Wallets:      wallets,
		Transactions: transactions,
		Snapshots:    snapshots,
		Keys:         keys,
	}, nil
}

// DB returns the underlying badgerhold store
func (m *Manager) DB() interface{} {
	if m.db != nil {
		return m.db.Store()
	}
	return nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
