// -----------------------------------------------------------------------
// Last Modified: Monday, 10th August 2026 3:42:18 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/tradedeck/internal/models"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// LayoutStorage - interface for dashboard layout persistence
type LayoutStorage interface {
	// SaveLayout inserts or updates a layout
	SaveLayout(ctx context.Context, layout *models.DashboardLayout) error

	// GetLayout retrieves a layout by id
	GetLayout(ctx context.Context, id string) (*models.DashboardLayout, error)

	// ListLayouts returns all layouts for a (user, farm) scope
	ListLayouts(ctx context.Context, userID string, farmID *string) ([]*models.DashboardLayout, error)

	// GetDefaultLayout returns the layout flagged default for a scope
	GetDefaultLayout(ctx context.Context, userID string, farmID *string) (*models.DashboardLayout, error)

	// SaveAsDefault persists the layout with IsDefault set and clears the
	// flag on every other layout in the same scope, in one transaction
	SaveAsDefault(ctx context.Context, layout *models.DashboardLayout) error

	// DeleteLayout removes a layout by id
	DeleteLayout(ctx context.Context, id string) error

	// CountLayouts returns the number of stored layouts
	CountLayouts(ctx context.Context) (int, error)
}

// WalletStorage - interface for wallet persistence
type WalletStorage interface {
	SaveWallet(ctx context.Context, wallet *models.Wallet) error
	GetWallet(ctx context.Context, id string) (*models.Wallet, error)
	ListWallets(ctx context.Context, userID string) ([]*models.Wallet, error)
	DeleteWallet(ctx context.Context, id string) error
	CountWallets(ctx context.Context) (int, error)
}

// TransactionFilter narrows transaction listings. Zero values mean no filter.
type TransactionFilter struct {
	Type   string     // buy, sell, transfer_in, transfer_out
	From   *time.Time // inclusive lower bound
	To     *time.Time // exclusive upper bound
	Limit  int        // 0 = no limit
	Offset int
}

// TransactionStorage - interface for transaction ledger persistence
type TransactionStorage interface {
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)

	// ListTransactions returns a wallet's transactions newest first,
	// narrowed by the filter
	ListTransactions(ctx context.Context, walletID string, filter TransactionFilter) ([]*models.Transaction, error)

	DeleteTransaction(ctx context.Context, id string) error

	// DeleteByWallet removes every transaction belonging to a wallet
	DeleteByWallet(ctx context.Context, walletID string) error

	CountTransactions(ctx context.Context) (int, error)
}

// AlertStorage - interface for price alert persistence
type AlertStorage interface {
	SaveAlert(ctx context.Context, alert *models.Alert) error
	GetAlert(ctx context.Context, id string) (*models.Alert, error)
	ListAlerts(ctx context.Context, userID string) ([]*models.Alert, error)

	// ListActiveAlerts returns every active alert across users, for the
	// scheduled evaluation pass
	ListActiveAlerts(ctx context.Context) ([]*models.Alert, error)

	DeleteAlert(ctx context.Context, id string) error
}

// GoalStorage - interface for savings goal persistence
type GoalStorage interface {
	SaveGoal(ctx context.Context, goal *models.Goal) error
	GetGoal(ctx context.Context, id string) (*models.Goal, error)
	ListGoals(ctx context.Context, userID string) ([]*models.Goal, error)
	DeleteGoal(ctx context.Context, id string) error
}

// CredentialStorage - interface for exchange credential persistence
type CredentialStorage interface {
	SaveCredential(ctx context.Context, cred *models.ExchangeCredential) error
	GetCredential(ctx context.Context, id string) (*models.ExchangeCredential, error)
	ListCredentials(ctx context.Context, userID string) ([]*models.ExchangeCredential, error)
	DeleteCredential(ctx context.Context, id string) error
}

// SnapshotStorage - interface for historical queue stat points
type SnapshotStorage interface {
	// SaveSnapshots appends one point per queue for a sampling tick
	SaveSnapshots(ctx context.Context, points []models.HistoricalPoint) error

	// ListSnapshots returns points within [from, to) ordered by timestamp
	// ascending. An empty queue name matches all queues.
	ListSnapshots(ctx context.Context, queue string, from, to time.Time) ([]models.HistoricalPoint, error)

	// PruneSnapshots deletes points older than the cutoff and reports how
	// many were removed
	PruneSnapshots(ctx context.Context, cutoff time.Time) (int, error)

	CountSnapshots(ctx context.Context) (int, error)
}

// StorageStats summarizes store sizes for the status endpoint
type StorageStats struct {
	Layouts      int `json:"layouts"`
	Wallets      int `json:"wallets"`
	Transactions int `json:"transactions"`
	Snapshots    int `json:"snapshots"`
	Keys         int `json:"keys"`
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	LayoutStorage() LayoutStorage
	WalletStorage() WalletStorage
	TransactionStorage() TransactionStorage
	AlertStorage() AlertStorage
	GoalStorage() GoalStorage
	CredentialStorage() CredentialStorage
	KVStorage() KeyValueStorage
	SnapshotStorage() SnapshotStorage
	Stats(ctx context.Context) (*StorageStats, error)
	DB() interface{}
	Close() error
}
