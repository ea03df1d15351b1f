package wallets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/marketdata"
	"github.com/ternarybob/tradedeck/internal/models"
)

type mockWalletStorage struct {
	mu      sync.Mutex
	wallets map[string]*models.Wallet
}

func newMockWalletStorage() *mockWalletStorage {
	return &mockWalletStorage{wallets: make(map[string]*models.Wallet)}
}

func (m *mockWalletStorage) SaveWallet(ctx context.Context, wallet *models.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *wallet
	m.wallets[wallet.ID] = &copied
	return nil
}

func (m *mockWalletStorage) GetWallet(ctx context.Context, id string) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wallet, ok := m.wallets[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *wallet
	return &copied, nil
}

func (m *mockWalletStorage) ListWallets(ctx context.Context, userID string) ([]*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*models.Wallet{}
	for _, w := range m.wallets {
		if w.UserID == userID {
			copied := *w
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Label < result[j].Label })
	return result, nil
}

func (m *mockWalletStorage) DeleteWallet(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.wallets[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(m.wallets, id)
	return nil
}

func (m *mockWalletStorage) CountWallets(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.wallets), nil
}

type mockTransactionStorage struct {
	mu  sync.Mutex
	txs map[string]*models.Transaction
}

func newMockTransactionStorage() *mockTransactionStorage {
	return &mockTransactionStorage{txs: make(map[string]*models.Transaction)}
}

func (m *mockTransactionStorage) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *tx
	m.txs[tx.ID] = &copied
	return nil
}

func (m *mockTransactionStorage) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.txs[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *tx
	return &copied, nil
}

func (m *mockTransactionStorage) ListTransactions(ctx context.Context, walletID string, filter interfaces.TransactionFilter) ([]*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := []*models.Transaction{}
	for _, tx := range m.txs {
		if tx.WalletID != walletID {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if filter.From != nil && tx.Timestamp.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !tx.Timestamp.Before(*filter.To) {
			continue
		}
		copied := *tx
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.After(result[j].Timestamp)
		}
		return result[i].ID > result[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*models.Transaction{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (m *mockTransactionStorage) DeleteTransaction(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txs[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(m.txs, id)
	return nil
}

func (m *mockTransactionStorage) DeleteByWallet(ctx context.Context, walletID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, tx := range m.txs {
		if tx.WalletID == walletID {
			delete(m.txs, id)
		}
	}
	return nil
}

func (m *mockTransactionStorage) CountTransactions(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.txs), nil
}

// newTestWalletService wires the service against mocks and a fake price API.
func newTestWalletService(t *testing.T, priceJSON string) (*Service, *mockWalletStorage, *mockTransactionStorage) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, priceJSON)
	}))
	t.Cleanup(server.Close)

	prices := marketdata.NewClient(
		marketdata.WithBaseURL(server.URL),
		marketdata.WithRateLimit(0),
		marketdata.WithCacheTTL(0),
	)

	wallets := newMockWalletStorage()
	transactions := newMockTransactionStorage()
	svc := NewService(wallets, transactions, prices, arbor.NewLogger(), "usd")
	return svc, wallets, transactions
}

func seedWallet(t *testing.T, svc *Service, label, asset string, balance float64) *models.Wallet {
	t.Helper()
	wallet, err := svc.CreateWallet(context.Background(), &models.Wallet{
		UserID:  "local",
		Label:   label,
		Asset:   asset,
		Balance: balance,
	})
	if err != nil {
		t.Fatalf("seed wallet %s: %v", label, err)
	}
	return wallet
}

func TestCreateWallet(t *testing.T) {
	svc, _, _ := newTestWalletService(t, `{}`)

	wallet := seedWallet(t, svc, "Cold storage", "btc", 0.5)
	if !strings.HasPrefix(wallet.ID, "wal_") {
		t.Errorf("wallet id: got %q, want wal_ prefix", wallet.ID)
	}
	if wallet.CreatedAt.IsZero() || wallet.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	_, err := svc.CreateWallet(context.Background(), &models.Wallet{UserID: "local", Asset: "btc"})
	if err == nil {
		t.Error("wallet without label accepted")
	}
}

func TestUpdateWallet(t *testing.T) {
	svc, _, _ := newTestWalletService(t, `{}`)
	ctx := context.Background()

	wallet := seedWallet(t, svc, "Cold storage", "btc", 0.5)

	time.Sleep(5 * time.Millisecond)
	wallet.Label = "Hardware wallet"
	updated, err := svc.UpdateWallet(ctx, wallet)
	if err != nil {
		t.Fatalf("UpdateWallet failed: %v", err)
	}
	if updated.Label != "Hardware wallet" {
		t.Errorf("label: got %q", updated.Label)
	}
	if !updated.CreatedAt.Equal(wallet.CreatedAt) {
		t.Error("CreatedAt not preserved")
	}
	if !updated.UpdatedAt.After(wallet.UpdatedAt) {
		t.Error("UpdatedAt not advanced")
	}

	_, err = svc.UpdateWallet(ctx, &models.Wallet{ID: "wal_missing", UserID: "local", Label: "x", Asset: "btc"})
	if !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("missing wallet: got %v, want ErrNotFound", err)
	}
}

func TestAddTransactionAdjustsBalance(t *testing.T) {
	tests := []struct {
		txType      string
		amount      float64
		wantBalance float64
	}{
		{models.TransactionBuy, 0.5, 1.5},
		{models.TransactionSell, 0.25, 0.75},
		{models.TransactionTransferIn, 1.0, 2.0},
		{models.TransactionTransferOut, 1.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.txType, func(t *testing.T) {
			svc, walletStore, _ := newTestWalletService(t, `{}`)
			ctx := context.Background()
			wallet := seedWallet(t, svc, "Trading", "eth", 1.0)

			tx, err := svc.AddTransaction(ctx, &models.Transaction{
				WalletID: wallet.ID,
				Type:     tt.txType,
				Amount:   tt.amount,
				PriceUSD: 2500,
			})
			if err != nil {
				t.Fatalf("AddTransaction failed: %v", err)
			}
			if !strings.HasPrefix(tx.ID, "txn_") {
				t.Errorf("transaction id: got %q, want txn_ prefix", tx.ID)
			}
			if tx.Asset != "eth" {
				t.Errorf("asset not defaulted from wallet: got %q", tx.Asset)
			}
			if tx.Timestamp.IsZero() {
				t.Error("timestamp not defaulted")
			}

			stored, err := walletStore.GetWallet(ctx, wallet.ID)
			if err != nil {
				t.Fatalf("GetWallet failed: %v", err)
			}
			if stored.Balance != tt.wantBalance {
				t.Errorf("balance: got %v, want %v", stored.Balance, tt.wantBalance)
			}
		})
	}
}

func TestAddTransactionInsufficientBalance(t *testing.T) {
	svc, walletStore, txStore := newTestWalletService(t, `{}`)
	ctx := context.Background()
	wallet := seedWallet(t, svc, "Trading", "eth", 1.0)

	_, err := svc.AddTransaction(ctx, &models.Transaction{
		WalletID: wallet.ID,
		Type:     models.TransactionSell,
		Amount:   2.0,
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("error: got %v, want ErrInsufficientBalance", err)
	}

	// Neither the ledger nor the balance moved.
	if count, _ := txStore.CountTransactions(ctx); count != 0 {
		t.Errorf("ledger entries after refused sell: got %d, want 0", count)
	}
	stored, _ := walletStore.GetWallet(ctx, wallet.ID)
	if stored.Balance != 1.0 {
		t.Errorf("balance after refused sell: got %v, want 1.0", stored.Balance)
	}
}

func TestAddTransactionUnknownWallet(t *testing.T) {
	svc, _, _ := newTestWalletService(t, `{}`)

	_, err := svc.AddTransaction(context.Background(), &models.Transaction{
		WalletID: "wal_missing",
		Type:     models.TransactionBuy,
		Amount:   1,
	})
	if !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("error: got %v, want ErrNotFound", err)
	}
}

func TestDeleteWalletRemovesLedger(t *testing.T) {
	svc, _, txStore := newTestWalletService(t, `{}`)
	ctx := context.Background()

	wallet := seedWallet(t, svc, "Trading", "eth", 10)
	other := seedWallet(t, svc, "Savings", "btc", 1)

	for i := 0; i < 3; i++ {
		if _, err := svc.AddTransaction(ctx, &models.Transaction{WalletID: wallet.ID, Type: models.TransactionBuy, Amount: 1}); err != nil {
			t.Fatalf("seed tx: %v", err)
		}
	}
	if _, err := svc.AddTransaction(ctx, &models.Transaction{WalletID: other.ID, Type: models.TransactionBuy, Amount: 1}); err != nil {
		t.Fatalf("seed other tx: %v", err)
	}

	if err := svc.DeleteWallet(ctx, wallet.ID); err != nil {
		t.Fatalf("DeleteWallet failed: %v", err)
	}

	if _, err := svc.GetWallet(ctx, wallet.ID); !errors.Is(err, interfaces.ErrNotFound) {
		t.Error("wallet still present after delete")
	}
	if count, _ := txStore.CountTransactions(ctx); count != 1 {
		t.Errorf("ledger entries after delete: got %d, want 1 (other wallet)", count)
	}
}

func TestWalletValue(t *testing.T) {
	svc, _, _ := newTestWalletService(t, `{"bitcoin":{"usd":45000}}`)
	wallet := seedWallet(t, svc, "Cold storage", "BTC", 0.5)

	value, err := svc.WalletValue(context.Background(), wallet.ID)
	if err != nil {
		t.Fatalf("WalletValue failed: %v", err)
	}
	if value.Price != 45000 {
		t.Errorf("price: got %v, want 45000", value.Price)
	}
	if value.Value != 22500 {
		t.Errorf("value: got %v, want 22500", value.Value)
	}
	if value.Currency != "usd" {
		t.Errorf("currency: got %q, want usd", value.Currency)
	}
}

func TestPortfolioValue(t *testing.T) {
	svc, _, _ := newTestWalletService(t, `{"bitcoin":{"usd":45000},"ethereum":{"usd":2500}}`)
	ctx := context.Background()

	seedWallet(t, svc, "Cold storage", "BTC", 0.5)  // 22500
	seedWallet(t, svc, "Hot wallet", "ETH", 2)      // 5000
	seedWallet(t, svc, "Dust", "OBSCURECOIN", 1000) // no quote, skipped

	total, err := svc.PortfolioValue(ctx, "local")
	if err != nil {
		t.Fatalf("PortfolioValue failed: %v", err)
	}
	if total != 27500 {
		t.Errorf("total: got %v, want 27500", total)
	}

	empty, err := svc.PortfolioValue(ctx, "nobody")
	if err != nil {
		t.Fatalf("PortfolioValue for empty user failed: %v", err)
	}
	if empty != 0 {
		t.Errorf("empty portfolio: got %v, want 0", empty)
	}
}
