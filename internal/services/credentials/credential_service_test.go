package credentials

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
)

type mockCredentialStorage struct {
	mu    sync.Mutex
	creds map[string]*models.ExchangeCredential
}

func newMockCredentialStorage() *mockCredentialStorage {
	return &mockCredentialStorage{creds: make(map[string]*models.ExchangeCredential)}
}

func (m *mockCredentialStorage) SaveCredential(ctx context.Context, cred *models.ExchangeCredential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *cred
	if cred.Token != nil {
		token := *cred.Token
		copied.Token = &token
	}
	m.creds[cred.ID] = &copied
	return nil
}

func (m *mockCredentialStorage) GetCredential(ctx context.Context, id string) (*models.ExchangeCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cred, ok := m.creds[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *cred
	if cred.Token != nil {
		token := *cred.Token
		copied.Token = &token
	}
	return &copied, nil
}

func (m *mockCredentialStorage) ListCredentials(ctx context.Context, userID string) ([]*models.ExchangeCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*models.ExchangeCredential{}
	for _, c := range m.creds {
		if c.UserID == userID {
			copied := *c
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockCredentialStorage) DeleteCredential(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.creds[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(m.creds, id)
	return nil
}

func newTestCredentialService(t *testing.T, exchanges map[string]common.ExchangeConfig) (*Service, *mockCredentialStorage) {
	t.Helper()
	storage := newMockCredentialStorage()
	return NewService(storage, exchanges, arbor.NewLogger()), storage
}

func TestCreateCredentialRedactsSecrets(t *testing.T) {
	svc, storage := newTestCredentialService(t, nil)

	created, err := svc.CreateCredential(context.Background(), &models.ExchangeCredential{
		UserID:    "local",
		Exchange:  "kraken",
		Label:     "Main account",
		Kind:      models.CredentialAPIKey,
		APIKey:    "live-key-8842",
		APISecret: "super-secret-material",
	})
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}
	if !strings.HasPrefix(created.ID, "cred_") {
		t.Errorf("credential id: got %q, want cred_ prefix", created.ID)
	}
	if !strings.HasSuffix(created.APIKey, "8842") || strings.Contains(created.APIKey, "live-key") {
		t.Errorf("api key not redacted: %q", created.APIKey)
	}
	if !strings.HasSuffix(created.APISecret, "rial") || strings.Contains(created.APISecret, "super-secret") {
		t.Errorf("api secret not redacted: %q", created.APISecret)
	}

	// Raw material still lands in storage.
	stored, err := storage.GetCredential(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetCredential failed: %v", err)
	}
	if stored.APIKey != "live-key-8842" {
		t.Errorf("stored api key: got %q", stored.APIKey)
	}
}

func TestCreateCredentialValidation(t *testing.T) {
	svc, _ := newTestCredentialService(t, nil)
	ctx := context.Background()

	_, err := svc.CreateCredential(ctx, &models.ExchangeCredential{
		UserID: "local", Exchange: "kraken", Kind: models.CredentialAPIKey,
	})
	if err == nil {
		t.Error("api_key credential without key accepted")
	}

	_, err = svc.CreateCredential(ctx, &models.ExchangeCredential{
		UserID: "local", Exchange: "kraken", Kind: "password",
		APIKey: "k",
	})
	if err == nil {
		t.Error("unknown kind accepted")
	}

	// OAuth credentials must name a configured exchange.
	_, err = svc.CreateCredential(ctx, &models.ExchangeCredential{
		UserID: "local", Exchange: "unlisted", Kind: models.CredentialOAuth,
		Token: &oauth2.Token{RefreshToken: "rt"},
	})
	if !errors.Is(err, ErrUnknownExchange) {
		t.Errorf("error: got %v, want ErrUnknownExchange", err)
	}
}

func TestUpdateCredentialKeepsSecretsWhenEmpty(t *testing.T) {
	svc, storage := newTestCredentialService(t, nil)
	ctx := context.Background()

	created, err := svc.CreateCredential(ctx, &models.ExchangeCredential{
		UserID: "local", Exchange: "kraken", Label: "Main",
		Kind: models.CredentialAPIKey, APIKey: "live-key-8842", APISecret: "super-secret",
	})
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	// The client echoes back a redacted response with a new label and no
	// secret material.
	_, err = svc.UpdateCredential(ctx, &models.ExchangeCredential{
		ID:     created.ID,
		Label:  "Renamed",
		UserID: "local",
	})
	if err != nil {
		t.Fatalf("UpdateCredential failed: %v", err)
	}

	stored, _ := storage.GetCredential(ctx, created.ID)
	if stored.Label != "Renamed" {
		t.Errorf("label: got %q", stored.Label)
	}
	if stored.APIKey != "live-key-8842" || stored.APISecret != "super-secret" {
		t.Errorf("secrets lost on update: key=%q secret=%q", stored.APIKey, stored.APISecret)
	}
	if !stored.CreatedAt.Equal(created.CreatedAt) {
		t.Error("CreatedAt not preserved")
	}
}

func TestListCredentialsRedacted(t *testing.T) {
	svc, _ := newTestCredentialService(t, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.CreateCredential(ctx, &models.ExchangeCredential{
			UserID: "local", Exchange: "kraken", Label: fmt.Sprintf("acct-%d", i),
			Kind: models.CredentialAPIKey, APIKey: "live-key-material",
		})
		if err != nil {
			t.Fatalf("seed credential: %v", err)
		}
	}

	listed, err := svc.ListCredentials(ctx, "local")
	if err != nil {
		t.Fatalf("ListCredentials failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("listed: got %d, want 2", len(listed))
	}
	for _, cred := range listed {
		if strings.Contains(cred.APIKey, "live-key") {
			t.Errorf("unredacted key in list response: %q", cred.APIKey)
		}
	}
}

func TestRefreshToken(t *testing.T) {
	var tokenRequests int
	var gotGrantType, gotRefreshToken string

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		tokenRequests++
		gotGrantType = r.FormValue("grant_type")
		gotRefreshToken = r.FormValue("refresh_token")

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"new-access","token_type":"Bearer","refresh_token":"new-refresh","expires_in":3600}`)
	}))
	defer tokenServer.Close()

	exchanges := map[string]common.ExchangeConfig{
		"coinbase": {
			TokenURL:     tokenServer.URL + "/oauth/token",
			AuthURL:      tokenServer.URL + "/oauth/authorize",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
		},
	}
	svc, storage := newTestCredentialService(t, exchanges)
	ctx := context.Background()

	created, err := svc.CreateCredential(ctx, &models.ExchangeCredential{
		UserID: "local", Exchange: "coinbase", Label: "OAuth acct",
		Kind: models.CredentialOAuth,
		Token: &oauth2.Token{
			AccessToken:  "old-access",
			RefreshToken: "old-refresh",
			Expiry:       time.Now().Add(time.Hour), // still valid, refresh is forced anyway
		},
	})
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	refreshed, err := svc.RefreshToken(ctx, created.ID)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if tokenRequests != 1 {
		t.Fatalf("token requests: got %d, want 1", tokenRequests)
	}
	if gotGrantType != "refresh_token" {
		t.Errorf("grant_type: got %q", gotGrantType)
	}
	if gotRefreshToken != "old-refresh" {
		t.Errorf("refresh_token sent: got %q", gotRefreshToken)
	}

	// Response is redacted. Token material lives only in storage.
	if refreshed.Token.AccessToken != "" || refreshed.Token.RefreshToken != "" {
		t.Errorf("token material leaked in response: %+v", refreshed.Token)
	}

	stored, _ := storage.GetCredential(ctx, created.ID)
	if stored.Token.AccessToken != "new-access" {
		t.Errorf("stored access token: got %q", stored.Token.AccessToken)
	}
	if stored.Token.RefreshToken != "new-refresh" {
		t.Errorf("stored refresh token: got %q", stored.Token.RefreshToken)
	}
	if stored.Token.Expiry.IsZero() {
		t.Error("stored token expiry not set")
	}
}

func TestRefreshTokenGuards(t *testing.T) {
	svc, _ := newTestCredentialService(t, map[string]common.ExchangeConfig{})
	ctx := context.Background()

	created, err := svc.CreateCredential(ctx, &models.ExchangeCredential{
		UserID: "local", Exchange: "kraken", Label: "Keys",
		Kind: models.CredentialAPIKey, APIKey: "k",
	})
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	if _, err := svc.RefreshToken(ctx, created.ID); !errors.Is(err, ErrNotOAuth) {
		t.Errorf("api_key refresh: got %v, want ErrNotOAuth", err)
	}
	if _, err := svc.RefreshToken(ctx, "cred_missing"); !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("missing credential: got %v, want ErrNotFound", err)
	}
}

func TestRefreshTokenUpstreamFailure(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer tokenServer.Close()

	exchanges := map[string]common.ExchangeConfig{
		"coinbase": {TokenURL: tokenServer.URL, ClientID: "c", ClientSecret: "s"},
	}
	svc, storage := newTestCredentialService(t, exchanges)
	ctx := context.Background()

	created, err := svc.CreateCredential(ctx, &models.ExchangeCredential{
		UserID: "local", Exchange: "coinbase", Kind: models.CredentialOAuth,
		Token: &oauth2.Token{RefreshToken: "revoked"},
	})
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}

	if _, err := svc.RefreshToken(ctx, created.ID); err == nil {
		t.Fatal("expected refresh failure to surface")
	}

	// The stored token is untouched after a failed refresh.
	stored, _ := storage.GetCredential(ctx, created.ID)
	if stored.Token.RefreshToken != "revoked" {
		t.Errorf("stored refresh token changed: %q", stored.Token.RefreshToken)
	}
}
