package models

import (
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"ab", "**"},
		{"abcd", "****"},
		{"abcdefgh", "****efgh"},
		{"sk-live-1234567890", "**************7890"},
	}
	for _, tt := range tests {
		if got := MaskSecret(tt.in); got != tt.want {
			t.Errorf("MaskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExchangeCredentialRedacted(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	cred := &ExchangeCredential{
		ID:        "cred_1",
		UserID:    "local",
		Exchange:  "kraken",
		Kind:      CredentialOAuth,
		APIKey:    "key-12345678",
		APISecret: "secret-abcdefgh",
		Token: &oauth2.Token{
			AccessToken:  "access-token-value",
			RefreshToken: "refresh-token-value",
			TokenType:    "Bearer",
			Expiry:       expiry,
		},
	}

	red := cred.Redacted()

	if red.APIKey == cred.APIKey {
		t.Error("api key not masked")
	}
	if red.APISecret == cred.APISecret {
		t.Error("api secret not masked")
	}
	if red.Token.AccessToken != "" || red.Token.RefreshToken != "" {
		t.Errorf("token material leaked: %+v", red.Token)
	}
	if !red.Token.Expiry.Equal(expiry) {
		t.Errorf("token expiry: got %v, want %v", red.Token.Expiry, expiry)
	}

	// Original untouched
	if cred.APISecret != "secret-abcdefgh" || cred.Token.AccessToken != "access-token-value" {
		t.Error("Redacted mutated the original credential")
	}
}

func TestExchangeCredentialValidate(t *testing.T) {
	tests := []struct {
		name    string
		cred    ExchangeCredential
		wantErr bool
	}{
		{
			name: "valid api_key",
			cred: ExchangeCredential{ID: "cred_1", Exchange: "kraken", Kind: CredentialAPIKey, APIKey: "k"},
		},
		{
			name: "valid oauth",
			cred: ExchangeCredential{ID: "cred_2", Exchange: "coinbase", Kind: CredentialOAuth, Token: &oauth2.Token{RefreshToken: "r"}},
		},
		{
			name:    "api_key kind without key",
			cred:    ExchangeCredential{ID: "cred_3", Exchange: "kraken", Kind: CredentialAPIKey},
			wantErr: true,
		},
		{
			name:    "oauth kind without token",
			cred:    ExchangeCredential{ID: "cred_4", Exchange: "coinbase", Kind: CredentialOAuth},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			cred:    ExchangeCredential{ID: "cred_5", Exchange: "kraken", Kind: "password"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cred.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
