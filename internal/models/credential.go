package models

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Credential kind constants
const (
	CredentialAPIKey = "api_key"
	CredentialOAuth  = "oauth"
)

// ExchangeCredential represents stored exchange access credentials.
// Supports static API key pairs and OAuth token flows.
type ExchangeCredential struct {
	ID        string        `json:"id" badgerhold:"key"`
	UserID    string        `json:"user_id" badgerhold:"index"`
	Exchange  string        `json:"exchange"` // Provider key into the [exchanges] config table
	Label     string        `json:"label"`    // Human-readable name (e.g., "Bob's Kraken")
	Kind      string        `json:"kind"`     // api_key or oauth
	APIKey    string        `json:"api_key,omitempty"`
	APISecret string        `json:"api_secret,omitempty"`
	Token     *oauth2.Token `json:"token,omitempty"` // Populated for oauth kind
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Validate checks required credential fields
func (c *ExchangeCredential) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("credential id is required")
	}
	if c.Exchange == "" {
		return fmt.Errorf("credential exchange is required")
	}
	switch c.Kind {
	case CredentialAPIKey:
		if c.APIKey == "" {
			return fmt.Errorf("api_key credentials require an api key")
		}
	case CredentialOAuth:
		if c.Token == nil || c.Token.RefreshToken == "" {
			return fmt.Errorf("oauth credentials require a refresh token")
		}
	default:
		return fmt.Errorf("invalid credential kind: %s", c.Kind)
	}
	return nil
}

// Redacted returns a copy safe for API responses and logs.
// Secrets keep only their last 4 characters; oauth tokens keep expiry but no token material.
func (c *ExchangeCredential) Redacted() *ExchangeCredential {
	out := *c
	out.APIKey = MaskSecret(c.APIKey)
	out.APISecret = MaskSecret(c.APISecret)
	if c.Token != nil {
		out.Token = &oauth2.Token{
			TokenType: c.Token.TokenType,
			Expiry:    c.Token.Expiry,
		}
	}
	return &out
}

// MaskSecret hides all but the last 4 characters of a secret.
// Short secrets are fully masked.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
