// -------------------------------------------------------------------------
// Last Modified: Friday, 14th August 2026 3:26:41 pm
// Modified By: Bob McAllan
// -------------------------------------------------------------------------

package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
)

var (
	// ErrUnknownExchange means the credential names an exchange with no
	// [exchanges] entry in the config
	ErrUnknownExchange = errors.New("unknown exchange")

	// ErrNotOAuth means a token operation was attempted on an api_key credential
	ErrNotOAuth = errors.New("credential is not oauth kind")
)

var _ interfaces.CredentialService = (*Service)(nil)

// Service stores exchange credentials and refreshes OAuth tokens against
// the per-exchange endpoints from the config. Secrets are redacted on the
// way out and never logged.
type Service struct {
	storage   interfaces.CredentialStorage
	exchanges map[string]common.ExchangeConfig
	logger    arbor.ILogger
}

func NewService(storage interfaces.CredentialStorage, exchanges map[string]common.ExchangeConfig, logger arbor.ILogger) *Service {
	if exchanges == nil {
		exchanges = map[string]common.ExchangeConfig{}
	}
	return &Service{
		storage:   storage,
		exchanges: exchanges,
		logger:    logger,
	}
}

func (s *Service) CreateCredential(ctx context.Context, cred *models.ExchangeCredential) (*models.ExchangeCredential, error) {
	if cred.ID == "" {
		cred.ID = common.NewCredentialID()
	}
	now := time.Now()
	cred.CreatedAt = now
	cred.UpdatedAt = now

	if err := cred.Validate(); err != nil {
		return nil, err
	}
	if cred.Kind == models.CredentialOAuth {
		if _, ok := s.exchanges[cred.Exchange]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownExchange, cred.Exchange)
		}
	}
	if err := s.storage.SaveCredential(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to save credential: %w", err)
	}

	s.logger.Info().
		Str("credential_id", cred.ID).
		Str("exchange", cred.Exchange).
		Str("kind", cred.Kind).
		Msg("Credential created")
	return cred.Redacted(), nil
}

// UpdateCredential replaces label and secret fields. Empty secret fields
// keep the stored values so clients can echo back redacted responses.
func (s *Service) UpdateCredential(ctx context.Context, cred *models.ExchangeCredential) (*models.ExchangeCredential, error) {
	existing, err := s.storage.GetCredential(ctx, cred.ID)
	if err != nil {
		return nil, err
	}

	if cred.UserID == "" {
		cred.UserID = existing.UserID
	}
	if cred.Exchange == "" {
		cred.Exchange = existing.Exchange
	}
	if cred.Kind == "" {
		cred.Kind = existing.Kind
	}
	if cred.APIKey == "" {
		cred.APIKey = existing.APIKey
	}
	if cred.APISecret == "" {
		cred.APISecret = existing.APISecret
	}
	if cred.Token == nil {
		cred.Token = existing.Token
	}
	cred.CreatedAt = existing.CreatedAt
	cred.UpdatedAt = time.Now()

	if err := cred.Validate(); err != nil {
		return nil, err
	}
	if err := s.storage.SaveCredential(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to save credential: %w", err)
	}
	return cred.Redacted(), nil
}

func (s *Service) GetCredential(ctx context.Context, id string) (*models.ExchangeCredential, error) {
	cred, err := s.storage.GetCredential(ctx, id)
	if err != nil {
		return nil, err
	}
	return cred.Redacted(), nil
}

func (s *Service) ListCredentials(ctx context.Context, userID string) ([]*models.ExchangeCredential, error) {
	creds, err := s.storage.ListCredentials(ctx, userID)
	if err != nil {
		return nil, err
	}
	redacted := make([]*models.ExchangeCredential, 0, len(creds))
	for _, cred := range creds {
		redacted = append(redacted, cred.Redacted())
	}
	return redacted, nil
}

func (s *Service) DeleteCredential(ctx context.Context, id string) error {
	if err := s.storage.DeleteCredential(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("credential_id", id).Msg("Credential deleted")
	return nil
}

// RefreshToken forces a refresh-token exchange regardless of the stored
// token's expiry. The seed token carries only the refresh token so the
// oauth2 transport cannot short-circuit on a still-valid access token.
func (s *Service) RefreshToken(ctx context.Context, id string) (*models.ExchangeCredential, error) {
	cred, err := s.storage.GetCredential(ctx, id)
	if err != nil {
		return nil, err
	}
	if cred.Kind != models.CredentialOAuth {
		return nil, fmt.Errorf("%w: %s", ErrNotOAuth, cred.Kind)
	}
	if cred.Token == nil || cred.Token.RefreshToken == "" {
		return nil, fmt.Errorf("credential %s has no refresh token", id)
	}

	provider, ok := s.exchanges[cred.Exchange]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExchange, cred.Exchange)
	}

	conf := &oauth2.Config{
		ClientID:     provider.ClientID,
		ClientSecret: provider.ClientSecret,
		RedirectURL:  provider.RedirectURL,
		Scopes:       provider.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  provider.AuthURL,
			TokenURL: provider.TokenURL,
		},
	}

	seed := &oauth2.Token{RefreshToken: cred.Token.RefreshToken}
	token, err := conf.TokenSource(ctx, seed).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token for %s: %w", cred.Exchange, err)
	}

	cred.Token = token
	cred.UpdatedAt = time.Now()
	if err := s.storage.SaveCredential(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to save refreshed credential: %w", err)
	}

	s.logger.Info().
		Str("credential_id", cred.ID).
		Str("exchange", cred.Exchange).
		Str("expires", token.Expiry.Format(time.RFC3339)).
		Msg("OAuth token refreshed")
	return cred.Redacted(), nil
}
