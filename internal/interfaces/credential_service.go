package interfaces

import (
	"context"

	"github.com/ternarybob/tradedeck/internal/models"
)

// CredentialService manages exchange access credentials. Every credential
// it returns is redacted; raw secret material never leaves the service.
type CredentialService interface {
	CreateCredential(ctx context.Context, cred *models.ExchangeCredential) (*models.ExchangeCredential, error)
	UpdateCredential(ctx context.Context, cred *models.ExchangeCredential) (*models.ExchangeCredential, error)
	GetCredential(ctx context.Context, id string) (*models.ExchangeCredential, error)
	ListCredentials(ctx context.Context, userID string) ([]*models.ExchangeCredential, error)
	DeleteCredential(ctx context.Context, id string) error

	// RefreshToken exchanges the stored refresh token for a new access
	// token using the exchange's configured OAuth2 endpoints
	RefreshToken(ctx context.Context, id string) (*models.ExchangeCredential, error)
}
