package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// CredentialStorage implements the CredentialStorage interface for Badger.
// Values are stored as-is; masking happens at the service layer so the
// refresh flow can read the real secrets.
type CredentialStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCredentialStorage creates a new CredentialStorage instance
func NewCredentialStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CredentialStorage {
	return &CredentialStorage{
		db:     db,
		logger: logger,
	}
}

// SaveCredential inserts or updates a credential
func (s *CredentialStorage) SaveCredential(ctx context.Context, cred *models.ExchangeCredential) error {
	if cred.ID == "" {
		return fmt.Errorf("credential ID is required")
	}
	if err := s.db.Store().Upsert(cred.ID, *cred); err != nil {
		// Never log the credential itself
		s.logger.Error().Err(err).Str("credential_id", cred.ID).Msg("BadgerDB: Failed to upsert credential")
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

// GetCredential retrieves a credential by id, secrets intact
func (s *CredentialStorage) GetCredential(ctx context.Context, id string) (*models.ExchangeCredential, error) {
	var cred models.ExchangeCredential
	err := s.db.Store().Get(id, &cred)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &cred, nil
}

// ListCredentials returns a user's credentials ordered by label
func (s *CredentialStorage) ListCredentials(ctx context.Context, userID string) ([]*models.ExchangeCredential, error) {
	var found []models.ExchangeCredential
	query := badgerhold.Where("UserID").Eq(userID).SortBy("Label")
	if err := s.db.Store().Find(&found, query); err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}

	creds := make([]*models.ExchangeCredential, len(found))
	for i := range found {
		creds[i] = &found[i]
	}
	return creds, nil
}

// DeleteCredential removes a credential by id
func (s *CredentialStorage) DeleteCredential(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.ExchangeCredential{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
