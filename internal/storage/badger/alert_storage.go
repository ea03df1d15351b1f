package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AlertStorage implements the AlertStorage interface for Badger
type AlertStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAlertStorage creates a new AlertStorage instance
func NewAlertStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AlertStorage {
	return &AlertStorage{
		db:     db,
		logger: logger,
	}
}

// SaveAlert inserts or updates an alert
func (s *AlertStorage) SaveAlert(ctx context.Context, alert *models.Alert) error {
	if alert.ID == "" {
		return fmt.Errorf("alert ID is required")
	}
	if err := s.db.Store().Upsert(alert.ID, *alert); err != nil {
		s.logger.Error().Err(err).Str("alert_id", alert.ID).Msg("BadgerDB: Failed to upsert alert")
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

// GetAlert retrieves an alert by id
func (s *AlertStorage) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	var alert models.Alert
	err := s.db.Store().Get(id, &alert)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return &alert, nil
}

// ListAlerts returns a user's alerts ordered by creation time descending
func (s *AlertStorage) ListAlerts(ctx context.Context, userID string) ([]*models.Alert, error) {
	var found []models.Alert
	query := badgerhold.Where("UserID").Eq(userID).SortBy("CreatedAt").Reverse()
	if err := s.db.Store().Find(&found, query); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	alerts := make([]*models.Alert, len(found))
	for i := range found {
		alerts[i] = &found[i]
	}
	return alerts, nil
}

// ListActiveAlerts returns every active alert, for the scheduled
// evaluation pass
func (s *AlertStorage) ListActiveAlerts(ctx context.Context) ([]*models.Alert, error) {
	var found []models.Alert
	if err := s.db.Store().Find(&found, badgerhold.Where("Active").Eq(true)); err != nil {
		return nil, fmt.Errorf("failed to list active alerts: %w", err)
	}

	alerts := make([]*models.Alert, len(found))
	for i := range found {
		alerts[i] = &found[i]
	}
	return alerts, nil
}

// DeleteAlert removes an alert by id
func (s *AlertStorage) DeleteAlert(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.Alert{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	return nil
}
