// -----------------------------------------------------------------------
// Last Modified: Tuesday, 11th August 2026 10:05:44 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// LayoutStorage implements the LayoutStorage interface for Badger
type LayoutStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewLayoutStorage creates a new LayoutStorage instance
func NewLayoutStorage(db *BadgerDB, logger arbor.ILogger) interfaces.LayoutStorage {
	return &LayoutStorage{
		db:     db,
		logger: logger,
	}
}

// SaveLayout inserts or updates a layout by id
func (s *LayoutStorage) SaveLayout(ctx context.Context, layout *models.DashboardLayout) error {
	if layout.ID == "" {
		return fmt.Errorf("layout ID is required")
	}

	// Dereference so Find sees the same type prefix as Upsert
	if err := s.db.Store().Upsert(layout.ID, *layout); err != nil {
		s.logger.Error().Err(err).Str("layout_id", layout.ID).Msg("BadgerDB: Failed to upsert layout")
		return fmt.Errorf("failed to save layout: %w", err)
	}
	return nil
}

// GetLayout retrieves a layout by id
func (s *LayoutStorage) GetLayout(ctx context.Context, id string) (*models.DashboardLayout, error) {
	var layout models.DashboardLayout
	err := s.db.Store().Get(id, &layout)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get layout: %w", err)
	}
	return &layout, nil
}

// ListLayouts returns all layouts for a scope, default first then by
// UpdatedAt descending.
// FarmID is matched in memory: badgerhold queries on pointer fields are
// unreliable, so we narrow by the UserID index and filter.
func (s *LayoutStorage) ListLayouts(ctx context.Context, userID string, farmID *string) ([]*models.DashboardLayout, error) {
	var candidates []models.DashboardLayout
	if err := s.db.Store().Find(&candidates, badgerhold.Where("UserID").Eq(userID)); err != nil {
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}

	layouts := make([]*models.DashboardLayout, 0, len(candidates))
	for i := range candidates {
		if candidates[i].SameScope(userID, farmID) {
			layouts = append(layouts, &candidates[i])
		}
	}

	sort.SliceStable(layouts, func(i, j int) bool {
		if layouts[i].IsDefault != layouts[j].IsDefault {
			return layouts[i].IsDefault
		}
		return layouts[i].UpdatedAt.After(layouts[j].UpdatedAt)
	})

	return layouts, nil
}

// GetDefaultLayout returns the layout flagged default for a scope
func (s *LayoutStorage) GetDefaultLayout(ctx context.Context, userID string, farmID *string) (*models.DashboardLayout, error) {
	layouts, err := s.ListLayouts(ctx, userID, farmID)
	if err != nil {
		return nil, err
	}
	for _, layout := range layouts {
		if layout.IsDefault {
			return layout, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

// SaveAsDefault persists the layout as its scope's only default. The
// clear-and-set runs in one badger transaction so a crash can never leave
// zero or two defaults.
func (s *LayoutStorage) SaveAsDefault(ctx context.Context, layout *models.DashboardLayout) error {
	if layout.ID == "" {
		return fmt.Errorf("layout ID is required")
	}
	layout.IsDefault = true

	store := s.db.Store()
	err := store.Badger().Update(func(txn *badgerdb.Txn) error {
		var others []models.DashboardLayout
		query := badgerhold.Where("UserID").Eq(layout.UserID).And("IsDefault").Eq(true)
		if err := store.TxFind(txn, &others, query); err != nil {
			return fmt.Errorf("failed to find current defaults: %w", err)
		}

		for i := range others {
			if others[i].ID == layout.ID || !others[i].SameScope(layout.UserID, layout.FarmID) {
				continue
			}
			others[i].IsDefault = false
			others[i].UpdatedAt = time.Now()
			if err := store.TxUpsert(txn, others[i].ID, others[i]); err != nil {
				return fmt.Errorf("failed to clear default on %s: %w", others[i].ID, err)
			}
		}

		return store.TxUpsert(txn, layout.ID, *layout)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("layout_id", layout.ID).Msg("BadgerDB: Failed to save default layout")
		return fmt.Errorf("failed to save default layout: %w", err)
	}

	return nil
}

// DeleteLayout removes a layout by id
func (s *LayoutStorage) DeleteLayout(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.DashboardLayout{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete layout: %w", err)
	}
	return nil
}

// CountLayouts returns the number of stored layouts
func (s *LayoutStorage) CountLayouts(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.DashboardLayout{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count layouts: %w", err)
	}
	return int(count), nil
}
