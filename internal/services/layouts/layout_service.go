// -----------------------------------------------------------------------
// Last Modified: Thursday, 13th August 2026 2:41:09 pm
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package layouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
)

// ErrUnknownWidgetType is returned when a widget names a type the catalog
// does not know.
var ErrUnknownWidgetType = errors.New("unknown widget type")

// ErrProtectedLayout is returned when deleting the built-in layout or a
// layout still flagged default.
var ErrProtectedLayout = errors.New("layout is protected")

var _ interfaces.LayoutService = (*Service)(nil)

// Service implements LayoutService on top of badger-backed layout storage.
type Service struct {
	storage interfaces.LayoutStorage
	events  interfaces.EventService
	catalog *Catalog
	logger  arbor.ILogger
}

// NewService creates a new layout service.
func NewService(storage interfaces.LayoutStorage, events interfaces.EventService, catalog *Catalog, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		events:  events,
		catalog: catalog,
		logger:  logger,
	}
}

// LoadLayouts returns all layouts in scope, default first then by UpdatedAt
// descending.
func (s *Service) LoadLayouts(ctx context.Context, userID string, farmID *string) ([]*models.DashboardLayout, error) {
	return s.storage.ListLayouts(ctx, userID, farmID)
}

// ActiveLayout returns the scope's default layout, else the most recently
// updated one, else ErrNotFound.
func (s *Service) ActiveLayout(ctx context.Context, userID string, farmID *string) (*models.DashboardLayout, error) {
	layout, err := s.storage.GetDefaultLayout(ctx, userID, farmID)
	if err == nil {
		return layout, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	layouts, err := s.storage.ListLayouts(ctx, userID, farmID)
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return layouts[0], nil
}

// GetLayout returns one layout by id.
func (s *Service) GetLayout(ctx context.Context, id string) (*models.DashboardLayout, error) {
	return s.storage.GetLayout(ctx, id)
}

// SaveLayout inserts or updates a layout. A new layout gets a generated id;
// widgets without ids get generated ones. When makeDefault is set the layout
// becomes the scope's only default in a single transaction. When it is not
// set an existing layout keeps its current default flag.
func (s *Service) SaveLayout(ctx context.Context, layout *models.DashboardLayout, makeDefault bool) (*models.DashboardLayout, error) {
	if layout == nil {
		return nil, fmt.Errorf("layout is required")
	}

	save := layout.Clone()
	now := time.Now()

	if save.ID == "" {
		save.ID = common.NewLayoutID()
		save.CreatedAt = now
	} else {
		existing, err := s.storage.GetLayout(ctx, save.ID)
		switch {
		case err == nil:
			save.CreatedAt = existing.CreatedAt
			if !makeDefault {
				save.IsDefault = existing.IsDefault
			}
		case errors.Is(err, interfaces.ErrNotFound):
			save.CreatedAt = now
		default:
			return nil, err
		}
	}
	save.UpdatedAt = now

	for i := range save.Widgets {
		if save.Widgets[i].ID == "" {
			save.Widgets[i].ID = common.NewWidgetID()
		}
	}

	if err := save.Validate(); err != nil {
		return nil, err
	}

	if makeDefault {
		save.IsDefault = true
		if err := s.storage.SaveAsDefault(ctx, save); err != nil {
			return nil, err
		}
	} else {
		if err := s.storage.SaveLayout(ctx, save); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("layout_id", save.ID).
		Str("user_id", save.UserID).
		Bool("default", save.IsDefault).
		Int("widgets", len(save.Widgets)).
		Msg("Layout saved")

	s.publishChange(ctx, "saved", save.ID)
	return save, nil
}

// SetDefault flips the scope's default to the given layout, atomically.
func (s *Service) SetDefault(ctx context.Context, id string) (*models.DashboardLayout, error) {
	layout, err := s.storage.GetLayout(ctx, id)
	if err != nil {
		return nil, err
	}

	layout.IsDefault = true
	layout.UpdatedAt = time.Now()
	if err := s.storage.SaveAsDefault(ctx, layout); err != nil {
		return nil, err
	}

	s.publishChange(ctx, "default_changed", layout.ID)
	return layout, nil
}

// DeleteLayout removes a layout. The built-in layout and any layout still
// flagged default are refused.
func (s *Service) DeleteLayout(ctx context.Context, id string) error {
	if id == models.DefaultLayoutID {
		return fmt.Errorf("%w: built-in layout cannot be deleted", ErrProtectedLayout)
	}

	layout, err := s.storage.GetLayout(ctx, id)
	if err != nil {
		return err
	}
	if layout.IsDefault {
		return fmt.Errorf("%w: default layout cannot be deleted, set another default first", ErrProtectedLayout)
	}

	if err := s.storage.DeleteLayout(ctx, id); err != nil {
		return err
	}

	s.logger.Info().
		Str("layout_id", id).
		Str("user_id", layout.UserID).
		Msg("Layout deleted")

	s.publishChange(ctx, "deleted", id)
	return nil
}

// EnsureBuiltin seeds the built-in layout for a user's global scope when it
// does not exist yet, so a fresh install always has something to render.
// Runs at startup; a user who made another layout default keeps it.
func (s *Service) EnsureBuiltin(ctx context.Context, userID string) error {
	_, err := s.storage.GetLayout(ctx, models.DefaultLayoutID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return err
	}

	now := time.Now()
	layout := &models.DashboardLayout{
		ID:        models.DefaultLayoutID,
		Name:      "Default",
		IsDefault: true,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, widgetType := range []string{"queue-stats", "queue-health", "portfolio-summary", "price-ticker"} {
		widget, err := s.catalog.ApplyDefaults(models.WidgetConfig{Type: widgetType})
		if err != nil {
			// catalog override without this type
			continue
		}
		widget.ID = common.NewWidgetID()
		layout.Widgets = append(layout.Widgets, widget)
	}

	if err := s.storage.SaveAsDefault(ctx, layout); err != nil {
		return fmt.Errorf("failed to seed built-in layout: %w", err)
	}

	s.logger.Info().
		Str("layout_id", layout.ID).
		Str("user_id", userID).
		Int("widgets", len(layout.Widgets)).
		Msg("Seeded built-in layout")

	return nil
}

// AddWidget appends exactly one widget. An empty widget id gets a generated
// one; catalog defaults fill missing title, size, and settings.
func (s *Service) AddWidget(ctx context.Context, layoutID string, widget models.WidgetConfig) (*models.DashboardLayout, error) {
	layout, err := s.storage.GetLayout(ctx, layoutID)
	if err != nil {
		return nil, err
	}

	widget, err = s.catalog.ApplyDefaults(widget)
	if err != nil {
		return nil, err
	}
	if widget.ID == "" {
		widget.ID = common.NewWidgetID()
	}

	widgets, err := models.AddWidget(layout.Widgets, widget)
	if err != nil {
		return nil, err
	}

	return s.saveWidgets(ctx, layout, widgets, "widget_added")
}

// RemoveWidget removes exactly one widget by id.
func (s *Service) RemoveWidget(ctx context.Context, layoutID, widgetID string) (*models.DashboardLayout, error) {
	layout, err := s.storage.GetLayout(ctx, layoutID)
	if err != nil {
		return nil, err
	}

	widgets, err := models.RemoveWidget(layout.Widgets, widgetID)
	if err != nil {
		return nil, err
	}

	return s.saveWidgets(ctx, layout, widgets, "widget_removed")
}

// ReorderWidget moves fromID to the position of toID. The persisted result
// is a permutation of the layout's widget ids.
func (s *Service) ReorderWidget(ctx context.Context, layoutID, fromID, toID string) (*models.DashboardLayout, error) {
	layout, err := s.storage.GetLayout(ctx, layoutID)
	if err != nil {
		return nil, err
	}

	widgets, err := models.ReorderWidgets(layout.Widgets, fromID, toID)
	if err != nil {
		return nil, err
	}

	return s.saveWidgets(ctx, layout, widgets, "widget_reordered")
}

// Catalog returns the known widget types.
func (s *Service) Catalog() []models.WidgetType {
	return s.catalog.Types()
}

func (s *Service) saveWidgets(ctx context.Context, layout *models.DashboardLayout, widgets []models.WidgetConfig, action string) (*models.DashboardLayout, error) {
	updated := layout.Clone()
	updated.Widgets = widgets
	updated.UpdatedAt = time.Now()

	if err := s.storage.SaveLayout(ctx, updated); err != nil {
		return nil, err
	}

	s.publishChange(ctx, action, updated.ID)
	return updated, nil
}

func (s *Service) publishChange(ctx context.Context, action, layoutID string) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, interfaces.Event{
		Type:      interfaces.EventLayoutChanged,
		Timestamp: time.Now(),
		Payload: map[string]interface{}{
			"action":    action,
			"layout_id": layoutID,
		},
	})
}
