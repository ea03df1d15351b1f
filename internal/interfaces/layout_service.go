package interfaces

import (
	"context"

	"github.com/ternarybob/tradedeck/internal/models"
)

// LayoutService manages dashboard layouts for a (user, farm) scope
type LayoutService interface {
	// LoadLayouts returns all layouts in scope, default first then by
	// UpdatedAt descending
	LoadLayouts(ctx context.Context, userID string, farmID *string) ([]*models.DashboardLayout, error)

	// ActiveLayout returns the scope's default layout, else the first
	// layout, else ErrNotFound
	ActiveLayout(ctx context.Context, userID string, farmID *string) (*models.DashboardLayout, error)

	// GetLayout returns one layout by id
	GetLayout(ctx context.Context, id string) (*models.DashboardLayout, error)

	// SaveLayout inserts or updates a layout. When makeDefault is set the
	// layout becomes the scope's only default, atomically.
	SaveLayout(ctx context.Context, layout *models.DashboardLayout, makeDefault bool) (*models.DashboardLayout, error)

	// SetDefault flips the scope's default to the given layout, atomically
	SetDefault(ctx context.Context, id string) (*models.DashboardLayout, error)

	// DeleteLayout removes a layout. The built-in layout and any layout
	// still flagged default are refused.
	DeleteLayout(ctx context.Context, id string) error

	// AddWidget appends exactly one widget. An empty widget id gets a
	// generated one; catalog defaults fill missing title/size/settings.
	AddWidget(ctx context.Context, layoutID string, widget models.WidgetConfig) (*models.DashboardLayout, error)

	// RemoveWidget removes exactly one widget by id
	RemoveWidget(ctx context.Context, layoutID, widgetID string) (*models.DashboardLayout, error)

	// ReorderWidget moves fromID to the position of toID; the result is a
	// permutation of the layout's widget ids
	ReorderWidget(ctx context.Context, layoutID, fromID, toID string) (*models.DashboardLayout, error)

	// Catalog returns the known widget types
	Catalog() []models.WidgetType
}
