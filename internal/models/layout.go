package models

import (
	"errors"
	"fmt"
	"time"
)

// Widget size constants
const (
	WidgetSizeSmall  = "small"
	WidgetSizeMedium = "medium"
	WidgetSizeLarge  = "large"
	WidgetSizeFull   = "full"
)

// ValidWidgetSizes lists the sizes the dashboard grid understands
var ValidWidgetSizes = []string{
	WidgetSizeSmall,
	WidgetSizeMedium,
	WidgetSizeLarge,
	WidgetSizeFull,
}

// IsValidWidgetSize reports whether s is a known widget size
func IsValidWidgetSize(s string) bool {
	for _, v := range ValidWidgetSizes {
		if s == v {
			return true
		}
	}
	return false
}

// DefaultLayoutID is the sentinel id of the built-in layout. It can never
// be deleted; it exists so a fresh account always has something to render.
const DefaultLayoutID = "default"

// WidgetConfig describes one widget slot on a dashboard layout.
// Settings is widget-type-specific and stored verbatim.
type WidgetConfig struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Size     string                 `json:"size"`
	Settings map[string]interface{} `json:"settings,omitempty"`
}

// Validate checks a single widget entry
func (w *WidgetConfig) Validate() error {
	if w.ID == "" {
		return fmt.Errorf("widget id is required")
	}
	if w.Type == "" {
		return fmt.Errorf("widget type is required")
	}
	if w.Size != "" && !IsValidWidgetSize(w.Size) {
		return fmt.Errorf("invalid widget size: %s", w.Size)
	}
	return nil
}

// DashboardLayout is a named, ordered collection of widgets persisted
// per (user, farm) scope. Widgets are stored verbatim; ordering is the
// display order.
type DashboardLayout struct {
	ID        string         `json:"id" badgerhold:"key"`
	Name      string         `json:"name"`
	IsDefault bool           `json:"is_default"`
	Widgets   []WidgetConfig `json:"widgets"`
	FarmID    *string        `json:"farm_id,omitempty" badgerhold:"index"`
	UserID    string         `json:"user_id" badgerhold:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Validate checks the layout, including widget id uniqueness
func (l *DashboardLayout) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("layout name is required")
	}
	if l.UserID == "" {
		return fmt.Errorf("layout user id is required")
	}
	seen := make(map[string]bool, len(l.Widgets))
	for i := range l.Widgets {
		if err := l.Widgets[i].Validate(); err != nil {
			return fmt.Errorf("widget %d: %w", i, err)
		}
		if seen[l.Widgets[i].ID] {
			return fmt.Errorf("duplicate widget id: %s", l.Widgets[i].ID)
		}
		seen[l.Widgets[i].ID] = true
	}
	return nil
}

// Clone returns a deep copy so callers can mutate widgets safely
func (l *DashboardLayout) Clone() *DashboardLayout {
	clone := *l
	if l.FarmID != nil {
		farmID := *l.FarmID
		clone.FarmID = &farmID
	}
	clone.Widgets = CloneWidgets(l.Widgets)
	return &clone
}

// SameScope reports whether the layout belongs to the given (user, farm) scope
func (l *DashboardLayout) SameScope(userID string, farmID *string) bool {
	if l.UserID != userID {
		return false
	}
	if (l.FarmID == nil) != (farmID == nil) {
		return false
	}
	if l.FarmID != nil && *l.FarmID != *farmID {
		return false
	}
	return true
}

// CloneWidgets deep-copies a widget slice, including settings maps
func CloneWidgets(widgets []WidgetConfig) []WidgetConfig {
	if widgets == nil {
		return nil
	}
	out := make([]WidgetConfig, len(widgets))
	for i, w := range widgets {
		out[i] = w
		if w.Settings != nil {
			settings := make(map[string]interface{}, len(w.Settings))
			for k, v := range w.Settings {
				settings[k] = v
			}
			out[i].Settings = settings
		}
	}
	return out
}

// ErrWidgetNotFound is returned when an operation names a widget id the
// layout does not contain.
var ErrWidgetNotFound = errors.New("widget not found")

// ErrDuplicateWidgetID is returned when adding a widget whose id is taken.
var ErrDuplicateWidgetID = errors.New("widget id already exists")

// AddWidget appends exactly one widget to the slice. The widget id must
// not collide with an existing one.
func AddWidget(widgets []WidgetConfig, w WidgetConfig) ([]WidgetConfig, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	for i := range widgets {
		if widgets[i].ID == w.ID {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateWidgetID, w.ID)
		}
	}
	out := CloneWidgets(widgets)
	return append(out, w), nil
}

// RemoveWidget removes exactly the widget with the given id and no others.
func RemoveWidget(widgets []WidgetConfig, widgetID string) ([]WidgetConfig, error) {
	index := -1
	for i := range widgets {
		if widgets[i].ID == widgetID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, fmt.Errorf("%w: %s", ErrWidgetNotFound, widgetID)
	}
	out := CloneWidgets(widgets)
	return append(out[:index], out[index+1:]...), nil
}

// ReorderWidgets moves the widget with fromID to the position currently
// occupied by toID. The result is a permutation of the input: the id set
// is preserved exactly.
func ReorderWidgets(widgets []WidgetConfig, fromID, toID string) ([]WidgetConfig, error) {
	fromIndex, toIndex := -1, -1
	for i := range widgets {
		if widgets[i].ID == fromID {
			fromIndex = i
		}
		if widgets[i].ID == toID {
			toIndex = i
		}
	}
	if fromIndex < 0 {
		return nil, fmt.Errorf("%w: %s", ErrWidgetNotFound, fromID)
	}
	if toIndex < 0 {
		return nil, fmt.Errorf("%w: %s", ErrWidgetNotFound, toID)
	}

	out := CloneWidgets(widgets)
	if fromIndex == toIndex {
		return out, nil
	}

	moved := out[fromIndex]
	out = append(out[:fromIndex], out[fromIndex+1:]...)
	out = append(out[:toIndex], append([]WidgetConfig{moved}, out[toIndex:]...)...)
	return out, nil
}
