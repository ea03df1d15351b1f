// Package layouts manages dashboard layouts and the widget type catalog.
// The catalog is loaded with resolution order:
// 1. User override: config widgets.catalog_path
// 2. Embedded default: internal/services/layouts/widgets.yaml
package layouts

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed widgets.yaml
var embeddedCatalog []byte

// Catalog is the widget type registry. Lookup is by widget type name;
// Types preserves the file order for the API.
type Catalog struct {
	types map[string]models.WidgetType
	order []models.WidgetType
}

// LoadCatalog builds the catalog from the override file when set and
// readable, falling back to the embedded default.
func LoadCatalog(overridePath string, logger arbor.ILogger) (*Catalog, error) {
	data := embeddedCatalog

	if overridePath != "" {
		fileData, err := os.ReadFile(overridePath)
		if err != nil {
			if logger != nil {
				logger.Warn().
					Err(err).
					Str("path", overridePath).
					Msg("Widget catalog override unreadable, using embedded catalog")
			}
		} else {
			data = fileData
		}
	}

	return parseCatalog(data)
}

func parseCatalog(data []byte) (*Catalog, error) {
	var doc models.WidgetCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse widget catalog: %w", err)
	}
	if len(doc.Widgets) == 0 {
		return nil, fmt.Errorf("widget catalog is empty")
	}

	c := &Catalog{
		types: make(map[string]models.WidgetType, len(doc.Widgets)),
		order: make([]models.WidgetType, 0, len(doc.Widgets)),
	}
	for _, w := range doc.Widgets {
		if w.Type == "" {
			return nil, fmt.Errorf("widget catalog entry without a type")
		}
		if _, exists := c.types[w.Type]; exists {
			return nil, fmt.Errorf("duplicate widget catalog type: %s", w.Type)
		}
		if w.Size != "" && !models.IsValidWidgetSize(w.Size) {
			return nil, fmt.Errorf("widget catalog type %s: invalid size %q", w.Type, w.Size)
		}
		c.types[w.Type] = w
		c.order = append(c.order, w)
	}

	return c, nil
}

// Lookup returns the catalog entry for a widget type.
func (c *Catalog) Lookup(widgetType string) (models.WidgetType, bool) {
	w, ok := c.types[widgetType]
	return w, ok
}

// Types returns every known widget type in catalog order.
func (c *Catalog) Types() []models.WidgetType {
	return append([]models.WidgetType(nil), c.order...)
}

// ApplyDefaults fills a widget's missing title, size, and settings from its
// catalog entry. Unknown types are rejected.
func (c *Catalog) ApplyDefaults(w models.WidgetConfig) (models.WidgetConfig, error) {
	entry, ok := c.Lookup(w.Type)
	if !ok {
		return w, fmt.Errorf("%w: %s", ErrUnknownWidgetType, w.Type)
	}

	if w.Title == "" {
		w.Title = entry.Title
	}
	if w.Size == "" {
		w.Size = entry.Size
	}
	if w.Settings == nil && entry.Settings != nil {
		settings := make(map[string]interface{}, len(entry.Settings))
		for k, v := range entry.Settings {
			settings[k] = v
		}
		w.Settings = settings
	}

	return w, nil
}
