package models

// WidgetType describes one entry in the widget catalog. The catalog is
// loaded from widgets.yaml and supplies defaults when a widget is added
// without a title or size.
type WidgetType struct {
	Type        string                 `json:"type" yaml:"type"`
	Title       string                 `json:"title" yaml:"title"`
	Description string                 `json:"description,omitempty" yaml:"description,omitempty"`
	Size        string                 `json:"size" yaml:"size"`
	Settings    map[string]interface{} `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// WidgetCatalog is the widgets.yaml document shape
type WidgetCatalog struct {
	Widgets []WidgetType `json:"widgets" yaml:"widgets"`
}
