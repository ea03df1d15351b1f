// Package common provides shared utilities and default configuration.
package common

// DefaultKVValue represents a default key/value pair that is seeded on startup.
type DefaultKVValue struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// GetDefaultKVValues returns the list of default KV values seeded on startup.
// This is the single source of truth for default account settings.
func GetDefaultKVValues() []DefaultKVValue {
	return []DefaultKVValue{
		{
			Key:         "theme",
			Value:       "dark",
			Description: "Dashboard colour theme",
		},
		{
			Key:         "display_currency",
			Value:       "usd",
			Description: "Currency used for portfolio valuations",
		},
		{
			Key:         "timezone",
			Value:       "UTC",
			Description: "Timezone for timestamps in the dashboard",
		},
	}
}
