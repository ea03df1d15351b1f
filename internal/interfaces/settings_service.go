package interfaces

import "context"

// SMTPSettings is the mail server configuration assembled from smtp_* keys
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Configured reports whether enough is present to attempt delivery
func (s SMTPSettings) Configured() bool {
	return s.Host != "" && s.From != ""
}

// SettingsService exposes the account settings key/value surface
type SettingsService interface {
	// SeedDefaults writes the default settings for keys not yet present
	SeedDefaults(ctx context.Context) error

	// All returns every setting as a flat string map
	All(ctx context.Context) (map[string]string, error)

	Get(ctx context.Context, key string) (string, error)

	// Update validates and applies a batch of settings. No key is written
	// unless every pair passes validation.
	Update(ctx context.Context, values map[string]string) (map[string]string, error)

	Delete(ctx context.Context, key string) error

	// SMTP assembles mail delivery settings from the smtp_* keys
	SMTP(ctx context.Context) (SMTPSettings, error)
}
