// -------------------------------------------------------------------------
// Last Modified: Monday, 17th August 2026 9:05:14 am
// Modified By: Bob McAllan
// -------------------------------------------------------------------------

package settings

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/interfaces"
)

// ErrInvalidKey is returned for setting keys outside the allowed shape
var ErrInvalidKey = errors.New("invalid setting key")

// Setting keys are snake_case with optional dotted sections, e.g.
// "display_currency" or "widget.price_ticker.assets".
var settingKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)*$`)

// settingPair carries one key/value through validation
type settingPair struct {
	Key   string `validate:"required,max=64,setting_key"`
	Value string `validate:"max=4096"`
}

var _ interfaces.SettingsService = (*Service)(nil)

// Service stores per-account settings in the key/value store. SMTP
// credentials live here too, under smtp_* keys, so mail configuration can
// change without a restart.
type Service struct {
	kv       interfaces.KeyValueStorage
	validate *validator.Validate
	logger   arbor.ILogger
}

func NewService(kv interfaces.KeyValueStorage, logger arbor.ILogger) *Service {
	validate := validator.New()
	// Registration only fails for a blank tag name.
	_ = validate.RegisterValidation("setting_key", func(fl validator.FieldLevel) bool {
		return settingKeyPattern.MatchString(fl.Field().String())
	})
	return &Service{
		kv:       kv,
		validate: validate,
		logger:   logger,
	}
}

// SeedDefaults writes the default settings for any keys not yet present.
// Existing values are never overwritten.
func (s *Service) SeedDefaults(ctx context.Context) error {
	seeded := 0
	for _, def := range common.GetDefaultKVValues() {
		_, err := s.kv.Get(ctx, def.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, interfaces.ErrKeyNotFound) {
			return fmt.Errorf("failed to check setting %s: %w", def.Key, err)
		}
		if err := s.kv.Set(ctx, def.Key, def.Value, def.Description); err != nil {
			return fmt.Errorf("failed to seed setting %s: %w", def.Key, err)
		}
		seeded++
	}
	if seeded > 0 {
		s.logger.Info().Int("count", seeded).Msg("Default settings seeded")
	}
	return nil
}

func (s *Service) All(ctx context.Context) (map[string]string, error) {
	return s.kv.GetAll(ctx)
}

func (s *Service) Get(ctx context.Context, key string) (string, error) {
	return s.kv.Get(ctx, key)
}

// Update applies a batch of settings. Every pair is validated before the
// first write so a bad key cannot leave the batch half-applied.
func (s *Service) Update(ctx context.Context, values map[string]string) (map[string]string, error) {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		pair := settingPair{Key: key, Value: values[key]}
		if err := s.validate.Struct(pair); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidKey, key)
		}
	}

	for _, key := range keys {
		if err := s.kv.Set(ctx, key, values[key], ""); err != nil {
			return nil, fmt.Errorf("failed to store setting %s: %w", key, err)
		}
	}

	// Values stay out of the log, smtp_password travels through here.
	s.logger.Info().Strs("keys", keys).Msg("Settings updated")
	return s.kv.GetAll(ctx)
}

func (s *Service) Delete(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, key)
}

// SMTP assembles mail delivery settings from the smtp_* keys. Missing keys
// leave zero values; callers check Configured before dialling.
func (s *Service) SMTP(ctx context.Context) (interfaces.SMTPSettings, error) {
	smtp := interfaces.SMTPSettings{Port: 587}

	pairs, err := s.kv.ListByPrefix(ctx, "smtp_")
	if err != nil {
		return smtp, fmt.Errorf("failed to read smtp settings: %w", err)
	}

	for _, pair := range pairs {
		switch pair.Key {
		case "smtp_host":
			smtp.Host = pair.Value
		case "smtp_port":
			if port, err := strconv.Atoi(pair.Value); err == nil && port > 0 {
				smtp.Port = port
			}
		case "smtp_username":
			smtp.Username = pair.Value
		case "smtp_password":
			smtp.Password = pair.Value
		case "smtp_from":
			smtp.From = pair.Value
		}
	}
	return smtp, nil
}
