// -----------------------------------------------------------------------
// Last Modified: Wednesday, 19th August 2026 11:41:27 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package alerts

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/marketdata"
	"github.com/ternarybob/tradedeck/internal/models"
)

// alertEmailKey is the settings key holding the notification recipient.
// When unset, triggered alerts go out over the websocket only.
const alertEmailKey = "alert_email"

// retriggerCooldown suppresses repeat notifications while a price sits on
// the wrong side of a threshold. Without it a 30s evaluation schedule would
// mail the user every tick.
const retriggerCooldown = time.Hour

// mailSender is the slice of the mailer the alert service needs.
type mailSender interface {
	Configured(ctx context.Context) bool
	Send(ctx context.Context, to, subject, body string) error
}

var _ interfaces.AlertService = (*Service)(nil)

// Service manages price alerts. CRUD runs against storage; Evaluate is
// called from the scheduler and checks every active alert against one
// batched spot price fetch.
type Service struct {
	storage    interfaces.AlertStorage
	prices     *marketdata.Client
	events     interfaces.EventService
	settings   interfaces.SettingsService
	mail       mailSender
	logger     arbor.ILogger
	vsCurrency string
	cooldown   time.Duration
}

// NewService creates an alert service. events, settings and mail may be nil
// in which case triggers are stamped and logged but not fanned out.
func NewService(storage interfaces.AlertStorage, prices *marketdata.Client, events interfaces.EventService, settings interfaces.SettingsService, mail mailSender, logger arbor.ILogger, vsCurrency string) *Service {
	if vsCurrency == "" {
		vsCurrency = "usd"
	}
	return &Service{
		storage:    storage,
		prices:     prices,
		events:     events,
		settings:   settings,
		mail:       mail,
		logger:     logger,
		vsCurrency: vsCurrency,
		cooldown:   retriggerCooldown,
	}
}

// CreateAlert stores a new alert. An empty id gets a generated one; new
// alerts start active unless the caller says otherwise.
func (s *Service) CreateAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	if alert == nil {
		return nil, fmt.Errorf("alert is required")
	}

	saved := *alert
	if saved.ID == "" {
		saved.ID = common.NewAlertID()
	}
	if saved.UserID == "" {
		saved.UserID = common.DefaultUserID
	}
	saved.Asset = strings.ToLower(strings.TrimSpace(saved.Asset))
	saved.CreatedAt = time.Now()
	saved.LastTriggered = nil

	if err := saved.Validate(); err != nil {
		return nil, err
	}
	if err := s.storage.SaveAlert(ctx, &saved); err != nil {
		return nil, fmt.Errorf("failed to save alert: %w", err)
	}

	s.logger.Info().
		Str("alert_id", saved.ID).
		Str("asset", saved.Asset).
		Str("condition", saved.Condition).
		Float64("threshold", saved.Threshold).
		Msg("Alert created")
	return &saved, nil
}

// UpdateAlert replaces an alert's watch parameters. CreatedAt and
// LastTriggered carry over from the stored copy so clients echoing a
// previous response cannot fake or clear the trigger stamp.
func (s *Service) UpdateAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	if alert == nil {
		return nil, fmt.Errorf("alert is required")
	}

	existing, err := s.storage.GetAlert(ctx, alert.ID)
	if err != nil {
		return nil, err
	}

	saved := *alert
	saved.Asset = strings.ToLower(strings.TrimSpace(saved.Asset))
	saved.CreatedAt = existing.CreatedAt
	saved.LastTriggered = existing.LastTriggered
	if saved.UserID == "" {
		saved.UserID = existing.UserID
	}

	if err := saved.Validate(); err != nil {
		return nil, err
	}
	if err := s.storage.SaveAlert(ctx, &saved); err != nil {
		return nil, fmt.Errorf("failed to save alert: %w", err)
	}
	return &saved, nil
}

func (s *Service) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	return s.storage.GetAlert(ctx, id)
}

func (s *Service) ListAlerts(ctx context.Context, userID string) ([]*models.Alert, error) {
	return s.storage.ListAlerts(ctx, userID)
}

func (s *Service) DeleteAlert(ctx context.Context, id string) error {
	if err := s.storage.DeleteAlert(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("alert_id", id).Msg("Alert deleted")
	return nil
}

// Evaluate fetches one batched spot quote for every asset under watch and
// trips the alerts whose condition holds. Each trip stamps LastTriggered,
// publishes an alert.triggered event and, when SMTP plus an alert_email
// setting are present, sends an email. Returns the number of alerts that
// triggered this pass.
func (s *Service) Evaluate(ctx context.Context) (int, error) {
	alerts, err := s.storage.ListActiveAlerts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active alerts: %w", err)
	}
	if len(alerts) == 0 {
		return 0, nil
	}

	seen := make(map[string]bool, len(alerts))
	assets := make([]string, 0, len(alerts))
	for _, alert := range alerts {
		asset := strings.ToLower(alert.Asset)
		if !seen[asset] {
			seen[asset] = true
			assets = append(assets, asset)
		}
	}
	sort.Strings(assets)

	prices, err := s.prices.Spots(ctx, assets, s.vsCurrency)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch spot prices: %w", err)
	}

	now := time.Now()
	triggered := 0
	for _, alert := range alerts {
		price, ok := prices[strings.ToLower(alert.Asset)]
		if !ok {
			s.logger.Warn().
				Str("alert_id", alert.ID).
				Str("asset", alert.Asset).
				Msg("No spot price for alert asset")
			continue
		}
		if !alert.ShouldTrigger(price) {
			continue
		}
		if alert.LastTriggered != nil && now.Sub(*alert.LastTriggered) < s.cooldown {
			continue
		}

		stamped := *alert
		when := now
		stamped.LastTriggered = &when
		if err := s.storage.SaveAlert(ctx, &stamped); err != nil {
			s.logger.Error().Err(err).
				Str("alert_id", alert.ID).
				Msg("Failed to stamp alert trigger")
			continue
		}
		triggered++

		s.logger.Info().
			Str("alert_id", stamped.ID).
			Str("asset", stamped.Asset).
			Str("condition", stamped.Condition).
			Float64("threshold", stamped.Threshold).
			Float64("price", price).
			Msg("Alert triggered")

		s.publishTrigger(ctx, &stamped, price)
		s.mailTrigger(ctx, &stamped, price)
	}

	return triggered, nil
}

func (s *Service) publishTrigger(ctx context.Context, alert *models.Alert, price float64) {
	if s.events == nil {
		return
	}

	event := interfaces.Event{
		Type:      interfaces.EventAlertTriggered,
		Timestamp: time.Now(),
		Payload: map[string]interface{}{
			"alert_id":  alert.ID,
			"user_id":   alert.UserID,
			"asset":     alert.Asset,
			"condition": alert.Condition,
			"threshold": alert.Threshold,
			"price":     price,
		},
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).
			Str("alert_id", alert.ID).
			Msg("Failed to publish alert event")
	}
}

func (s *Service) mailTrigger(ctx context.Context, alert *models.Alert, price float64) {
	if s.mail == nil || s.settings == nil {
		return
	}

	recipient, err := s.settings.Get(ctx, alertEmailKey)
	if err != nil || strings.TrimSpace(recipient) == "" {
		return
	}
	if !s.mail.Configured(ctx) {
		return
	}

	asset := strings.ToUpper(alert.Asset)
	subject := fmt.Sprintf("TradeDeck alert: %s %s %.2f", asset, alert.Condition, alert.Threshold)
	body := fmt.Sprintf("%s traded at %.2f %s, crossing your %s threshold of %.2f %s.\n\nAlert: %s\nTriggered: %s\n",
		asset, price, s.vsCurrency,
		alert.Condition, alert.Threshold, s.vsCurrency,
		alert.ID, alert.LastTriggered.UTC().Format(time.RFC1123))

	if err := s.mail.Send(ctx, recipient, subject, body); err != nil {
		s.logger.Warn().Err(err).
			Str("alert_id", alert.ID).
			Str("recipient", recipient).
			Msg("Failed to send alert email")
		return
	}

	s.logger.Info().
		Str("alert_id", alert.ID).
		Str("recipient", recipient).
		Msg("Alert email sent")
}
