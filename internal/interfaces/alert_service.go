package interfaces

import (
	"context"

	"github.com/ternarybob/tradedeck/internal/models"
)

// AlertService manages price alerts and evaluates them against spot prices
type AlertService interface {
	CreateAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error)
	UpdateAlert(ctx context.Context, alert *models.Alert) (*models.Alert, error)
	GetAlert(ctx context.Context, id string) (*models.Alert, error)
	ListAlerts(ctx context.Context, userID string) ([]*models.Alert, error)
	DeleteAlert(ctx context.Context, id string) error

	// Evaluate checks every active alert against current spot prices and
	// returns the number of alerts that triggered. The scheduler calls this
	// on the alerts cron.
	Evaluate(ctx context.Context) (int, error)
}
