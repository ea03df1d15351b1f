package models

import (
	"fmt"
	"time"
)

// Alert condition constants
const (
	AlertAbove = "above"
	AlertBelow = "below"
)

// Alert represents a price alert evaluated against spot prices on a schedule
type Alert struct {
	ID            string     `json:"id" badgerhold:"key"`
	UserID        string     `json:"user_id" badgerhold:"index"`
	WalletID      *string    `json:"wallet_id,omitempty"` // Optional wallet association
	Asset         string     `json:"asset"`               // Ticker watched (e.g., "btc")
	Condition     string     `json:"condition"`           // above or below
	Threshold     float64    `json:"threshold"`           // USD price that trips the alert
	Active        bool       `json:"active"`
	LastTriggered *time.Time `json:"last_triggered,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Validate checks required alert fields
func (a *Alert) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("alert id is required")
	}
	if a.Asset == "" {
		return fmt.Errorf("alert asset is required")
	}
	if a.Condition != AlertAbove && a.Condition != AlertBelow {
		return fmt.Errorf("invalid alert condition: %s", a.Condition)
	}
	if a.Threshold <= 0 {
		return fmt.Errorf("alert threshold must be positive")
	}
	return nil
}

// ShouldTrigger reports whether the given spot price trips the alert
func (a *Alert) ShouldTrigger(price float64) bool {
	switch a.Condition {
	case AlertAbove:
		return price > a.Threshold
	case AlertBelow:
		return price < a.Threshold
	default:
		return false
	}
}
