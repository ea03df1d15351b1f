package models

import (
	"fmt"
	"time"
)

// Goal represents a savings target measured against total portfolio value
type Goal struct {
	ID        string     `json:"id" badgerhold:"key"`
	UserID    string     `json:"user_id" badgerhold:"index"`
	Name      string     `json:"name"`
	TargetUSD float64    `json:"target_usd"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Validate checks required goal fields
func (g *Goal) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("goal id is required")
	}
	if g.Name == "" {
		return fmt.Errorf("goal name is required")
	}
	if g.TargetUSD <= 0 {
		return fmt.Errorf("goal target must be positive")
	}
	return nil
}

// GoalProgress is the computed progress of a goal against current portfolio value
type GoalProgress struct {
	GoalID       string  `json:"goal_id"`
	TargetUSD    float64 `json:"target_usd"`
	CurrentUSD   float64 `json:"current_usd"`
	Percent      float64 `json:"percent"`       // 0-100, capped at 100
	RemainingUSD float64 `json:"remaining_usd"` // 0 when target reached
}
