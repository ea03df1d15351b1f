package interfaces

import (
	"context"

	"github.com/ternarybob/tradedeck/internal/models"
)

// GoalService manages savings goals measured against portfolio value
type GoalService interface {
	CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error)
	UpdateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error)
	GetGoal(ctx context.Context, id string) (*models.Goal, error)
	ListGoals(ctx context.Context, userID string) ([]*models.Goal, error)
	DeleteGoal(ctx context.Context, id string) error

	// Progress prices the goal against the owner's current portfolio value
	Progress(ctx context.Context, id string) (*models.GoalProgress, error)
}
