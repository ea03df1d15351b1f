package goals

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
)

var _ interfaces.GoalService = (*Service)(nil)

// Service manages savings goals and computes their progress against the
// owner's live portfolio value.
type Service struct {
	storage interfaces.GoalStorage
	wallets interfaces.WalletService
	logger  arbor.ILogger
}

func NewService(storage interfaces.GoalStorage, wallets interfaces.WalletService, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		wallets: wallets,
		logger:  logger,
	}
}

func (s *Service) CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	if goal.ID == "" {
		goal.ID = common.NewGoalID()
	}
	now := time.Now()
	goal.CreatedAt = now
	goal.UpdatedAt = now

	if err := goal.Validate(); err != nil {
		return nil, err
	}
	if err := s.storage.SaveGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to save goal: %w", err)
	}

	s.logger.Info().
		Str("goal_id", goal.ID).
		Str("name", goal.Name).
		Float64("target_usd", goal.TargetUSD).
		Msg("Goal created")
	return goal, nil
}

func (s *Service) UpdateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	existing, err := s.storage.GetGoal(ctx, goal.ID)
	if err != nil {
		return nil, err
	}

	goal.CreatedAt = existing.CreatedAt
	goal.UpdatedAt = time.Now()
	if goal.UserID == "" {
		goal.UserID = existing.UserID
	}

	if err := goal.Validate(); err != nil {
		return nil, err
	}
	if err := s.storage.SaveGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to save goal: %w", err)
	}
	return goal, nil
}

func (s *Service) GetGoal(ctx context.Context, id string) (*models.Goal, error) {
	return s.storage.GetGoal(ctx, id)
}

func (s *Service) ListGoals(ctx context.Context, userID string) ([]*models.Goal, error) {
	return s.storage.ListGoals(ctx, userID)
}

func (s *Service) DeleteGoal(ctx context.Context, id string) error {
	if err := s.storage.DeleteGoal(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("goal_id", id).Msg("Goal deleted")
	return nil
}

// Progress reports how far the owner's portfolio has moved toward the
// target. Percent is capped at 100 and RemainingUSD floors at zero so an
// overshot goal reads as complete rather than negative.
func (s *Service) Progress(ctx context.Context, id string) (*models.GoalProgress, error) {
	goal, err := s.storage.GetGoal(ctx, id)
	if err != nil {
		return nil, err
	}

	current, err := s.wallets.PortfolioValue(ctx, goal.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to value portfolio: %w", err)
	}

	percent := 0.0
	if goal.TargetUSD > 0 {
		percent = current / goal.TargetUSD * 100
	}
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}

	remaining := goal.TargetUSD - current
	if remaining < 0 {
		remaining = 0
	}

	return &models.GoalProgress{
		GoalID:       goal.ID,
		TargetUSD:    goal.TargetUSD,
		CurrentUSD:   current,
		Percent:      percent,
		RemainingUSD: remaining,
	}, nil
}
