package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// GoalStorage implements the GoalStorage interface for Badger
type GoalStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewGoalStorage creates a new GoalStorage instance
func NewGoalStorage(db *BadgerDB, logger arbor.ILogger) interfaces.GoalStorage {
	return &GoalStorage{
		db:     db,
		logger: logger,
	}
}

// SaveGoal inserts or updates a goal
func (s *GoalStorage) SaveGoal(ctx context.Context, goal *models.Goal) error {
	if goal.ID == "" {
		return fmt.Errorf("goal ID is required")
	}
	if err := s.db.Store().Upsert(goal.ID, *goal); err != nil {
		s.logger.Error().Err(err).Str("goal_id", goal.ID).Msg("BadgerDB: Failed to upsert goal")
		return fmt.Errorf("failed to save goal: %w", err)
	}
	return nil
}

// GetGoal retrieves a goal by id
func (s *GoalStorage) GetGoal(ctx context.Context, id string) (*models.Goal, error) {
	var goal models.Goal
	err := s.db.Store().Get(id, &goal)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return &goal, nil
}

// ListGoals returns a user's goals ordered by creation time descending
func (s *GoalStorage) ListGoals(ctx context.Context, userID string) ([]*models.Goal, error) {
	var found []models.Goal
	query := badgerhold.Where("UserID").Eq(userID).SortBy("CreatedAt").Reverse()
	if err := s.db.Store().Find(&found, query); err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	goals := make([]*models.Goal, len(found))
	for i := range found {
		goals[i] = &found[i]
	}
	return goals, nil
}

// DeleteGoal removes a goal by id
func (s *GoalStorage) DeleteGoal(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.Goal{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}
