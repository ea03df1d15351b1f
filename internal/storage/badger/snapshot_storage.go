package badger

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// pointSequence guarantees unique point keys even when two samples land in
// the same nanosecond
var pointSequence uint64

// SnapshotStorage implements the SnapshotStorage interface for Badger.
// Points are append-only; pruning on a schedule keeps the series bounded.
type SnapshotStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSnapshotStorage creates a new SnapshotStorage instance
func NewSnapshotStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SnapshotStorage {
	return &SnapshotStorage{
		db:     db,
		logger: logger,
	}
}

// SaveSnapshots appends one point per queue for a sampling tick
func (s *SnapshotStorage) SaveSnapshots(ctx context.Context, points []models.HistoricalPoint) error {
	for i := range points {
		if points[i].Queue == "" {
			return fmt.Errorf("snapshot queue name is required")
		}
		if points[i].Timestamp.IsZero() {
			points[i].Timestamp = time.Now()
		}

		seq := atomic.AddUint64(&pointSequence, 1)
		key := fmt.Sprintf("%s_%d_%d", points[i].Queue, points[i].Timestamp.UnixNano(), seq)
		if err := s.db.Store().Insert(key, points[i]); err != nil {
			return fmt.Errorf("failed to save snapshot point: %w", err)
		}
	}
	return nil
}

// ListSnapshots returns points within [from, to) ordered by timestamp
// ascending. An empty queue name matches all queues.
func (s *SnapshotStorage) ListSnapshots(ctx context.Context, queue string, from, to time.Time) ([]models.HistoricalPoint, error) {
	query := badgerhold.Where("Timestamp").Ge(from).And("Timestamp").Lt(to)
	if queue != "" {
		query = badgerhold.Where("Queue").Eq(queue).And("Timestamp").Ge(from).And("Timestamp").Lt(to)
	}

	var points []models.HistoricalPoint
	if err := s.db.Store().Find(&points, query); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].Timestamp.Equal(points[j].Timestamp) {
			return points[i].Queue < points[j].Queue
		}
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points, nil
}

// PruneSnapshots deletes points older than the cutoff and reports how many
// were removed
func (s *SnapshotStorage) PruneSnapshots(ctx context.Context, cutoff time.Time) (int, error) {
	query := badgerhold.Where("Timestamp").Lt(cutoff)

	count, err := s.db.Store().Count(&models.HistoricalPoint{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count prunable snapshots: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	if err := s.db.Store().DeleteMatching(&models.HistoricalPoint{}, query); err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}

	s.logger.Debug().Int("pruned", int(count)).Str("cutoff", cutoff.Format(time.RFC3339)).Msg("BadgerDB: Pruned snapshot points")
	return int(count), nil
}

// CountSnapshots returns the number of stored points
func (s *SnapshotStorage) CountSnapshots(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.HistoricalPoint{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return int(count), nil
}
