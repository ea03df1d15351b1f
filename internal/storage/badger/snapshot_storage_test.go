package badger

import (
	"context"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/models"
)

func TestSnapshotStorageRoundTrip(t *testing.T) {
	db := newTestDB(t)
	storage := NewSnapshotStorage(db, arbor.NewLogger())
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	points := []models.HistoricalPoint{
		{Timestamp: base, Queue: "market-sync", Waiting: 3, Active: 1, Completed: 50},
		{Timestamp: base, Queue: "alerts", Waiting: 0, Active: 0, Completed: 12},
		{Timestamp: base.Add(time.Minute), Queue: "market-sync", Waiting: 2, Active: 2, Completed: 55},
	}
	if err := storage.SaveSnapshots(ctx, points); err != nil {
		t.Fatal(err)
	}

	all, err := storage.ListSnapshots(ctx, "", base.Add(-time.Minute), base.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d points, want 3", len(all))
	}
	// Ascending by timestamp
	if all[2].Queue != "market-sync" || all[2].Completed != 55 {
		t.Errorf("last point: %+v", all[2])
	}

	onlyMarket, err := storage.ListSnapshots(ctx, "market-sync", base.Add(-time.Minute), base.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(onlyMarket) != 2 {
		t.Errorf("market-sync: got %d points, want 2", len(onlyMarket))
	}
}

func TestSnapshotStorageWindowBounds(t *testing.T) {
	db := newTestDB(t)
	storage := NewSnapshotStorage(db, arbor.NewLogger())
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	points := []models.HistoricalPoint{
		{Timestamp: base.Add(-time.Hour), Queue: "q"},
		{Timestamp: base, Queue: "q"},
		{Timestamp: base.Add(time.Hour), Queue: "q"},
	}
	if err := storage.SaveSnapshots(ctx, points); err != nil {
		t.Fatal(err)
	}

	// [base, base+1h) keeps the middle point only
	got, err := storage.ListSnapshots(ctx, "q", base, base.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].Timestamp.Equal(base) {
		t.Errorf("window [from,to): got %+v", got)
	}
}

func TestSnapshotStoragePrune(t *testing.T) {
	db := newTestDB(t)
	storage := NewSnapshotStorage(db, arbor.NewLogger())
	ctx := context.Background()

	now := time.Now()
	points := []models.HistoricalPoint{
		{Timestamp: now.Add(-10 * 24 * time.Hour), Queue: "q"},
		{Timestamp: now.Add(-8 * 24 * time.Hour), Queue: "q"},
		{Timestamp: now.Add(-time.Hour), Queue: "q"},
	}
	if err := storage.SaveSnapshots(ctx, points); err != nil {
		t.Fatal(err)
	}

	pruned, err := storage.PruneSnapshots(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if pruned != 2 {
		t.Errorf("pruned: got %d, want 2", pruned)
	}

	count, err := storage.CountSnapshots(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("remaining: got %d, want 1", count)
	}

	// Second prune finds nothing
	pruned, err = storage.PruneSnapshots(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if pruned != 0 {
		t.Errorf("second prune: got %d, want 0", pruned)
	}
}
