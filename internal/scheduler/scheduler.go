// Package scheduler runs the periodic cache sweep and price snapshot jobs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hotel-pricing-engine/backend/internal/engine"
	"github.com/hotel-pricing-engine/backend/internal/storage/models"
	"github.com/hotel-pricing-engine/backend/internal/websocket"
	"github.com/robfig/cron/v3"
)

// Default job schedules.
const (
	DefaultSnapshotSchedule = "@every 1h"
	DefaultSweepSchedule    = "@every 1m"
)

// jobTimeout bounds one run of any job.
const jobTimeout = 2 * time.Minute

// Pricer prices stays and owns the result cache.
type Pricer interface {
	CalculateDynamicPrice(ctx context.Context, roomID string, r models.DateRange, basePrice float64) (engine.PricingResult, error)
	SweepCache() int
}

// RoomLister lists active rooms when called without ids.
type RoomLister interface {
	ListRooms(ctx context.Context, ids []string) ([]models.Room, error)
}

// SnapshotStore persists price points.
type SnapshotStore interface {
	Record(ctx context.Context, p *models.PricePoint) error
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config holds the job schedules in cron syntax.
type Config struct {
	SnapshotSchedule string
	SweepSchedule    string
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// Scheduler manages the background jobs.
type Scheduler struct {
	cron        *cron.Cron
	pricer      Pricer
	rooms       RoomLister
	snapshots   SnapshotStore
	broadcaster *websocket.EventBroadcaster
	cfg         Config

	// Serializes snapshot runs so a slow run is not overlapped by the next tick.
	snapshotMu sync.Mutex
}

// New creates a scheduler. hub may be nil.
func New(cfg Config, pricer Pricer, rooms RoomLister, snapshots SnapshotStore, hub *websocket.Hub) *Scheduler {
	if cfg.SnapshotSchedule == "" {
		cfg.SnapshotSchedule = DefaultSnapshotSchedule
	}
	if cfg.SweepSchedule == "" {
		cfg.SweepSchedule = DefaultSweepSchedule
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub)
	}

	return &Scheduler{
		cron:        cron.New(cron.WithSeconds()),
		pricer:      pricer,
		rooms:       rooms,
		snapshots:   snapshots,
		broadcaster: broadcaster,
		cfg:         cfg,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	log.Println("Starting pricing scheduler...")

	if _, err := s.cron.AddFunc(s.cfg.SweepSchedule, s.sweepCache); err != nil {
		return fmt.Errorf("scheduling cache sweep %q: %w", s.cfg.SweepSchedule, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.SnapshotSchedule, s.snapshotJob); err != nil {
		return fmt.Errorf("scheduling price snapshots %q: %w", s.cfg.SnapshotSchedule, err)
	}

	s.cron.Start()
	log.Printf("Pricing scheduler started (snapshots %s, cache sweep %s)", s.cfg.SnapshotSchedule, s.cfg.SweepSchedule)
	return nil
}

// Stop gracefully shuts down the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	log.Println("Stopping pricing scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Pricing scheduler stopped")
}

// NextRuns returns when each job runs next.
func (s *Scheduler) NextRuns() []time.Time {
	entries := s.cron.Entries()
	next := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		next = append(next, entry.Next)
	}
	return next
}

func (s *Scheduler) sweepCache() {
	if removed := s.pricer.SweepCache(); removed > 0 {
		log.Printf("Swept %d expired cache entries", removed)
	}
}

func (s *Scheduler) snapshotJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, _, err := s.RecordSnapshots(ctx); err != nil {
		log.Printf("Price snapshot run failed: %v", err)
	}
}

// RecordSnapshots prices tomorrow's one-night stay for every active room at its
// base price and stores the result. Rooms that fail to price are counted and skipped.
// Snapshots older than the longest trend window are removed afterwards.
func (s *Scheduler) RecordSnapshots(ctx context.Context) (recorded, failed int, err error) {
	s.snapshotMu.Lock()
	defer s.snapshotMu.Unlock()

	rooms, err := s.rooms.ListRooms(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("listing rooms: %w", err)
	}

	today := models.Day(s.cfg.Now())
	stay := models.NewDateRange(today.AddDate(0, 0, 1), today.AddDate(0, 0, 2))

	for _, room := range rooms {
		result, err := s.pricer.CalculateDynamicPrice(ctx, room.ID, stay, room.BasePrice)
		if err != nil {
			log.Printf("Failed to price room %s for snapshot: %v", room.ID, err)
			failed++
			continue
		}

		point := models.PricePoint{
			RoomID:       room.ID,
			Date:         stay.CheckIn,
			BasePrice:    result.BasePrice,
			DynamicPrice: result.DynamicPrice,
			Multiplier:   result.AdjustmentMultiplier,
			DemandLevel:  string(result.DemandLevel),
		}
		if err := s.snapshots.Record(ctx, &point); err != nil {
			log.Printf("Failed to record snapshot for room %s: %v", room.ID, err)
			failed++
			continue
		}
		recorded++
	}

	cutoff := today.AddDate(0, 0, -engine.MaxTrendDays)
	if removed, err := s.snapshots.DeleteBefore(ctx, cutoff); err != nil {
		log.Printf("Failed to prune old snapshots: %v", err)
	} else if removed > 0 {
		log.Printf("Pruned %d snapshots before %s", removed, cutoff.Format(models.DateLayout))
	}

	log.Printf("Recorded %d price snapshots for %s (%d failed)", recorded, stay.CheckIn.Format(models.DateLayout), failed)
	s.broadcaster.BroadcastSnapshotRecorded(stay.CheckIn, recorded, failed)
	return recorded, failed, nil
}
