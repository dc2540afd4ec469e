// Package engine computes demand-adjusted room prices and answers availability
// and overbooking questions from injected collaborators.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/hotel-pricing-engine/backend/internal/cache"
	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

// DefaultCollaboratorTimeout bounds each collaborator call when Config leaves it zero.
const DefaultCollaboratorTimeout = 3 * time.Second

// MaxTrendDays is the longest history GetPricingTrends returns.
const MaxTrendDays = 365

// ErrRoomNotFound is returned when a room id is not in the catalog.
var ErrRoomNotFound = errors.New("room not found")

// Config holds engine settings.
type Config struct {
	CollaboratorTimeout time.Duration
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
	// Cache is shared with the caller when set, so schedulers can sweep it.
	Cache *cache.ResultCache
}

// Engine is the pricing and availability facade used by the API and schedulers.
type Engine struct {
	timeout time.Duration
	now     func() time.Time
	cache   *cache.ResultCache
	rooms   RoomCatalog
	prices  PriceHistory

	analyzer     *FactorAnalyzer
	adjuster     *PriceAdjuster
	availability *AvailabilityResolver
	calendar     *OccupancyCalendarBuilder
	overbooking  *OverbookingAnalyzer
	predictor    *AvailabilityPredictor
}

// New creates an engine over the given collaborators.
func New(cfg Config, c Collaborators) *Engine {
	if cfg.CollaboratorTimeout <= 0 {
		cfg.CollaboratorTimeout = DefaultCollaboratorTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.New()
	}

	t := cfg.CollaboratorTimeout
	return &Engine{
		timeout:      t,
		now:          cfg.Now,
		cache:        cfg.Cache,
		rooms:        c.Rooms,
		prices:       c.Prices,
		analyzer:     NewFactorAnalyzer(c.Occupancy, c.Demand, t, cfg.Now),
		adjuster:     NewPriceAdjuster(),
		availability: NewAvailabilityResolver(c.Reservations, c.Rooms, cfg.Cache, t, cfg.Now),
		calendar:     NewOccupancyCalendarBuilder(c.Reservations, c.Rooms, cfg.Cache, t),
		overbooking:  NewOverbookingAnalyzer(c.Overbooking, t, cfg.Now),
		predictor:    NewAvailabilityPredictor(c.Forecasts, t, cfg.Now),
	}
}

// CalculateDynamicPrice prices a stay in roomID starting from basePrice.
// Results computed with degraded factors are returned but not cached.
func (e *Engine) CalculateDynamicPrice(ctx context.Context, roomID string, r models.DateRange, basePrice float64) (PricingResult, error) {
	roomID = strings.TrimSpace(roomID)
	r = models.NewDateRange(r.CheckIn, r.CheckOut)

	inputErr := validateStay(r, e.now(), false)
	if roomID == "" {
		inputErr.add("room_id", "is required")
	}
	if math.IsNaN(basePrice) || math.IsInf(basePrice, 0) || basePrice <= 0 {
		inputErr.add("base_price", "must be a positive number")
	}
	if err := inputErr.orNil(); err != nil {
		return PricingResult{}, err
	}

	key := PricingKey(roomID, r, basePrice, e.now())
	keep := func(res PricingResult) bool { return len(res.DegradedFactors) == 0 }
	return cachedWhen(ctx, e.cache, key, e.timeout, keep, func(ctx context.Context) (PricingResult, error) {
		analysis, err := e.analyzer.Analyze(ctx, roomID, r)
		if err != nil {
			return PricingResult{}, fmt.Errorf("analyzing factors: %w", err)
		}

		result, err := e.adjuster.ComputePrice(basePrice, analysis.Factors, Classify(analysis.Factors.OccupancyRate))
		if err != nil {
			return PricingResult{}, err
		}
		result.RoomID = roomID
		result.MarketConditions = analysis.Conditions
		result.DegradedFactors = analysis.Degraded
		return result, nil
	})
}

// RoomBasePrice returns the configured base price of an active room.
func (e *Engine) RoomBasePrice(ctx context.Context, roomID string) (float64, error) {
	if e.rooms == nil {
		return 0, unavailable("rooms", errNotConfigured)
	}
	out := call(ctx, e.timeout, "rooms", func(ctx context.Context) ([]models.Room, error) {
		return e.rooms.ListRooms(ctx, []string{roomID})
	})
	if !out.OK() {
		return 0, out.Err
	}
	for _, room := range out.Value {
		if room.ID == roomID {
			return room.BasePrice, nil
		}
	}
	return 0, fmt.Errorf("%s: %w", roomID, ErrRoomNotFound)
}

// CheckAvailability reports whether a stay can be booked. Collaborator failures
// are returned as ErrServiceUnavailable, never as an available result.
func (e *Engine) CheckAvailability(ctx context.Context, q AvailabilityQuery) (AvailabilityResult, error) {
	return e.availability.CheckAvailability(ctx, q)
}

// GetAvailableRooms lists free rooms matching f, cheapest first.
func (e *Engine) GetAvailableRooms(ctx context.Context, r models.DateRange, f models.RoomFilter) ([]models.Room, error) {
	return e.availability.ListAvailableRooms(ctx, r, f)
}

// GetOccupancyCalendar returns a per-night occupancy view.
func (e *Engine) GetOccupancyCalendar(ctx context.Context, r models.DateRange, roomIDs []string) (OccupancyCalendar, error) {
	return e.calendar.BuildCalendar(ctx, r, roomIDs)
}

// CheckOverbookingOpportunity assesses overselling roomType for r.
func (e *Engine) CheckOverbookingOpportunity(ctx context.Context, r models.DateRange, roomType string) (OverbookingAssessment, error) {
	return e.overbooking.Assess(ctx, r, roomType)
}

// PredictAvailability forecasts demand for r.
func (e *Engine) PredictAvailability(ctx context.Context, r models.DateRange, roomType string) (models.Forecast, error) {
	return e.predictor.Predict(ctx, r, roomType)
}

// GetPricingTrends returns up to days recorded price points for roomID ending today,
// one per date (the latest recording wins), oldest first.
func (e *Engine) GetPricingTrends(ctx context.Context, roomID string, days int) ([]models.PricePoint, error) {
	roomID = strings.TrimSpace(roomID)
	inputErr := newInputError()
	if roomID == "" {
		inputErr.add("room_id", "is required")
	}
	if days < 1 || days > MaxTrendDays {
		inputErr.add("days", fmt.Sprintf("must be between 1 and %d", MaxTrendDays))
	}
	if err := inputErr.orNil(); err != nil {
		return nil, err
	}

	points := []models.PricePoint{}
	if e.prices == nil {
		return points, nil
	}

	to := models.Day(e.now())
	from := to.AddDate(0, 0, -(days - 1))
	out := call(ctx, e.timeout, "price history", func(ctx context.Context) ([]models.PricePoint, error) {
		return e.prices.GetPricePoints(ctx, roomID, from, to)
	})
	if !out.OK() {
		log.Printf("Price history unavailable for room %s: %v", roomID, out.Err)
		return points, nil
	}

	latest := make(map[string]models.PricePoint, len(out.Value))
	for _, p := range out.Value {
		day := models.Day(p.Date)
		if day.Before(from) || day.After(to) {
			continue
		}
		date := day.Format(models.DateLayout)
		if prev, ok := latest[date]; ok && !p.RecordedAt.After(prev.RecordedAt) {
			continue
		}
		p.Date = day
		latest[date] = p
	}
	for _, p := range latest {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points, nil
}

// ClearCache drops every cached result.
func (e *Engine) ClearCache() {
	e.cache.ClearAll()
}

// CacheStats reports cache usage.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// SweepCache removes expired entries and returns how many were dropped.
func (e *Engine) SweepCache() int {
	return e.cache.Sweep()
}
