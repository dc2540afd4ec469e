package engine

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

// Neutral values applied when a collaborator cannot answer.
const (
	DefaultOccupancyRate  = 0.5
	DefaultRoomTypeDemand = 1.0
)

// Factor names as reported in DegradedFactors.
const (
	FactorOccupancyRate  = "occupancyRate"
	FactorRoomTypeDemand = "roomTypeDemand"
)

// PricingFactors are the independent signals that feed the price multiplier.
type PricingFactors struct {
	OccupancyRate  float64 `json:"occupancyRate"`
	Seasonality    float64 `json:"seasonality"`
	DayOfWeek      float64 `json:"dayOfWeek"`
	BookingWindow  float64 `json:"bookingWindow"`
	LocalEvents    float64 `json:"localEvents"`
	RoomTypeDemand float64 `json:"roomTypeDemand"`
}

// MarketConditions describe the inputs behind a price in display form.
type MarketConditions struct {
	Season        string `json:"season"`
	EventName     string `json:"event_name,omitempty"`
	LeadTimeDays  int    `json:"lead_time_days"`
	Nights        int    `json:"nights"`
	WeekendNights int    `json:"weekend_nights"`
}

// Analysis is the output of FactorAnalyzer.Analyze.
type Analysis struct {
	Factors    PricingFactors
	Conditions MarketConditions
	// Degraded lists factors that fell back to their neutral default.
	Degraded []string
}

// seasonality by month of check-in, January first.
var seasonality = [12]float64{0.80, 0.85, 0.90, 1.00, 1.10, 1.30, 1.40, 1.40, 1.10, 1.00, 0.85, 1.20}

type localEvent struct {
	Name    string
	Month   time.Month
	Day     int
	Premium float64
}

// localEvents are fixed annual dates that lift demand around check-in.
var localEvents = []localEvent{
	{Name: "New Year", Month: time.January, Day: 1, Premium: 1.5},
	{Name: "Valentine's Day", Month: time.February, Day: 14, Premium: 1.3},
	{Name: "Independence Day", Month: time.July, Day: 4, Premium: 1.4},
	{Name: "Halloween", Month: time.October, Day: 31, Premium: 1.2},
	{Name: "Christmas Eve", Month: time.December, Day: 24, Premium: 1.4},
	{Name: "Christmas", Month: time.December, Day: 25, Premium: 1.5},
	{Name: "New Year's Eve", Month: time.December, Day: 31, Premium: 1.6},
}

// eventToleranceDays is how far check-in may be from an event date and still match.
const eventToleranceDays = 2

// FactorAnalyzer computes pricing signals for a room and stay.
type FactorAnalyzer struct {
	occupancy OccupancySource
	demand    DemandSource
	timeout   time.Duration
	now       func() time.Time
}

// NewFactorAnalyzer creates an analyzer. Nil sources always degrade to defaults.
func NewFactorAnalyzer(occupancy OccupancySource, demand DemandSource, timeout time.Duration, now func() time.Time) *FactorAnalyzer {
	if now == nil {
		now = time.Now
	}
	return &FactorAnalyzer{
		occupancy: occupancy,
		demand:    demand,
		timeout:   timeout,
		now:       now,
	}
}

// Analyze computes all factors for the stay. Only an invalid range is an error;
// collaborator failures fall back to neutral defaults.
func (a *FactorAnalyzer) Analyze(ctx context.Context, roomID string, r models.DateRange) (Analysis, error) {
	if !r.Valid() {
		return Analysis{}, ErrDataUnavailable
	}

	var occupancy, demand Outcome[float64]
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		occupancy = a.fetchOccupancy(ctx, r)
	}()
	go func() {
		defer wg.Done()
		demand = a.fetchDemand(ctx, roomID, r)
	}()
	wg.Wait()

	var degraded []string
	if !occupancy.OK() {
		log.Printf("Occupancy unavailable for %s, using %.2f: %v", r, DefaultOccupancyRate, occupancy.Err)
		degraded = append(degraded, FactorOccupancyRate)
	}
	if !demand.OK() {
		log.Printf("Room demand unavailable for room %s, using %.2f: %v", roomID, DefaultRoomTypeDemand, demand.Err)
		degraded = append(degraded, FactorRoomTypeDemand)
	}

	leadDays := LeadTimeDays(a.now(), r.CheckIn)
	event, eventPremium := LocalEventFactor(r.CheckIn)
	dow, weekendNights := DayOfWeekFactor(r)

	return Analysis{
		Factors: PricingFactors{
			OccupancyRate:  clamp(occupancy.Or(DefaultOccupancyRate), 0, 1),
			Seasonality:    SeasonalityFactor(r.CheckIn),
			DayOfWeek:      dow,
			BookingWindow:  BookingWindowFactor(leadDays),
			LocalEvents:    eventPremium,
			RoomTypeDemand: math.Max(0, demand.Or(DefaultRoomTypeDemand)),
		},
		Conditions: MarketConditions{
			Season:        SeasonBand(r.CheckIn),
			EventName:     event,
			LeadTimeDays:  leadDays,
			Nights:        r.Nights(),
			WeekendNights: weekendNights,
		},
		Degraded: degraded,
	}, nil
}

func (a *FactorAnalyzer) fetchOccupancy(ctx context.Context, r models.DateRange) Outcome[float64] {
	if a.occupancy == nil {
		return Outcome[float64]{Err: unavailable("occupancy", errNotConfigured)}
	}
	return finite("occupancy", call(ctx, a.timeout, "occupancy", func(ctx context.Context) (float64, error) {
		return a.occupancy.GetOccupancyRate(ctx, r)
	}))
}

func (a *FactorAnalyzer) fetchDemand(ctx context.Context, roomID string, r models.DateRange) Outcome[float64] {
	if a.demand == nil {
		return Outcome[float64]{Err: unavailable("demand", errNotConfigured)}
	}
	return finite("demand", call(ctx, a.timeout, "demand", func(ctx context.Context) (float64, error) {
		return a.demand.GetRoomDemand(ctx, roomID, r)
	}))
}

// finite turns a NaN or infinite answer into a failed outcome.
func finite(name string, o Outcome[float64]) Outcome[float64] {
	if o.OK() && (math.IsNaN(o.Value) || math.IsInf(o.Value, 0)) {
		return Outcome[float64]{Err: unavailable(name, errNotFinite)}
	}
	return o
}

// SeasonalityFactor looks up the multiplier for the month of checkIn.
func SeasonalityFactor(checkIn time.Time) float64 {
	return seasonality[checkIn.UTC().Month()-1]
}

// SeasonBand names the season of checkIn: peak, shoulder or low.
func SeasonBand(checkIn time.Time) string {
	s := SeasonalityFactor(checkIn)
	switch {
	case s >= 1.3:
		return "peak"
	case s <= 0.85:
		return "low"
	default:
		return "shoulder"
	}
}

// NightWeight is the day-of-week weight of a single night.
func NightWeight(night time.Time) float64 {
	switch night.Weekday() {
	case time.Friday, time.Saturday:
		return 1.2
	case time.Sunday:
		return 1.1
	default:
		return 0.9
	}
}

// DayOfWeekFactor averages the per-night weights and counts Friday/Saturday nights.
func DayOfWeekFactor(r models.DateRange) (float64, int) {
	nights := r.NightDates()
	if len(nights) == 0 {
		return 1.0, 0
	}

	var sum float64
	weekend := 0
	for _, night := range nights {
		sum += NightWeight(night)
		if wd := night.Weekday(); wd == time.Friday || wd == time.Saturday {
			weekend++
		}
	}
	return sum / float64(len(nights)), weekend
}

// LeadTimeDays is the whole number of days from now until checkIn, rounded up.
func LeadTimeDays(now, checkIn time.Time) int {
	return int(math.Ceil(checkIn.Sub(now).Hours() / 24))
}

// BookingWindowFactor is the lead-time step function.
func BookingWindowFactor(days int) float64 {
	switch {
	case days <= 1:
		return 1.3
	case days <= 7:
		return 1.1
	case days <= 30:
		return 1.0
	case days <= 90:
		return 0.9
	default:
		return 0.8
	}
}

// LocalEventFactor returns the event whose date is within the tolerance of checkIn
// and its premium. The highest premium wins when several events match.
func LocalEventFactor(checkIn time.Time) (string, float64) {
	day := models.Day(checkIn)
	name, premium := "", 1.0
	for _, ev := range localEvents {
		if !nearEvent(day, ev) {
			continue
		}
		if ev.Premium > premium {
			name, premium = ev.Name, ev.Premium
		}
	}
	return name, premium
}

// nearEvent checks the event in the previous, current and next year so that
// late-December and early-January dates match across the boundary.
func nearEvent(day time.Time, ev localEvent) bool {
	for _, year := range []int{day.Year() - 1, day.Year(), day.Year() + 1} {
		date := time.Date(year, ev.Month, ev.Day, 0, 0, 0, 0, time.UTC)
		diff := math.Abs(day.Sub(date).Hours() / 24)
		if diff <= eventToleranceDays {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
