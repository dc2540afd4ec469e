package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

// RiskLevel grades how likely an oversell is to walk a guest.
type RiskLevel string

// Risk levels
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Thresholds on the historical basis.
const (
	minOverbookingSample     = 20
	minOverbookingConfidence = 0.5
	minNoShowRate            = 0.05
	lowRiskNoShowRate        = 0.10
	lowRiskConfidence        = 0.8
)

// OverbookingAssessment is the verdict on overselling a room type for a stay.
type OverbookingAssessment struct {
	CanOverbook     bool                   `json:"canOverbook"`
	RiskLevel       RiskLevel              `json:"riskLevel"`
	MaxOverbooking  int                    `json:"maxOverbooking"`
	HistoricalBasis models.HistoricalBasis `json:"historicalBasis"`
	RoomType        string                 `json:"roomType"`
	Profile         string                 `json:"profile"`
	Reason          string                 `json:"reason,omitempty"`
}

// OverbookingAnalyzer decides whether overselling is safe from past outcomes.
type OverbookingAnalyzer struct {
	history OverbookingHistory
	timeout time.Duration
	now     func() time.Time
}

// NewOverbookingAnalyzer creates an analyzer.
func NewOverbookingAnalyzer(history OverbookingHistory, timeout time.Duration, now func() time.Time) *OverbookingAnalyzer {
	if now == nil {
		now = time.Now
	}
	return &OverbookingAnalyzer{history: history, timeout: timeout, now: now}
}

// PeriodProfile classifies a stay as "<season>:<weekend|weekday>".
func PeriodProfile(r models.DateRange) string {
	mix := "weekday"
	if _, weekend := DayOfWeekFactor(r); r.Nights() > 0 && weekend*2 >= r.Nights() {
		mix = "weekend"
	}
	return SeasonBand(r.CheckIn) + ":" + mix
}

// Assess grades the risk of overselling roomType for r. When history cannot be
// loaded the assessment is closed: no overbooking at high risk.
func (a *OverbookingAnalyzer) Assess(ctx context.Context, r models.DateRange, roomType string) (OverbookingAssessment, error) {
	r = models.NewDateRange(r.CheckIn, r.CheckOut)
	roomType = CanonicalRoomType(roomType)

	inputErr := validateStay(r, a.now(), true)
	if roomType == "" {
		inputErr.add("room_type", "is required")
	}
	if err := inputErr.orNil(); err != nil {
		return OverbookingAssessment{}, err
	}

	profile := PeriodProfile(r)
	closed := OverbookingAssessment{
		CanOverbook: false,
		RiskLevel:   RiskHigh,
		RoomType:    roomType,
		Profile:     profile,
	}

	if a.history == nil {
		closed.Reason = "Overbooking history is not configured"
		return closed, nil
	}
	basis := call(ctx, a.timeout, "overbooking history", func(ctx context.Context) (models.HistoricalBasis, error) {
		return a.history.GetHistoricalOverbookingOutcomes(ctx, roomType, profile)
	})
	if !basis.OK() {
		log.Printf("Overbooking history unavailable for %s/%s, closing: %v", roomType, profile, basis.Err)
		closed.Reason = "Historical outcomes unavailable"
		return closed, nil
	}

	h := basis.Value
	risk := Risk(h)
	allowance := MaxOverbooking(risk, h.SafeOversellEvents)
	return OverbookingAssessment{
		CanOverbook:     risk != RiskHigh && allowance > 0,
		RiskLevel:       risk,
		MaxOverbooking:  allowance,
		HistoricalBasis: h,
		RoomType:        roomType,
		Profile:         profile,
		Reason:          reason(risk, h, allowance),
	}, nil
}

// Risk grades a historical basis.
func Risk(h models.HistoricalBasis) RiskLevel {
	switch {
	case h.SampleSize < minOverbookingSample, h.Confidence < minOverbookingConfidence, h.NoShowRate < minNoShowRate:
		return RiskHigh
	case h.NoShowRate >= lowRiskNoShowRate && h.Confidence >= lowRiskConfidence:
		return RiskLow
	default:
		return RiskMedium
	}
}

// MaxOverbooking bounds the oversell allowance by the observed safe events.
func MaxOverbooking(risk RiskLevel, safeEvents int) int {
	if safeEvents < 0 {
		return 0
	}
	switch risk {
	case RiskLow:
		return safeEvents
	case RiskMedium:
		return safeEvents / 2
	default:
		return 0
	}
}

func reason(risk RiskLevel, h models.HistoricalBasis, allowance int) string {
	switch {
	case h.SampleSize < minOverbookingSample:
		return fmt.Sprintf("Insufficient history: %d reservations observed", h.SampleSize)
	case h.Confidence < minOverbookingConfidence:
		return fmt.Sprintf("Low confidence in history (%.2f)", h.Confidence)
	case h.NoShowRate < minNoShowRate:
		return fmt.Sprintf("No-show rate %.1f%% is too low to oversell", h.NoShowRate*100)
	case allowance == 0:
		return fmt.Sprintf("Only %d safe oversell event(s) observed", h.SafeOversellEvents)
	}
	return fmt.Sprintf("%s risk: no-show rate %.1f%% over %d reservations", risk, h.NoShowRate*100, h.SampleSize)
}
