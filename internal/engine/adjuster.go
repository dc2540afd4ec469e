package engine

import (
	"math"

	"github.com/shopspring/decimal"
)

// Multiplier bounds applied after all factors are combined.
const (
	MinMultiplier = 0.5
	MaxMultiplier = 2.0
)

// PricingResult is the dynamic price for a stay together with its inputs.
type PricingResult struct {
	RoomID               string           `json:"room_id,omitempty"`
	BasePrice            float64          `json:"basePrice"`
	DynamicPrice         float64          `json:"dynamicPrice"`
	AdjustmentMultiplier float64          `json:"adjustmentMultiplier"`
	UnclampedMultiplier  float64          `json:"unclampedMultiplier"`
	Factors              PricingFactors   `json:"factors"`
	MarketConditions     MarketConditions `json:"marketConditions"`
	DemandLevel          DemandLevel      `json:"demandLevel"`
	Savings              float64          `json:"savings"`
	SavingsPercentage    int64            `json:"savingsPercentage"`
	DegradedFactors      []string         `json:"degradedFactors,omitempty"`
}

// PriceAdjuster combines pricing factors into one bounded multiplier.
type PriceAdjuster struct{}

// NewPriceAdjuster creates a price adjuster.
func NewPriceAdjuster() *PriceAdjuster {
	return &PriceAdjuster{}
}

// OccupancyTier is the bonus applied for the occupancy rate in place of the raw rate.
func OccupancyTier(rate float64) float64 {
	switch {
	case rate >= 0.9:
		return 1.3
	case rate >= 0.8:
		return 1.2
	case rate >= 0.6:
		return 1.1
	case rate <= 0.3:
		return 0.8
	default:
		return 1.0
	}
}

// Multiplier returns the unclamped product of the occupancy tier and the remaining factors.
func (p *PriceAdjuster) Multiplier(f PricingFactors) float64 {
	m := 1.0
	m *= OccupancyTier(f.OccupancyRate)
	m *= f.Seasonality
	m *= f.DayOfWeek
	m *= f.BookingWindow
	m *= f.LocalEvents
	m *= f.RoomTypeDemand
	return m
}

// ComputePrice applies the factors to basePrice. Rounding to whole currency units
// happens once, on the final price.
func (p *PriceAdjuster) ComputePrice(basePrice float64, factors PricingFactors, level DemandLevel) (PricingResult, error) {
	if math.IsNaN(basePrice) || math.IsInf(basePrice, 0) || basePrice <= 0 {
		inputErr := newInputError()
		inputErr.add("base_price", "must be a positive number")
		return PricingResult{}, inputErr
	}

	raw := p.Multiplier(factors)
	if math.IsNaN(raw) {
		raw = 1.0
	}
	multiplier := clamp(raw, MinMultiplier, MaxMultiplier)

	base := decimal.NewFromFloat(basePrice)
	dynamic := base.Mul(decimal.NewFromFloat(multiplier)).Round(0)
	savings := base.Sub(dynamic)
	percentage := savings.Div(base).Mul(decimal.NewFromInt(100)).Round(0)

	return PricingResult{
		BasePrice:            basePrice,
		DynamicPrice:         dynamic.InexactFloat64(),
		AdjustmentMultiplier: multiplier,
		UnclampedMultiplier:  raw,
		Factors:              factors,
		DemandLevel:          level,
		Savings:              savings.InexactFloat64(),
		SavingsPercentage:    percentage.IntPart(),
	}, nil
}
