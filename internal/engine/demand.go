package engine

// DemandLevel is an ordinal classification of booking pressure.
type DemandLevel string

// Demand levels, lowest first.
const (
	DemandVeryLow  DemandLevel = "very_low"
	DemandLow      DemandLevel = "low"
	DemandMedium   DemandLevel = "medium"
	DemandHigh     DemandLevel = "high"
	DemandVeryHigh DemandLevel = "very_high"
)

// Rank returns the ordinal position of the level, or -1 for an unknown value.
func (d DemandLevel) Rank() int {
	switch d {
	case DemandVeryLow:
		return 0
	case DemandLow:
		return 1
	case DemandMedium:
		return 2
	case DemandHigh:
		return 3
	case DemandVeryHigh:
		return 4
	default:
		return -1
	}
}

// Classify maps an occupancy rate onto a demand level.
func Classify(occupancyRate float64) DemandLevel {
	switch {
	case occupancyRate >= 0.9:
		return DemandVeryHigh
	case occupancyRate >= 0.8:
		return DemandHigh
	case occupancyRate >= 0.6:
		return DemandMedium
	case occupancyRate >= 0.4:
		return DemandLow
	default:
		return DemandVeryLow
	}
}
