package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hotel-pricing-engine/backend/internal/storage/models"
)

func TestPeriodProfile(t *testing.T) {
	tests := []struct {
		r    models.DateRange
		want string
	}{
		{stay("2027-07-16", "2027-07-18"), "peak:weekend"},
		{stay("2027-07-19", "2027-07-22"), "peak:weekday"},
		{stay("2027-01-14", "2027-01-18"), "low:weekend"},
		{stay("2027-04-05", "2027-04-08"), "shoulder:weekday"},
	}
	for _, tt := range tests {
		if got := PeriodProfile(tt.r); got != tt.want {
			t.Errorf("PeriodProfile(%s) = %q, want %q", tt.r, got, tt.want)
		}
	}
}

func TestRisk(t *testing.T) {
	tests := []struct {
		name  string
		basis models.HistoricalBasis
		want  RiskLevel
	}{
		{"small sample", models.HistoricalBasis{SampleSize: 19, NoShowRate: 0.2, Confidence: 0.9}, RiskHigh},
		{"low confidence", models.HistoricalBasis{SampleSize: 100, NoShowRate: 0.2, Confidence: 0.4}, RiskHigh},
		{"rare no-shows", models.HistoricalBasis{SampleSize: 100, NoShowRate: 0.04, Confidence: 0.9}, RiskHigh},
		{"frequent no-shows", models.HistoricalBasis{SampleSize: 180, NoShowRate: 0.12, Confidence: 0.9}, RiskLow},
		{"moderate no-shows", models.HistoricalBasis{SampleSize: 180, NoShowRate: 0.07, Confidence: 0.9}, RiskMedium},
		{"moderate confidence", models.HistoricalBasis{SampleSize: 120, NoShowRate: 0.12, Confidence: 0.6}, RiskMedium},
	}
	for _, tt := range tests {
		if got := Risk(tt.basis); got != tt.want {
			t.Errorf("%s: Risk = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestAssessBoundsByHistory(t *testing.T) {
	tests := []struct {
		name        string
		basis       models.HistoricalBasis
		wantRisk    RiskLevel
		wantMax     int
		canOverbook bool
	}{
		{"low", models.HistoricalBasis{SampleSize: 200, NoShowRate: 0.12, SafeOversellEvents: 5, Confidence: 1}, RiskLow, 5, true},
		{"medium", models.HistoricalBasis{SampleSize: 200, NoShowRate: 0.07, SafeOversellEvents: 5, Confidence: 1}, RiskMedium, 2, true},
		{"medium without safe events", models.HistoricalBasis{SampleSize: 200, NoShowRate: 0.07, SafeOversellEvents: 1, Confidence: 1}, RiskMedium, 0, false},
		{"high", models.HistoricalBasis{SampleSize: 10, NoShowRate: 0.2, SafeOversellEvents: 5, Confidence: 0.05}, RiskHigh, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := &fakeHistory{basis: tt.basis}
			a := NewOverbookingAnalyzer(history, time.Second, fixedNow)

			got, err := a.Assess(context.Background(), stay("2027-07-16", "2027-07-18"), "Deluxe")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.RiskLevel != tt.wantRisk || got.MaxOverbooking != tt.wantMax || got.CanOverbook != tt.canOverbook {
				t.Fatalf("got %+v", got)
			}
			if got.MaxOverbooking > tt.basis.SafeOversellEvents {
				t.Fatalf("max overbooking %d exceeds safe events %d", got.MaxOverbooking, tt.basis.SafeOversellEvents)
			}
			if history.got != "deluxe/peak:weekend" {
				t.Fatalf("history queried with %q", history.got)
			}
			if got.Reason == "" {
				t.Fatal("expected a reason")
			}
		})
	}
}

func TestAssessDefaultsClosed(t *testing.T) {
	for name, history := range map[string]OverbookingHistory{
		"failure":        &fakeHistory{err: errBoom},
		"not configured": nil,
	} {
		a := NewOverbookingAnalyzer(history, time.Second, fixedNow)
		got, err := a.Assess(context.Background(), stay("2027-07-16", "2027-07-18"), models.RoomTypeSuite)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if got.CanOverbook || got.RiskLevel != RiskHigh || got.MaxOverbooking != 0 {
			t.Fatalf("%s: expected closed assessment, got %+v", name, got)
		}
	}
}

func TestAssessValidation(t *testing.T) {
	a := NewOverbookingAnalyzer(&fakeHistory{}, time.Second, fixedNow)

	if _, err := a.Assess(context.Background(), stay("2027-07-16", "2027-07-18"), " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty room type, got %v", err)
	}
	if _, err := a.Assess(context.Background(), stay("2027-07-18", "2027-07-18"), "suite"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty range, got %v", err)
	}
}
