// Package models contains the domain models for the application.
package models

import (
	"math"
	"time"
)

// DateLayout is the wire format for stay dates.
const DateLayout = "2006-01-02"

// DateRange is a stay from check-in to check-out.
type DateRange struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// NewDateRange builds a range with both ends truncated to UTC midnight.
func NewDateRange(checkIn, checkOut time.Time) DateRange {
	return DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
}

// ParseDateRange parses two YYYY-MM-DD dates.
func ParseDateRange(checkIn, checkOut string) (DateRange, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return DateRange{}, err
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(in, out), nil
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Valid reports whether check-out is strictly after check-in.
func (r DateRange) Valid() bool {
	return r.CheckOut.After(r.CheckIn)
}

// Nights returns the number of nights, rounding partial days up.
func (r DateRange) Nights() int {
	if !r.Valid() {
		return 0
	}
	return int(math.Ceil(r.CheckOut.Sub(r.CheckIn).Hours() / 24))
}

// NightDates returns the calendar date of every night in the stay.
func (r DateRange) NightDates() []time.Time {
	nights := r.Nights()
	dates := make([]time.Time, 0, nights)
	start := Day(r.CheckIn)
	for i := 0; i < nights; i++ {
		dates = append(dates, start.AddDate(0, 0, i))
	}
	return dates
}

// Overlaps reports whether two half-open ranges share at least one instant.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && r.CheckOut.After(other.CheckIn)
}

// String formats the range as "checkIn..checkOut".
func (r DateRange) String() string {
	return r.CheckIn.UTC().Format(DateLayout) + ".." + r.CheckOut.UTC().Format(DateLayout)
}
