package model

import "time"

// PriceSeries holds daily closing prices for one symbol, oldest first.
type PriceSeries struct {
	Symbol string
	Dates  []time.Time
	Closes []float64
}

// Len returns the number of observations.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Closes)
}

// Last returns the most recent close. Callers must check Len first.
func (s *PriceSeries) Last() float64 {
	return s.Closes[len(s.Closes)-1]
}

// Span returns the first and last observation dates, zero values when undated.
func (s *PriceSeries) Span() (first, last time.Time) {
	if s == nil || len(s.Dates) == 0 {
		return time.Time{}, time.Time{}
	}
	return s.Dates[0], s.Dates[len(s.Dates)-1]
}
