package collector

import (
	"context"
	"errors"
	"time"

	"GBMForecast/internal/model"
)

// ErrDataUnavailable means the source answered but had no prices for the
// requested symbol and range.
var ErrDataUnavailable = errors.New("no price data for the requested symbol and range")

// Fetcher supplies daily closing prices for a symbol over [start, end).
type Fetcher interface {
	FetchDailyCloses(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error)
	Name() string
}

// CacheKeyer is implemented by fetchers whose output depends on configuration
// beyond their name, such as a seed or an endpoint.
type CacheKeyer interface {
	CacheKey() string
}

// CacheKey identifies the data f returns, for use as a price cache source key.
func CacheKey(f Fetcher) string {
	if k, ok := f.(CacheKeyer); ok {
		return k.CacheKey()
	}
	return f.Name()
}

// DefaultRange fills zero bounds: end defaults to now, start to one year before end.
func DefaultRange(start, end time.Time) (time.Time, time.Time) {
	if end.IsZero() {
		end = time.Now()
	}
	if start.IsZero() {
		start = end.AddDate(-1, 0, 0)
	}
	return start, end
}
