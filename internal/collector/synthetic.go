package collector

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"GBMForecast/internal/model"
)

// SyntheticFetcher produces an offline price history: Days daily returns drawn
// from N(MeanReturn, Volatility) compounded from StartPrice, keeping the last
// Keep closes. The defaults reproduce three years of prices with one kept.
type SyntheticFetcher struct {
	Seed       uint64
	StartPrice float64
	MeanReturn float64
	Volatility float64
	Days       int
	Keep       int
}

// NewSyntheticFetcher returns a fetcher with the default offline history shape.
func NewSyntheticFetcher(seed uint64) *SyntheticFetcher {
	return &SyntheticFetcher{
		Seed:       seed,
		StartPrice: 150,
		MeanReturn: 0.0005,
		Volatility: 0.02,
		Days:       756,
		Keep:       252,
	}
}

func (f *SyntheticFetcher) Name() string { return "synthetic" }

// CacheKey covers every field that shapes the generated history.
func (f *SyntheticFetcher) CacheKey() string {
	return fmt.Sprintf("synthetic:seed=%d,start=%g,mu=%g,sigma=%g,days=%d,keep=%d",
		f.Seed, f.StartPrice, f.MeanReturn, f.Volatility, f.Days, f.Keep)
}

// FetchDailyCloses ignores start; dates are the Keep weekdays ending before end.
func (f *SyntheticFetcher) FetchDailyCloses(ctx context.Context, symbol string, _, end time.Time) (*model.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Days <= 0 || f.StartPrice <= 0 {
		return nil, ErrDataUnavailable
	}
	_, end = DefaultRange(time.Time{}, end)

	dist := distuv.Normal{Mu: f.MeanReturn, Sigma: f.Volatility, Src: rand.NewPCG(f.Seed, 0)}
	prices := make([]float64, f.Days)
	level := f.StartPrice
	for i := range prices {
		level *= 1 + dist.Rand()
		prices[i] = level
	}

	keep := f.Keep
	if keep <= 0 || keep > len(prices) {
		keep = len(prices)
	}
	closes := prices[len(prices)-keep:]

	return &model.PriceSeries{
		Symbol: symbol,
		Dates:  weekdaysBefore(end, keep),
		Closes: append([]float64(nil), closes...),
	}, nil
}

// weekdaysBefore returns n ascending weekday dates, the last one strictly before end.
func weekdaysBefore(end time.Time, n int) []time.Time {
	dates := make([]time.Time, n)
	d := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	for i := n - 1; i >= 0; {
		d = d.AddDate(0, 0, -1)
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		dates[i] = d
		i--
	}
	return dates
}
