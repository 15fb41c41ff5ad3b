package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"GBMForecast/internal/model"
	"GBMForecast/internal/recorder"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Series *model.PriceSeries
	Err    error
	Calls  int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyCloses(_ context.Context, symbol string, _, _ time.Time) (*model.PriceSeries, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Series == nil || m.Series.Len() == 0 {
		return nil, fmt.Errorf("mock %s: %w", symbol, ErrDataUnavailable)
	}
	return m.Series, nil
}

// RetryFetcher retries a failed fetch once after Delay. Missing data is final
// and is never retried.
type RetryFetcher struct {
	Fetcher Fetcher
	Delay   time.Duration
	Log     zerolog.Logger
}

// NewRetryFetcher wraps f with a single retry.
func NewRetryFetcher(f Fetcher, delay time.Duration, log zerolog.Logger) *RetryFetcher {
	return &RetryFetcher{Fetcher: f, Delay: delay, Log: log}
}

func (r *RetryFetcher) Name() string { return r.Fetcher.Name() }

func (r *RetryFetcher) CacheKey() string { return CacheKey(r.Fetcher) }

func (r *RetryFetcher) FetchDailyCloses(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	series, err := r.Fetcher.FetchDailyCloses(ctx, symbol, start, end)
	if err == nil || errors.Is(err, ErrDataUnavailable) || ctx.Err() != nil {
		return series, err
	}
	r.Log.Warn().Err(err).Str("symbol", symbol).Dur("delay", r.Delay).Msg("fetch failed, retrying once")

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(r.Delay):
	}
	series, retryErr := r.Fetcher.FetchDailyCloses(ctx, symbol, start, end)
	if retryErr != nil {
		return nil, fmt.Errorf("retry failed: %w (first attempt: %v)", retryErr, err)
	}
	return series, nil
}

// CachedFetcher serves closed historical ranges from a Recorder and records
// fresh fetches. Ranges ending within the last day always go to the source.
type CachedFetcher struct {
	Fetcher  Fetcher
	Recorder recorder.Recorder
	Log      zerolog.Logger
	now      func() time.Time
}

// NewCachedFetcher wraps f with the price cache in rec.
func NewCachedFetcher(f Fetcher, rec recorder.Recorder, log zerolog.Logger) *CachedFetcher {
	return &CachedFetcher{Fetcher: f, Recorder: rec, Log: log, now: time.Now}
}

func (c *CachedFetcher) Name() string { return c.Fetcher.Name() }

func (c *CachedFetcher) FetchDailyCloses(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	start, end = DefaultRange(start, end)
	source := CacheKey(c.Fetcher)
	cacheable := end.Before(c.now().Add(-24 * time.Hour))

	if cacheable {
		series, err := c.Recorder.LoadPrices(source, symbol, start, end)
		switch {
		case err == nil:
			c.Log.Debug().Str("symbol", symbol).Int("points", series.Len()).Msg("price cache hit")
			return series, nil
		case !errors.Is(err, recorder.ErrNotFound):
			c.Log.Warn().Err(err).Str("symbol", symbol).Msg("price cache read failed")
		}
	}

	series, err := c.Fetcher.FetchDailyCloses(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := c.Recorder.RecordPrices(source, start, end, series); err != nil {
			c.Log.Warn().Err(err).Str("symbol", symbol).Msg("price cache write failed")
		}
	}
	return series, nil
}
