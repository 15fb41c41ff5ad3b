package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GBMForecast/internal/model"
	"GBMForecast/internal/recorder"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func yahooServer(t *testing.T, status int, body string) (*httptest.Server, *YahooFetcher) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		assert.NotEmpty(t, r.URL.Query().Get("period2"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	return srv, f
}

func TestYahooFetcher_PrefersAdjCloseAndSkipsNulls(t *testing.T) {
	// Timestamps arrive out of order; the third bar is a null holiday.
	body := `{"chart":{"result":[{
		"timestamp":[1704326400,1704240000,1704412800],
		"indicators":{
			"quote":[{"close":[11,10,null]}],
			"adjclose":[{"adjclose":[10.5,9.5,null]}]
		}}],"error":null}}`
	_, f := yahooServer(t, http.StatusOK, body)

	series, err := f.FetchDailyCloses(context.Background(), "AAPL", day(2024, 1, 1), day(2024, 1, 10))
	require.NoError(t, err)
	assert.Equal(t, "AAPL", series.Symbol)
	assert.Equal(t, []float64{9.5, 10.5}, series.Closes)
	assert.Equal(t, day(2024, 1, 3), series.Dates[0])
	assert.Equal(t, day(2024, 1, 4), series.Dates[1])
}

func TestYahooFetcher_FallsBackToClose(t *testing.T) {
	body := `{"chart":{"result":[{"timestamp":[1704240000,1704326400],
		"indicators":{"quote":[{"close":[10,11]}]}}]}}`
	_, f := yahooServer(t, http.StatusOK, body)

	series, err := f.FetchDailyCloses(context.Background(), "AAPL", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 11}, series.Closes)
}

func TestYahooFetcher_Unavailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"not found", http.StatusNotFound, `{}`},
		{"api error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`},
		{"empty result", http.StatusOK, `{"chart":{"result":[]}}`},
		{"all null", http.StatusOK, `{"chart":{"result":[{"timestamp":[1704240000],"indicators":{"quote":[{"close":[null]}]}}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, f := yahooServer(t, tt.status, tt.body)
			_, err := f.FetchDailyCloses(context.Background(), "ZZZZ", time.Time{}, time.Time{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDataUnavailable), "got %v", err)
		})
	}
}

func TestYahooFetcher_ServerError(t *testing.T) {
	_, f := yahooServer(t, http.StatusBadGateway, "oops")
	_, err := f.FetchDailyCloses(context.Background(), "AAPL", time.Time{}, time.Time{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDataUnavailable))
}

func TestYahooFetcher_SymbolMap(t *testing.T) {
	f := NewYahooFetcher("")
	assert.Equal(t, "^GSPC", f.yahooSymbol("SPX"))
	assert.Equal(t, "MSFT", f.yahooSymbol("MSFT"))
}

func TestVsTraderFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/bars/daily", r.URL.Path)
		assert.Equal(t, "SPY", r.URL.Query().Get("symbol"))
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("start"))
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"timestamp":1704326400,"close":471},{"timestamp":1704240000,"close":470},{"timestamp":1704412800,"close":0}]`))
	}))
	defer srv.Close()

	f := NewVsTraderFetcher(srv.URL, "key", "")
	series, err := f.FetchDailyCloses(context.Background(), "SPY", day(2024, 1, 1), day(2024, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, []float64{470, 471}, series.Closes)
}

func TestBarsToSeries(t *testing.T) {
	series, err := barsToSeries("AAPL", []marketdata.Bar{
		{Timestamp: day(2024, 1, 2), Close: 185},
		{Timestamp: day(2024, 1, 3), Close: 0},
		{Timestamp: day(2024, 1, 4), Close: 182},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{185, 182}, series.Closes)

	_, err = barsToSeries("AAPL", nil)
	assert.True(t, errors.Is(err, ErrDataUnavailable))
}

type stubBars struct {
	req marketdata.GetBarsRequest
}

func (s *stubBars) GetBars(_ string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
	s.req = req
	return []marketdata.Bar{{Timestamp: day(2024, 1, 2), Close: 10}, {Timestamp: day(2024, 1, 3), Close: 11}}, nil
}

func TestAlpacaFetcher(t *testing.T) {
	stub := &stubBars{}
	f := &AlpacaFetcher{client: stub}
	series, err := f.FetchDailyCloses(context.Background(), "AAPL", day(2024, 1, 1), day(2024, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, series.Len())
	assert.Equal(t, marketdata.OneDay, stub.req.TimeFrame)
	assert.Equal(t, marketdata.IEX, stub.req.Feed)
	assert.Equal(t, marketdata.All, stub.req.Adjustment)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.FetchDailyCloses(ctx, "AAPL", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyntheticFetcher_Deterministic(t *testing.T) {
	end := day(2024, 6, 3)
	a, err := NewSyntheticFetcher(42).FetchDailyCloses(context.Background(), "SYN", time.Time{}, end)
	require.NoError(t, err)
	b, err := NewSyntheticFetcher(42).FetchDailyCloses(context.Background(), "SYN", time.Time{}, end)
	require.NoError(t, err)
	c, err := NewSyntheticFetcher(7).FetchDailyCloses(context.Background(), "SYN", time.Time{}, end)
	require.NoError(t, err)

	assert.Equal(t, 252, a.Len())
	assert.Equal(t, a.Closes, b.Closes)
	assert.NotEqual(t, a.Closes, c.Closes)
	for _, v := range a.Closes {
		assert.Positive(t, v)
	}
	first, last := a.Span()
	assert.True(t, first.Before(last))
	assert.True(t, last.Before(end))
	for _, d := range a.Dates {
		assert.NotEqual(t, time.Saturday, d.Weekday())
		assert.NotEqual(t, time.Sunday, d.Weekday())
	}
}

// flakyFetcher fails the first n calls with err.
type flakyFetcher struct {
	n     int
	err   error
	calls atomic.Int32
}

func (f *flakyFetcher) Name() string { return "flaky" }

func (f *flakyFetcher) FetchDailyCloses(_ context.Context, symbol string, _, _ time.Time) (*model.PriceSeries, error) {
	if int(f.calls.Add(1)) <= f.n {
		return nil, f.err
	}
	return &model.PriceSeries{Symbol: symbol, Closes: []float64{1, 2}}, nil
}

func TestRetryFetcher(t *testing.T) {
	transport := errors.New("connection reset")
	tests := []struct {
		name      string
		inner     *flakyFetcher
		wantErr   error
		wantCalls int32
	}{
		{"succeeds on retry", &flakyFetcher{n: 1, err: transport}, nil, 2},
		{"gives up after one retry", &flakyFetcher{n: 5, err: transport}, transport, 2},
		{"missing data is final", &flakyFetcher{n: 5, err: ErrDataUnavailable}, ErrDataUnavailable, 1},
		{"first try succeeds", &flakyFetcher{}, nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRetryFetcher(tt.inner, time.Millisecond, zerolog.Nop())
			series, err := r.FetchDailyCloses(context.Background(), "AAPL", time.Time{}, time.Time{})
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 2, series.Len())
			}
			assert.Equal(t, tt.wantCalls, tt.inner.calls.Load())
		})
	}
}

func TestRetryFetcher_Cancelled(t *testing.T) {
	inner := &flakyFetcher{n: 5, err: errors.New("timeout")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRetryFetcher(inner, time.Hour, zerolog.Nop()).FetchDailyCloses(ctx, "AAPL", time.Time{}, time.Time{})
	require.Error(t, err)
	assert.Equal(t, int32(1), inner.calls.Load())
}

// memRecorder is an in-memory recorder.Recorder.
type memRecorder struct {
	data  map[string]*model.PriceSeries
	loads int
}

func key(source, symbol string, start, end time.Time) string {
	return source + "|" + symbol + "|" + start.Format(time.DateOnly) + "|" + end.Format(time.DateOnly)
}

func (m *memRecorder) LoadPrices(source, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	m.loads++
	if s, ok := m.data[key(source, symbol, start, end)]; ok {
		return s, nil
	}
	return nil, recorder.ErrNotFound
}

func (m *memRecorder) RecordPrices(source string, start, end time.Time, series *model.PriceSeries) error {
	m.data[key(source, series.Symbol, start, end)] = series
	return nil
}

func (m *memRecorder) Close() error { return nil }

func TestCachedFetcher_ClosedRange(t *testing.T) {
	inner := &MockFetcher{Series: &model.PriceSeries{Symbol: "AAPL", Closes: []float64{1, 2, 3}}}
	rec := &memRecorder{data: map[string]*model.PriceSeries{}}
	c := NewCachedFetcher(inner, rec, zerolog.Nop())
	c.now = func() time.Time { return day(2025, 1, 1) }

	for i := 0; i < 3; i++ {
		series, err := c.FetchDailyCloses(context.Background(), "AAPL", day(2024, 1, 1), day(2024, 6, 1))
		require.NoError(t, err)
		assert.Equal(t, 3, series.Len())
	}
	assert.Equal(t, 1, inner.Calls)
	assert.Equal(t, 3, rec.loads)
	assert.Equal(t, "mock", c.Name())
}

func TestCachedFetcher_OpenRangeBypassesCache(t *testing.T) {
	inner := &MockFetcher{Series: &model.PriceSeries{Symbol: "AAPL", Closes: []float64{1, 2}}}
	rec := &memRecorder{data: map[string]*model.PriceSeries{}}
	c := NewCachedFetcher(inner, rec, zerolog.Nop())
	now := day(2025, 1, 1)
	c.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		_, err := c.FetchDailyCloses(context.Background(), "AAPL", day(2024, 1, 1), now)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, inner.Calls)
	assert.Zero(t, rec.loads)
	assert.Empty(t, rec.data)
}

func TestCachedFetcher_PropagatesErrors(t *testing.T) {
	inner := &MockFetcher{}
	rec := &memRecorder{data: map[string]*model.PriceSeries{}}
	c := NewCachedFetcher(inner, rec, zerolog.Nop())
	c.now = func() time.Time { return day(2025, 1, 1) }

	_, err := c.FetchDailyCloses(context.Background(), "AAPL", day(2024, 1, 1), day(2024, 6, 1))
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.Empty(t, rec.data)
}

func TestCachedFetcher_KeysBySourceConfiguration(t *testing.T) {
	rec := &memRecorder{data: map[string]*model.PriceSeries{}}
	start, end := day(2024, 1, 1), day(2024, 6, 3)
	fetch := func(seed uint64) *model.PriceSeries {
		f := NewRetryFetcher(NewSyntheticFetcher(seed), time.Millisecond, zerolog.Nop())
		c := NewCachedFetcher(f, rec, zerolog.Nop())
		c.now = func() time.Time { return day(2025, 1, 1) }
		series, err := c.FetchDailyCloses(context.Background(), "SYN", start, end)
		require.NoError(t, err)
		return series
	}

	one := fetch(1)
	two := fetch(2)
	direct, err := NewSyntheticFetcher(2).FetchDailyCloses(context.Background(), "SYN", start, end)
	require.NoError(t, err)

	assert.Equal(t, direct.Closes, two.Closes)
	assert.NotEqual(t, one.Last(), two.Last())
	assert.Len(t, rec.data, 2)
	assert.Equal(t, one.Closes, fetch(1).Closes)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "mock", CacheKey(&MockFetcher{}))
	assert.NotEqual(t, CacheKey(NewSyntheticFetcher(1)), CacheKey(NewSyntheticFetcher(2)))
	assert.Equal(t, CacheKey(NewSyntheticFetcher(1)), CacheKey(NewRetryFetcher(NewSyntheticFetcher(1), 0, zerolog.Nop())))
	assert.NotEqual(t,
		CacheKey(NewVsTraderFetcher("http://a.example", "", "")),
		CacheKey(NewVsTraderFetcher("http://b.example", "", "")))
	assert.Equal(t, "yahoo", CacheKey(NewYahooFetcher("")))

	y := NewYahooFetcher("")
	y.BaseURL = "http://127.0.0.1:9999/"
	assert.Equal(t, "yahoo:http://127.0.0.1:9999", CacheKey(y))
}
