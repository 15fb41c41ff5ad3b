package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GBMForecast/internal/forecast"
	"GBMForecast/internal/model"
)

type fakeRunner struct {
	mu       sync.Mutex
	requests []forecast.Request
	failures []string
	errFor   map[string]error
}

func (f *fakeRunner) Run(_ context.Context, req forecast.Request) (*forecast.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if err := f.errFor[req.Symbol]; err != nil {
		return nil, err
	}
	return &forecast.Outcome{
		Series: &model.PriceSeries{Symbol: req.Symbol, Closes: []float64{100, 101}},
		Result: &model.Result{
			Symbol:   req.Symbol,
			Params:   req.Params,
			Estimate: model.Estimate{LastPrice: 101},
			Summary:  model.SummaryStatistics{Confidence: 0.95, MeanFinalPrice: 110},
		},
	}, nil
}

func (f *fakeRunner) ReportFailure(_ context.Context, symbol string, _ error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, symbol)
}

func newTestScheduler(r *fakeRunner, template forecast.Request) *Scheduler {
	return NewScheduler(context.Background(), r, []string{"AAPL", "MSFT"}, template, zerolog.Nop())
}

func TestRegister(t *testing.T) {
	s := newTestScheduler(&fakeRunner{}, forecast.Request{})
	require.NoError(t, s.Register("0 30 22 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)
	assert.Error(t, s.Register("not a schedule"))
}

func TestRunAll(t *testing.T) {
	r := &fakeRunner{errFor: map[string]error{"MSFT": errors.New("boom")}}
	s := newTestScheduler(r, forecast.Request{
		Params:    model.DefaultParameters(),
		CSVPath:   "out/paths.csv",
		ChartPath: "out/{symbol}.png",
		Notify:    true,
	})

	s.RunAll()

	require.Len(t, r.requests, 2)
	assert.Equal(t, "AAPL", r.requests[0].Symbol)
	assert.Equal(t, "out/paths_AAPL.csv", r.requests[0].CSVPath)
	assert.Equal(t, "out/AAPL.png", r.requests[0].ChartPath)
	assert.Equal(t, model.DefaultParameters(), r.requests[1].Params)
	assert.Equal(t, []string{"MSFT"}, r.failures)

	_, ok := s.LastRun("AAPL")
	assert.True(t, ok)
	_, ok = s.LastRun("MSFT")
	assert.False(t, ok)
}

func TestRunAll_SkipsWhilePassRunning(t *testing.T) {
	r := &fakeRunner{}
	s := newTestScheduler(r, forecast.Request{})

	s.running.Lock()
	s.RunAll()
	assert.Empty(t, r.requests)
	s.running.Unlock()

	s.RunAll()
	assert.Len(t, r.requests, 2)
}

func TestRunAll_StopsWhenCancelled(t *testing.T) {
	r := &fakeRunner{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewScheduler(ctx, r, []string{"AAPL"}, forecast.Request{}, zerolog.Nop())
	s.RunAll()
	assert.Empty(t, r.requests)
}

func TestHandleCommand(t *testing.T) {
	r := &fakeRunner{errFor: map[string]error{"BAD": errors.New("no data")}}
	s := newTestScheduler(r, forecast.Request{CSVPath: "x.csv", Notify: true})

	reply := s.HandleCommand(context.Background(), "/forecast nvda")
	assert.Contains(t, reply, "NVDA Monte Carlo forecast")
	require.Len(t, r.requests, 1)
	assert.Empty(t, r.requests[0].CSVPath)
	assert.False(t, r.requests[0].Notify)

	assert.Contains(t, s.HandleCommand(context.Background(), "/forecast BAD"), "BAD forecast failed")
	assert.Equal(t, "Usage: /forecast SYMBOL", s.HandleCommand(context.Background(), "/forecast"))
	assert.Equal(t, "Watching: AAPL, MSFT", s.HandleCommand(context.Background(), "/symbols"))
	assert.Contains(t, s.HandleCommand(context.Background(), "hello"), "Commands:")
	assert.Contains(t, s.HandleCommand(context.Background(), "  "), "Commands:")
}

func TestExpandPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"paths.csv", "paths_SPY.csv"},
		{"out.d/chart", "out.d/chart_SPY"},
		{"{symbol}/chart.png", "SPY/chart.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, expandPath(tt.in, "SPY"), tt.in)
	}
}
