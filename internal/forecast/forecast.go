// Package forecast wires a price source, the simulator and the output sinks
// into a single run.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"GBMForecast/internal/calculator"
	"GBMForecast/internal/collector"
	"GBMForecast/internal/export"
	"GBMForecast/internal/metrics"
	"GBMForecast/internal/model"
	"GBMForecast/internal/notifier"
	"GBMForecast/internal/simulator"
)

// Reporter delivers a formatted report.
type Reporter interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Request describes one forecast.
type Request struct {
	Symbol    string
	Start     time.Time
	End       time.Time
	Params    model.SimulationParameters
	CSVPath   string
	ChartPath string
	Notify    bool
}

// Outcome is a finished run together with the history it was estimated from.
type Outcome struct {
	Series  *model.PriceSeries
	History model.HistoryContext
	Result  *model.Result
}

// Service runs forecasts. Reporter and Metrics are optional.
type Service struct {
	Fetcher   collector.Fetcher
	Simulator *simulator.Simulator
	Reporter  Reporter
	Metrics   *metrics.Recorder
	Log       zerolog.Logger

	now func() time.Time
}

// NewService creates a Service.
func NewService(f collector.Fetcher, sim *simulator.Simulator, rep Reporter, m *metrics.Recorder, log zerolog.Logger) *Service {
	return &Service{
		Fetcher:   f,
		Simulator: sim,
		Reporter:  rep,
		Metrics:   m,
		Log:       log.With().Str("component", "forecast").Logger(),
		now:       time.Now,
	}
}

// Run fetches history, simulates, writes the requested artifacts and sends the
// report. Artifacts are staged next to their targets and only renamed into
// place once every sink has succeeded; on any failure nothing is returned and
// nothing is left behind.
func (s *Service) Run(ctx context.Context, req Request) (*Outcome, error) {
	if req.Symbol == "" {
		return nil, errors.New("forecast: symbol is required")
	}
	log := s.Log.With().Str("symbol", req.Symbol).Logger()

	if err := s.Simulator.Validate(req.Params); err != nil {
		s.fail("simulate")
		return nil, fmt.Errorf("simulate %s: %w", req.Symbol, err)
	}

	began := time.Now()
	series, err := s.Fetcher.FetchDailyCloses(ctx, req.Symbol, req.Start, req.End)
	s.observe("fetch", began)
	if err != nil {
		s.fail("fetch")
		return nil, fmt.Errorf("fetch %s from %s: %w", req.Symbol, s.Fetcher.Name(), err)
	}
	log.Info().Int("points", series.Len()).Str("source", s.Fetcher.Name()).Msg("history loaded")

	began = time.Now()
	res, err := s.Simulator.Run(series, req.Params)
	s.observe("simulate", began)
	if err != nil {
		s.fail("simulate")
		return nil, fmt.Errorf("simulate %s: %w", req.Symbol, err)
	}
	if res.Symbol == "" {
		res.Symbol = req.Symbol
	}
	sum := res.Summary
	log.Info().
		Float64("mu", res.Estimate.Mu).
		Float64("sigma", res.Estimate.Sigma).
		Float64("last", res.Estimate.LastPrice).
		Float64("mean", sum.MeanFinalPrice).
		Float64("lower", sum.LowerPercentile).
		Float64("upper", sum.UpperPercentile).
		Msg("simulation complete")

	out := &Outcome{Series: series, Result: res}
	if out.History, err = calculator.DescribeHistory(series.Closes); err != nil {
		log.Warn().Err(err).Msg("history context unavailable")
	}
	var staged []stagedFile
	defer func() {
		for _, f := range staged {
			os.Remove(f.tmp)
		}
	}()
	if staged, err = s.export(req, res); err != nil {
		s.fail("export")
		return nil, err
	}
	if req.Notify {
		if err := s.notify(ctx, out); err != nil {
			s.fail("notify")
			return nil, err
		}
	}
	for _, f := range staged {
		if err := os.Rename(f.tmp, f.path); err != nil {
			s.fail("export")
			return nil, fmt.Errorf("commit %s: %w", f.path, err)
		}
		log.Info().Str("path", f.path).Msg("artifact written")
	}
	if s.Metrics != nil {
		s.Metrics.RecordRun(res.Symbol, res.Estimate.LastPrice, sum.MeanFinalPrice, sum.LowerPercentile, sum.UpperPercentile)
	}
	return out, nil
}

// stagedFile is an artifact written to tmp, waiting to be renamed to path.
type stagedFile struct {
	tmp  string
	path string
}

// stage reserves a temporary file beside path with the same extension, so
// format detection by extension still applies.
func stage(path string) (stagedFile, error) {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)
	f, err := os.CreateTemp(filepath.Dir(path), "."+base+"-*"+ext)
	if err != nil {
		return stagedFile{}, fmt.Errorf("stage %s: %w", path, err)
	}
	f.Close()
	return stagedFile{tmp: f.Name(), path: path}, nil
}

func (s *Service) export(req Request, res *model.Result) ([]stagedFile, error) {
	var staged []stagedFile
	fail := func(err error) ([]stagedFile, error) {
		for _, f := range staged {
			os.Remove(f.tmp)
		}
		return nil, err
	}
	if req.CSVPath != "" {
		f, err := stage(req.CSVPath)
		if err != nil {
			return fail(err)
		}
		staged = append(staged, f)
		if err := export.SaveCSV(f.tmp, res.Ensemble); err != nil {
			return fail(fmt.Errorf("write csv: %w", err))
		}
	}
	if req.ChartPath != "" {
		f, err := stage(req.ChartPath)
		if err != nil {
			return fail(err)
		}
		staged = append(staged, f)
		title := fmt.Sprintf("%s: %d simulated paths", res.Symbol, res.Params.NumSimulations)
		if err := export.SaveChart(f.tmp, res.Ensemble, res.Summary, title); err != nil {
			return fail(fmt.Errorf("write chart: %w", err))
		}
	}
	return staged, nil
}

func (s *Service) notify(ctx context.Context, out *Outcome) error {
	if s.Reporter == nil {
		return errors.New("notify requested but no reporter is configured")
	}
	began := time.Now()
	err := s.Reporter.SendWithRetry(ctx, notifier.FormatForecastReport(out.Result, out.Series, out.History, s.now()), 3)
	s.observe("notify", began)
	if err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}

// ReportFailure sends a short failure notice when a reporter is configured.
func (s *Service) ReportFailure(ctx context.Context, symbol string, cause error) {
	if s.Reporter == nil {
		return
	}
	if err := s.Reporter.SendWithRetry(ctx, notifier.FormatFailure(symbol, cause), 1); err != nil {
		s.Log.Error().Err(err).Str("symbol", symbol).Msg("send failure notice")
	}
}

func (s *Service) observe(stage string, began time.Time) {
	if s.Metrics != nil {
		s.Metrics.RecordLatency(stage, time.Since(began).Seconds())
	}
}

func (s *Service) fail(stage string) {
	if s.Metrics != nil {
		s.Metrics.RecordError(stage)
	}
}
