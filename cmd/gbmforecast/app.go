package main

import (
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"GBMForecast/internal/collector"
	"GBMForecast/internal/config"
	"GBMForecast/internal/forecast"
	"GBMForecast/internal/logger"
	"GBMForecast/internal/metrics"
	"GBMForecast/internal/notifier"
	"GBMForecast/internal/recorder"
	"GBMForecast/internal/simulator"
)

// app holds the components shared by run and watch.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	recorder recorder.Recorder
	notifier *notifier.TelegramNotifier
	metrics  *metrics.Recorder
	service  *forecast.Service
}

// loadConfig reads the config file and applies flags that were set explicitly.
func loadConfig(path string, o *overrides, fs *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if fs.Changed("symbol") {
		cfg.DataSource.Symbol = o.symbol
	}
	if fs.Changed("start") {
		cfg.DataSource.Start = o.start
	}
	if fs.Changed("end") {
		cfg.DataSource.End = o.end
	}
	if fs.Changed("provider") {
		cfg.DataSource.Provider = o.provider
	}
	if fs.Changed("simulations") {
		cfg.Simulation.NumSimulations = o.simulations
	}
	if fs.Changed("horizon") {
		cfg.Simulation.HorizonDays = o.horizon
	}
	if fs.Changed("seed") {
		seed := o.seed
		cfg.Simulation.Seed = &seed
	}
	if fs.Changed("confidence") {
		cfg.Simulation.Confidence = o.confidence
	}
	if fs.Changed("csv") {
		cfg.Output.CSVPath = o.csvPath
	}
	if fs.Changed("chart") {
		cfg.Output.ChartPath = o.chartPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newApp(cfg *config.Config) (*app, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, metrics: metrics.New()}

	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			a.recorder = recorder.NewNoopRecorder()
		} else {
			a.recorder = sr
		}
	} else {
		a.recorder = recorder.NewNoopRecorder()
	}

	source, err := newFetcher(cfg)
	if err != nil {
		a.recorder.Close()
		return nil, err
	}
	log.Info().Str("source", source.Name()).Msg("data source selected")
	fetcher := collector.NewCachedFetcher(
		collector.NewRetryFetcher(source, cfg.DataSource.RetryDelay, log),
		a.recorder, log,
	)

	var rep forecast.Reporter
	if cfg.TelegramEnabled() {
		a.notifier = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		rep = a.notifier
	}

	a.service = forecast.NewService(fetcher, simulator.New(simulatorOptions(cfg)...), rep, a.metrics, log)
	return a, nil
}

func (a *app) close() {
	if err := a.recorder.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close recorder")
	}
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	ds := cfg.DataSource
	switch ds.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Proxy), nil
	case "alpaca":
		return collector.NewAlpacaFetcher(ds.APIKey, ds.APISecret, ds.BaseURL), nil
	case "vstrader":
		return collector.NewVsTraderFetcher(ds.BaseURL, ds.APIKey, cfg.Proxy), nil
	case "synthetic":
		return collector.NewSyntheticFetcher(ds.SyntheticSeed), nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", ds.Provider)
	}
}

func simulatorOptions(cfg *config.Config) []simulator.Option {
	sim := cfg.Simulation
	opts := []simulator.Option{
		simulator.WithMaxCells(sim.MaxCells),
		simulator.WithConfidence(sim.Confidence),
	}
	workers := sim.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	opts = append(opts, simulator.WithWorkers(workers))
	if sim.Seed != nil {
		opts = append(opts, simulator.WithSeed(*sim.Seed))
	}
	return opts
}

// template builds the per-run request from config. Symbol and range are
// filled by the caller.
func template(cfg *config.Config) forecast.Request {
	return forecast.Request{
		Params:    cfg.SimulationParameters(),
		CSVPath:   cfg.Output.CSVPath,
		ChartPath: cfg.Output.ChartPath,
	}
}
