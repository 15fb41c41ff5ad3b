package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"GBMForecast/internal/forecast"
	"GBMForecast/internal/notifier"
)

// Forecaster runs one forecast and reports failures.
type Forecaster interface {
	Run(ctx context.Context, req forecast.Request) (*forecast.Outcome, error)
	ReportFailure(ctx context.Context, symbol string, cause error)
}

// Scheduler re-runs forecasts for a fixed symbol list on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Forecaster
	Symbols  []string
	Template forecast.Request
	Log      zerolog.Logger
	Ctx      context.Context

	running sync.Mutex
	mu      sync.Mutex
	last    map[string]time.Time
}

// NewScheduler creates a Scheduler. Template supplies the run size, output
// paths and notify flag; its Symbol is replaced per run.
func NewScheduler(ctx context.Context, runner Forecaster, symbols []string, template forecast.Request, log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	cl := cronLogger{log: log}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Runner:   runner,
		Symbols:  symbols,
		Template: template,
		Log:      log,
		Ctx:      ctx,
		last:     make(map[string]time.Time),
	}
}

// Register adds the forecast job under spec (six fields, seconds first).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.RunAll); err != nil {
		return fmt.Errorf("register forecast job %q: %w", spec, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info().Strs("symbols", s.Symbols).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info().Msg("scheduler stopped")
}

// RunAll forecasts every configured symbol in turn. A call made while another
// pass is still running is skipped, whether it came from cron or a manual trigger.
func (s *Scheduler) RunAll() {
	if !s.running.TryLock() {
		s.Log.Warn().Msg("previous forecast pass still running, skipping")
		return
	}
	defer s.running.Unlock()
	for _, symbol := range s.Symbols {
		if s.Ctx.Err() != nil {
			return
		}
		s.runSymbol(symbol)
	}
}

func (s *Scheduler) runSymbol(symbol string) {
	req := s.Template
	req.Symbol = symbol
	req.CSVPath = expandPath(s.Template.CSVPath, symbol)
	req.ChartPath = expandPath(s.Template.ChartPath, symbol)

	s.Log.Info().Str("symbol", symbol).Msg("running scheduled forecast")
	if _, err := s.Runner.Run(s.Ctx, req); err != nil {
		s.Log.Error().Err(err).Str("symbol", symbol).Msg("scheduled forecast failed")
		if req.Notify {
			s.Runner.ReportFailure(s.Ctx, symbol, err)
		}
		return
	}
	s.mu.Lock()
	s.last[symbol] = time.Now()
	s.mu.Unlock()
}

// LastRun returns when symbol last completed successfully.
func (s *Scheduler) LastRun(symbol string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.last[symbol]
	return t, ok
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	switch fields[0] {
	case "/forecast":
		if len(fields) < 2 {
			return "Usage: /forecast SYMBOL"
		}
		req := s.Template
		req.Symbol = strings.ToUpper(fields[1])
		req.CSVPath, req.ChartPath, req.Notify = "", "", false
		out, err := s.Runner.Run(ctx, req)
		if err != nil {
			return notifier.FormatFailure(req.Symbol, err)
		}
		return notifier.FormatForecastReport(out.Result, out.Series, out.History, time.Now())
	case "/symbols":
		return "Watching: " + strings.Join(s.Symbols, ", ")
	default:
		return notifier.FormatHelp()
	}
}

// expandPath substitutes {symbol} so per-symbol artifacts do not overwrite each other.
func expandPath(path, symbol string) string {
	if path == "" {
		return ""
	}
	if strings.Contains(path, "{symbol}") {
		return strings.ReplaceAll(path, "{symbol}", symbol)
	}
	ext := ""
	if i := strings.LastIndex(path, "."); i > strings.LastIndex(path, "/") {
		path, ext = path[:i], path[i:]
	}
	return path + "_" + symbol + ext
}

// cronLogger routes cron's own messages to zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
