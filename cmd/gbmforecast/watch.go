package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"GBMForecast/internal/scheduler"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	var (
		o      overrides
		runNow bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run forecasts on a cron schedule and send reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root.configPath, &o, cmd.Flags())
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()
			log := a.log

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			req := template(cfg)
			req.Notify = cfg.TelegramEnabled()
			sched := scheduler.NewScheduler(ctx, a.service, cfg.WatchSymbols(), req, log)
			if err := sched.Register(cfg.Schedule.Cron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if a.notifier != nil {
				go a.notifier.StartPolling(ctx, sched.HandleCommand)
				log.Info().Msg("telegram polling started")
			}

			var srv *http.Server
			if cfg.Metrics.Listen != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", a.metrics.Handler())
				srv = &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Error().Err(err).Msg("metrics server")
					}
				}()
				log.Info().Str("addr", cfg.Metrics.Listen).Msg("metrics listener started")
			}

			if runNow {
				go sched.RunAll()
			}

			log.Info().Str("cron", cfg.Schedule.Cron).Msg("watching, press Ctrl+C to stop")
			<-ctx.Done()
			log.Info().Msg("shutdown signal received, stopping")

			if srv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					log.Warn().Err(err).Msg("metrics server shutdown")
				}
			}
			return nil
		},
	}
	o.bind(cmd.Flags())
	cmd.Flags().BoolVar(&runNow, "run-now", false, "run every symbol once at startup")
	return cmd
}
