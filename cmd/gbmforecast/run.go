package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		o      overrides
		notify bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch history, simulate and summarize one forecast",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root.configPath, &o, cmd.Flags())
			if err != nil {
				return err
			}
			if notify && !cfg.TelegramEnabled() {
				return errors.New("--notify requires telegram.bot_token and telegram.chat_id")
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			start, end, err := cfg.DateRange()
			if err != nil {
				return err
			}
			req := template(cfg)
			req.Symbol = cfg.DataSource.Symbol
			req.Start, req.End = start, end
			req.Notify = notify

			out, err := a.service.Run(ctx, req)
			if err != nil {
				return err
			}

			res := out.Result
			s := res.Summary
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: %d closes, last price %s\n", res.Symbol, out.Series.Len(), price(res.Estimate.LastPrice))
			fmt.Fprintf(w, "daily mu %.6f  sigma %.6f\n", res.Estimate.Mu, res.Estimate.Sigma)
			fmt.Fprintf(w, "%d paths x %d days\n", res.Params.NumSimulations, res.Params.HorizonDays)
			fmt.Fprintf(w, "mean final price:  %s\n", price(s.MeanFinalPrice))
			fmt.Fprintf(w, "%s%% interval:     [%s, %s]\n",
				decimal.NewFromFloat(s.Confidence*100).Round(2).String(), price(s.LowerPercentile), price(s.UpperPercentile))
			return nil
		},
	}
	o.bindRange(cmd.Flags())
	o.bind(cmd.Flags())
	cmd.Flags().BoolVar(&notify, "notify", false, "send the report to Telegram")
	return cmd
}

func price(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
