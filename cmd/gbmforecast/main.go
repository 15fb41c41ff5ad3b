package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{configPath: "configs/config.yaml"}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		opts.configPath = v
	}

	cmd := &cobra.Command{
		Use:           "gbmforecast",
		Short:         "Monte Carlo stock price forecasts under geometric Brownian motion",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "path to the YAML config file")

	cmd.AddCommand(newRunCmd(opts), newWatchCmd(opts))
	return cmd
}

// overrides holds command-line values that take precedence over the config file.
type overrides struct {
	symbol      string
	start       string
	end         string
	provider    string
	simulations int
	horizon     int
	seed        uint64
	confidence  float64
	csvPath     string
	chartPath   string
}

func (o *overrides) bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.provider, "provider", "", "data provider: yahoo, alpaca, vstrader or synthetic")
	fs.IntVar(&o.simulations, "simulations", 0, "number of simulated paths")
	fs.IntVar(&o.horizon, "horizon", 0, "trading days per path, including today")
	fs.Uint64Var(&o.seed, "seed", 0, "random seed for reproducible runs")
	fs.Float64Var(&o.confidence, "confidence", 0, "two-sided percentile band, e.g. 0.95")
	fs.StringVar(&o.csvPath, "csv", "", "write simulated paths to this CSV file")
	fs.StringVar(&o.chartPath, "chart", "", "write a PNG chart of the paths to this file")
}

func (o *overrides) bindRange(fs *pflag.FlagSet) {
	fs.StringVar(&o.symbol, "symbol", "", "ticker symbol")
	fs.StringVar(&o.start, "start", "", "first history date (YYYY-MM-DD)")
	fs.StringVar(&o.end, "end", "", "last history date (YYYY-MM-DD)")
}
