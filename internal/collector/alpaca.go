package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"GBMForecast/internal/model"
)

type barsGetter interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaFetcher implements Fetcher using Alpaca market data (IEX feed). Bars
// are split and dividend adjusted.
type AlpacaFetcher struct {
	client barsGetter
}

// NewAlpacaFetcher creates a fetcher. baseURL may be empty for the public endpoint.
func NewAlpacaFetcher(apiKey, apiSecret, baseURL string) *AlpacaFetcher {
	return &AlpacaFetcher{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

// FetchDailyCloses ignores ctx cancellation mid-request; the client has no context hook.
func (f *AlpacaFetcher) FetchDailyCloses(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start, end = DefaultRange(start, end)
	bars, err := f.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.All,
		Start:      start,
		End:        end,
		Feed:       marketdata.IEX,
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca bars: %w", err)
	}
	return barsToSeries(symbol, bars)
}

func barsToSeries(symbol string, bars []marketdata.Bar) (*model.PriceSeries, error) {
	series := &model.PriceSeries{Symbol: symbol}
	for _, b := range bars {
		if b.Close <= 0 {
			continue
		}
		series.Dates = append(series.Dates, b.Timestamp.UTC())
		series.Closes = append(series.Closes, b.Close)
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("alpaca %s: %w", symbol, ErrDataUnavailable)
	}
	return series, nil
}
