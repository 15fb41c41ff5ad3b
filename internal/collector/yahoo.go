package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"GBMForecast/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public chart API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// CacheKey includes the endpoint unless it is the public one.
func (f *YahooFetcher) CacheKey() string {
	if f.BaseURL == "" || f.BaseURL == yahooBaseURL {
		return "yahoo"
	}
	return "yahoo:" + strings.TrimRight(f.BaseURL, "/")
}

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
// Prices are pointers because Yahoo reports holidays and halts as null.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyCloses returns adjusted closes when Yahoo provides them, raw closes otherwise.
func (f *YahooFetcher) FetchDailyCloses(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	start, end = DefaultRange(start, end)
	base := f.BaseURL
	if base == "" {
		base = yahooBaseURL
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		base, url.PathEscape(f.yahooSymbol(symbol)), start.Unix(), end.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrDataUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s: %w", chart.Chart.Error.Description, ErrDataUnavailable)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrDataUnavailable)
	}

	result := chart.Chart.Result[0]
	var closes []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) == len(result.Timestamp) {
		closes = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 && len(result.Indicators.Quote[0].Close) == len(result.Timestamp) {
		closes = result.Indicators.Quote[0].Close
	} else {
		return nil, fmt.Errorf("yahoo %s: close series missing: %w", symbol, ErrDataUnavailable)
	}

	type point struct {
		t time.Time
		c float64
	}
	points := make([]point, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if closes[i] == nil || *closes[i] <= 0 {
			continue // skip null bars (holidays etc.)
		}
		points = append(points, point{t: time.Unix(ts, 0).UTC(), c: *closes[i]})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrDataUnavailable)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].t.Before(points[j].t) })

	series := &model.PriceSeries{
		Symbol: symbol,
		Dates:  make([]time.Time, len(points)),
		Closes: make([]float64, len(points)),
	}
	for i, p := range points {
		series.Dates[i] = p.t
		series.Closes[i] = p.c
	}
	return series, nil
}
