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

// VsTraderFetcher implements Fetcher using the vstrader REST API.
type VsTraderFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewVsTraderFetcher creates a new fetcher with optional proxy support.
func NewVsTraderFetcher(baseURL, apiKey, proxyURL string) *VsTraderFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &VsTraderFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *VsTraderFetcher) Name() string { return "vstrader" }

func (f *VsTraderFetcher) CacheKey() string { return "vstrader:" + strings.TrimRight(f.BaseURL, "/") }

// vsBar is the expected JSON shape from the vstrader API.
type vsBar struct {
	Timestamp int64   `json:"timestamp"`
	Close     float64 `json:"close"`
}

func (f *VsTraderFetcher) FetchDailyCloses(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	start, end = DefaultRange(start, end)
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("start", start.Format(time.DateOnly))
	q.Set("end", end.Format(time.DateOnly))
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("vstrader %s: %w", symbol, ErrDataUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var bars []vsBar
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}

	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
	series := &model.PriceSeries{Symbol: symbol}
	for _, b := range bars {
		if b.Close <= 0 {
			continue
		}
		series.Dates = append(series.Dates, time.Unix(b.Timestamp, 0).UTC())
		series.Closes = append(series.Closes, b.Close)
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("vstrader %s: %w", symbol, ErrDataUnavailable)
	}
	return series, nil
}
