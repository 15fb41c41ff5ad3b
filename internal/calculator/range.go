package calculator

import (
	"errors"

	"GBMForecast/internal/model"
)

// TradingDaysPerYear is the trailing window used for the 52-week range.
const TradingDaysPerYear = 252

// TrailingRange returns the high and low of the most recent window closes.
func TrailingRange(closes []float64, window int) (high, low float64, err error) {
	if len(closes) == 0 {
		return 0, 0, errors.New("no closes provided")
	}
	start := len(closes) - window
	if window <= 0 || start < 0 {
		start = 0
	}
	low, high, err = MinMax(closes[start:])
	return high, low, err
}

// RangePosition returns where current sits within [low, high] (0.0~1.0).
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

// DescribeHistory summarizes the observed closes for reports. Indicators that
// need more data than is available are left at zero.
func DescribeHistory(closes []float64) (model.HistoryContext, error) {
	var hc model.HistoryContext
	if len(closes) == 0 {
		return hc, errors.New("no closes provided")
	}
	current := closes[len(closes)-1]

	if v, err := SMA(closes, 20); err == nil {
		hc.SMA20 = v
	}
	if v, err := SMA(closes, 50); err == nil {
		hc.SMA50 = v
	}
	hc.RSI14, _ = RSI(closes, 14)

	high, low, err := TrailingRange(closes, TradingDaysPerYear)
	if err != nil {
		return hc, err
	}
	hc.High52w, hc.Low52w = high, low
	if hc.Position52w, err = RangePosition(current, high, low); err != nil {
		return hc, err
	}
	return hc, nil
}
