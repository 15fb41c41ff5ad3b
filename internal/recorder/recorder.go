package recorder

import (
	"errors"
	"time"

	"GBMForecast/internal/model"
)

// ErrNotFound means no cached series exists for the requested key.
var ErrNotFound = errors.New("recorder: no cached series")

// Recorder caches fetched price history keyed by (source, symbol, start, end).
// It never stores simulation output.
type Recorder interface {
	LoadPrices(source, symbol string, start, end time.Time) (*model.PriceSeries, error)
	RecordPrices(source string, start, end time.Time, series *model.PriceSeries) error
	Close() error
}
