package recorder

import (
	"time"

	"GBMForecast/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) LoadPrices(_, _ string, _, _ time.Time) (*model.PriceSeries, error) {
	return nil, ErrNotFound
}
func (n *NoopRecorder) RecordPrices(_ string, _, _ time.Time, _ *model.PriceSeries) error {
	return nil
}
func (n *NoopRecorder) Close() error { return nil }
