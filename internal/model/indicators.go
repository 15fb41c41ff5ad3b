package model

// HistoryContext describes the observed history a forecast starts from.
type HistoryContext struct {
	SMA20       float64
	SMA50       float64
	RSI14       float64
	High52w     float64
	Low52w      float64
	Position52w float64 // 0.0 ~ 1.0
}
