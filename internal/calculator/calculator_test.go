package calculator

import (
	"math"
	"testing"
)

func TestPctChange(t *testing.T) {
	got, err := PctChange([]float64{100, 110, 99})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0.1, -0.1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("return %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if _, err := PctChange([]float64{100}); err == nil {
		t.Error("expected error for single price")
	}
	if _, err := PctChange([]float64{0, 1}); err == nil {
		t.Error("expected error for zero price")
	}
}

func TestSampleStdDev(t *testing.T) {
	// var = ((1-2.5)^2 + (2-2.5)^2 + (3-2.5)^2 + (4-2.5)^2) / 3 = 5/3
	got, err := SampleStdDev([]float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := math.Sqrt(5.0 / 3.0); math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %v, got %v", want, got)
	}
	if got, _ := SampleStdDev([]float64{7}); got != 0 {
		t.Errorf("single value: expected 0, got %v", got)
	}
	if _, err := SampleStdDev(nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestMean(t *testing.T) {
	got, err := Mean([]float64{1, 2, 3, 4})
	if err != nil || got != 2.5 {
		t.Errorf("expected 2.5, got %v (%v)", got, err)
	}
	if _, err := Mean(nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	values := []float64{15, 20, 35, 40, 50}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 15},
		{100, 50},
		{50, 35},
		{25, 20},
		{2.5, 15.5},  // h = 0.1
		{97.5, 49},   // h = 3.9
		{40, 29},     // h = 1.6
		{62.5, 37.5}, // h = 2.5
	}
	for _, tt := range tests {
		got, err := Percentile(values, tt.p)
		if err != nil {
			t.Fatalf("p=%v: unexpected error: %v", tt.p, err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("p=%v: expected %v, got %v", tt.p, tt.want, got)
		}
	}
}

func TestPercentile_UnsortedInputUntouched(t *testing.T) {
	values := []float64{3, 1, 2}
	got, err := Percentile(values, 50)
	if err != nil || got != 2 {
		t.Fatalf("expected 2, got %v (%v)", got, err)
	}
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input was reordered: %v", values)
	}
}

func TestPercentile_Errors(t *testing.T) {
	if _, err := Percentile(nil, 50); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := Percentile([]float64{1}, 101); err == nil {
		t.Error("expected error for p > 100")
	}
	if _, err := Percentiles([]float64{1, 2}, 10, -1); err == nil {
		t.Error("expected error for p < 0")
	}
}

func TestPercentiles(t *testing.T) {
	got, err := Percentiles([]float64{4, 1, 3, 2}, 0, 50, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{1, 2.5, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestMinMax(t *testing.T) {
	low, high, err := MinMax([]float64{3, -1, 8, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if low != -1 || high != 8 {
		t.Errorf("expected (-1, 8), got (%v, %v)", low, high)
	}
	if _, _, err := MinMax(nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestSMA(t *testing.T) {
	got, err := SMA([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 4 {
		t.Errorf("expected 4, got %v", got)
	}
	if _, err := SMA([]float64{1, 2}, 3); err == nil {
		t.Error("expected error for short input")
	}
	if _, err := SMA([]float64{1, 2}, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestRSI(t *testing.T) {
	rising := make([]float64, 20)
	for i := range rising {
		rising[i] = float64(100 + i)
	}
	if got, _ := RSI(rising, 14); got != 100 {
		t.Errorf("expected 100 for monotonic rise, got %v", got)
	}

	falling := make([]float64, 20)
	for i := range falling {
		falling[i] = float64(100 - i)
	}
	if got, _ := RSI(falling, 14); got != 0 {
		t.Errorf("expected 0 for monotonic fall, got %v", got)
	}

	if got, _ := RSI([]float64{1, 2, 3}, 14); got != 50 {
		t.Errorf("expected neutral 50 for short input, got %v", got)
	}

	alt := []float64{10, 12, 11}
	got, err := RSI(alt, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// gains 2, losses 1 over period 2: rs = (2/2)/(1/2) = 2, rsi = 100 - 100/3
	if math.Abs(got-(100-100.0/3)) > 1e-12 {
		t.Errorf("expected %v, got %v", 100-100.0/3, got)
	}
}

func TestTrailingRange(t *testing.T) {
	closes := []float64{50, 10, 20, 30, 25}
	high, low, err := TrailingRange(closes, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if high != 30 || low != 20 {
		t.Errorf("expected [20, 30], got [%v, %v]", low, high)
	}
	high, low, _ = TrailingRange(closes, 100)
	if high != 50 || low != 10 {
		t.Errorf("expected full range [10, 50], got [%v, %v]", low, high)
	}
	if _, _, err := TrailingRange(nil, 3); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestRangePosition(t *testing.T) {
	tests := []struct {
		current, high, low, want float64
	}{
		{75, 100, 50, 0.5},
		{40, 100, 50, 0},
		{120, 100, 50, 1},
		{80, 80, 80, 0.5},
	}
	for _, tt := range tests {
		got, err := RangePosition(tt.current, tt.high, tt.low)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("RangePosition(%v, %v, %v) = %v, want %v", tt.current, tt.high, tt.low, got, tt.want)
		}
	}
	if _, err := RangePosition(1, 1, 2); err == nil {
		t.Error("expected error when high < low")
	}
}

func TestDescribeHistory(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	hc, err := DescribeHistory(closes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hc.SMA20 != 50.5 {
		t.Errorf("SMA20: expected 50.5, got %v", hc.SMA20)
	}
	if hc.SMA50 != 35.5 {
		t.Errorf("SMA50: expected 35.5, got %v", hc.SMA50)
	}
	if hc.RSI14 != 100 {
		t.Errorf("RSI14: expected 100, got %v", hc.RSI14)
	}
	if hc.High52w != 60 || hc.Low52w != 1 || hc.Position52w != 1 {
		t.Errorf("unexpected range: %+v", hc)
	}

	short, err := DescribeHistory([]float64{10, 11})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if short.SMA20 != 0 || short.RSI14 != 50 {
		t.Errorf("expected unset SMA and neutral RSI, got %+v", short)
	}
}
