package indicator

import (
	"math"
	"testing"
	"time"

	"NavPulse/internal/domain/models"
)

func seriesOf(values []float64) models.NavSeries {
	s := make(models.NavSeries, len(values))
	for i, v := range values {
		s[i] = models.NavPoint{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i), Value: v}
	}
	return s
}

func rising(n int) []float64 {
	vs := make([]float64, n)
	for i := range vs {
		vs[i] = 1.0 + 0.01*float64(i)
	}
	return vs
}

func TestEMASeedIsFirstValue(t *testing.T) {
	vs := []float64{10, 11, 12}
	ema := EMA(vs, 12)
	if ema[0] != 10 {
		t.Fatalf("expected seed 10, got %v", ema[0])
	}
	// second value: 11*k + 10*(1-k), k = 2/13
	k := 2.0 / 13.0
	want := 11*k + 10*(1-k)
	if math.Abs(ema[1]-want) > 1e-12 {
		t.Fatalf("ema[1] = %v, want %v", ema[1], want)
	}
}

func TestInsufficientHistoryIsUndefined(t *testing.T) {
	snap := New().Compute(seriesOf(rising(Floor - 1)))
	if !snap.Insufficient() {
		t.Fatalf("expected insufficient snapshot below floor")
	}
	if snap.MARatio.Defined || snap.RSI.Defined || snap.MACD.Defined {
		t.Fatalf("fields must be undefined below floor: %+v", snap)
	}
}

func TestMARatioDefinedAtFloor(t *testing.T) {
	snap := New().Compute(seriesOf(rising(Floor)))
	if !snap.MARatio.Defined {
		t.Fatalf("ma_ratio should be defined at floor")
	}
	if snap.MARatio.Value <= 1 {
		t.Fatalf("rising series should sit above its MA, got %v", snap.MARatio.Value)
	}
}

func TestRSIBounds(t *testing.T) {
	cases := [][]float64{
		rising(30),
		{1, 0.99, 1.01, 0.98, 1.02, 0.97, 1.03, 0.96, 1.04, 0.95, 1.05, 0.94, 1.06, 0.93, 1.07, 0.92, 1.08, 0.91, 1.09, 0.9, 1.1, 0.89, 1.11, 0.88, 1.12, 0.87, 1.13, 0.86, 1.14, 0.85},
	}
	for i, vs := range cases {
		snap := New().Compute(seriesOf(vs))
		if !snap.RSI.Defined {
			t.Fatalf("case %d: rsi undefined", i)
		}
		if snap.RSI.Value < 0 || snap.RSI.Value > 100 {
			t.Fatalf("case %d: rsi out of bounds: %v", i, snap.RSI.Value)
		}
	}
}

func TestRSIHundredWhenNoLosses(t *testing.T) {
	snap := New().Compute(seriesOf(rising(40)))
	if snap.RSI.Value != 100 {
		t.Fatalf("monotonic gains must give rsi=100, got %v", snap.RSI.Value)
	}
}

func TestMACDPositiveOnMonotonicRise(t *testing.T) {
	snap := New().Compute(seriesOf(rising(120)))
	if !snap.MACDDiff.GT(0) {
		t.Fatalf("macd-signal should end positive for a monotonic rise, got %+v", snap.MACDDiff)
	}
}

func TestBollingerBracketsMean(t *testing.T) {
	snap := New().Compute(seriesOf(rising(60)))
	if !snap.BBUpper.Defined || !snap.BBLower.Defined {
		t.Fatalf("bollinger bands undefined")
	}
	if snap.BBUpper.Value <= snap.BBLower.Value {
		t.Fatalf("upper band %v not above lower %v", snap.BBUpper.Value, snap.BBLower.Value)
	}
}

func TestMAWindowDegradesToLength(t *testing.T) {
	n := 30 // below the default 50 window, above the floor
	snap := New().Compute(seriesOf(rising(n)))
	if !snap.MA.Defined {
		t.Fatalf("ma undefined with degraded window")
	}
	want := SMA(rising(n), n)
	if math.Abs(snap.MA.Value-want) > 1e-12 {
		t.Fatalf("ma = %v, want full-length average %v", snap.MA.Value, want)
	}
}

func TestFlatSeriesHasNoNaN(t *testing.T) {
	vs := make([]float64, 40)
	for i := range vs {
		vs[i] = 1.0
	}
	snap := New().Compute(seriesOf(vs))
	// zero std, zero deltas: bands collapse to the mean, RSI pegs at 100
	if !snap.BBUpper.Defined || snap.BBUpper.Value != 1.0 {
		t.Fatalf("flat series upper band: %+v", snap.BBUpper)
	}
	if snap.RSI.Value != 100 {
		t.Fatalf("flat series rsi: %+v", snap.RSI)
	}
	if !snap.MARatio.Defined || snap.MARatio.Value != 1.0 {
		t.Fatalf("flat series ma_ratio: %+v", snap.MARatio)
	}
}

func TestCrossoverDetection(t *testing.T) {
	// long decline then a sharp recovery drives macd diff through zero
	vs := make([]float64, 0, 80)
	v := 2.0
	for i := 0; i < 60; i++ {
		v -= 0.01
		vs = append(vs, v)
	}
	for i := 0; i < 20; i++ {
		v += 0.05
		vs = append(vs, v)
	}
	sawCross := false
	for n := Floor; n <= len(vs); n++ {
		snap := New().Compute(seriesOf(vs[:n]))
		if snap.CrossoverUp() {
			sawCross = true
			break
		}
	}
	if !sawCross {
		t.Fatalf("expected a crossover-up somewhere in the recovery")
	}
}
