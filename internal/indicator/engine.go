// Package indicator derives technical indicators from a fund's NAV series.
//
// Every indicator has a minimum history requirement; below it the
// corresponding snapshot field is an undefined Reading. Below the global
// floor (26 points, the MACD slow span) the whole snapshot is undefined
// rather than a partial mix of numbers and gaps.
package indicator

import (
	"math"

	"NavPulse/internal/domain/models"
)

const (
	macdFastSpan   = 12
	macdSlowSpan   = 26
	macdSignalSpan = 9
	rsiWindow      = 14
	bollWindow     = 20
	bollK          = 2.0

	// Floor is the global minimum history for any snapshot.
	Floor = macdSlowSpan
)

// Engine computes indicator snapshots. MAWindow is the moving-average
// window for the MA ratio; it degrades to the series length when shorter.
type Engine struct {
	MAWindow int
}

// New returns an Engine with the default 50-period MA window.
func New() *Engine { return &Engine{MAWindow: 50} }

// Compute evaluates all indicators over the full series. The input must be
// ascending by date; the snapshot reflects the latest point.
func (e *Engine) Compute(series models.NavSeries) models.IndicatorSnapshot {
	values := series.Values()
	n := len(values)
	if n < Floor {
		return models.IndicatorSnapshot{} // insufficient history: all undefined
	}

	snap := models.IndicatorSnapshot{
		Latest: models.Def(values[n-1]),
	}

	// MACD = EMA12 - EMA26, signal line = EMA9 of MACD.
	fast := EMA(values, macdFastSpan)
	slow := EMA(values, macdSlowSpan)
	macd := make([]float64, n)
	for i := range macd {
		macd[i] = fast[i] - slow[i]
	}
	signal := EMA(macd, macdSignalSpan)
	snap.MACD = models.Def(macd[n-1])
	snap.SignalLine = models.Def(signal[n-1])
	snap.MACDDiff = models.Def(macd[n-1] - signal[n-1])
	if n >= 2 {
		snap.PrevMACDDiff = models.Def(macd[n-2] - signal[n-2])
	}

	snap.RSI = rsi(values)

	if mean, std, ok := rollingMeanStd(values, min(bollWindow, n)); ok {
		snap.BBUpper = models.Def(mean + bollK*std)
		snap.BBLower = models.Def(mean - bollK*std)
	}

	w := min(e.MAWindow, n)
	ma := SMA(values, w)
	snap.MA = models.Def(ma)
	if ma != 0 {
		snap.MARatio = models.Def(values[n-1] / ma)
	}

	return snap
}

// rsi computes RSI over the last rsiWindow deltas using the plain rolling
// mean of gains and losses (not Wilder's smoothing; see DESIGN.md). A
// window with zero average loss reports exactly 100.
func rsi(values []float64) models.Reading {
	if len(values) < rsiWindow+1 {
		return models.Undefined()
	}
	tail := values[len(values)-rsiWindow-1:]
	var gain, loss float64
	for i := 1; i < len(tail); i++ {
		delta := tail[i] - tail[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	avgGain := gain / rsiWindow
	avgLoss := loss / rsiWindow
	if avgLoss == 0 {
		return models.Def(100)
	}
	rs := avgGain / avgLoss
	return models.Def(100 - 100/(1+rs))
}

// rollingMeanStd returns the mean and sample standard deviation of the last
// window values. ok is false when the window cannot support a std (< 2).
func rollingMeanStd(values []float64, window int) (mean, std float64, ok bool) {
	if window < 2 || len(values) < window {
		return 0, 0, false
	}
	tail := values[len(values)-window:]
	for _, v := range tail {
		mean += v
	}
	mean /= float64(window)
	var ss float64
	for _, v := range tail {
		d := v - mean
		ss += d * d
	}
	std = math.Sqrt(ss / float64(window-1))
	return mean, std, true
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
