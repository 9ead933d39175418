// Package trend reduces the benchmark fund's indicator snapshot to a coarse
// market-trend state used to escalate or dampen per-fund signals.
package trend

import "NavPulse/internal/domain/models"

// Classify maps a benchmark snapshot to a MarketTrend. Rules are evaluated
// in precedence order and exactly one state is returned:
//
//	Strong:  ma_ratio > 1 AND macd-signal > 0 AND rsi < 70
//	Weak:    ma_ratio < 0.95 OR macd-signal < 0 OR rsi > 70
//	Neutral: otherwise
//	Unknown: any required field undefined
func Classify(snap models.IndicatorSnapshot) models.MarketTrend {
	if !snap.MARatio.Defined || !snap.MACDDiff.Defined || !snap.RSI.Defined {
		return models.TrendUnknown
	}
	if snap.MARatio.Value > 1 && snap.MACDDiff.Value > 0 && snap.RSI.Value < 70 {
		return models.TrendStrong
	}
	if snap.MARatio.Value < 0.95 || snap.MACDDiff.Value < 0 || snap.RSI.Value > 70 {
		return models.TrendWeak
	}
	return models.TrendNeutral
}
