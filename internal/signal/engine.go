// Package signal classifies a fund's indicator snapshot into a discrete
// action signal, overlaid by the market-trend state.
//
// The rules form a priority-ordered decision table: they are evaluated top
// to bottom and the FIRST match wins. Drawdown protection outranks upside
// chasing, so the ordering must not change or runs stop being reproducible
// against recorded decisions.
package signal

import "NavPulse/internal/domain/models"

// Classify applies the decision table. Comparisons against an undefined
// reading are false, so a fund with (say) no RSI simply cannot match the
// RSI-gated rules.
func Classify(snap models.IndicatorSnapshot, trend models.MarketTrend) models.Signal {
	// 1. No MA ratio means no usable history at all.
	if !snap.MARatio.Defined {
		return models.Signal{Action: models.Unavailable}
	}

	price := snap.Latest
	diff := snap.MACDDiff

	// 2. Deep below trend: exit regardless of oscillators.
	if snap.MARatio.LT(0.95) {
		return models.Signal{Action: models.StrongSell, Amplified: trend == models.TrendWeak}
	}

	// 3. Overbought, extended, and momentum already rolling over.
	if snap.RSI.GT(70) && snap.MARatio.GT(1.2) && diff.LT(0) {
		return models.Signal{Action: models.StrongSell}
	}

	// 4. Any single overheat symptom trims; a weak market escalates it.
	if snap.RSI.GT(65) || (price.Defined && snap.BBUpper.Defined && price.Value > snap.BBUpper.Value) || snap.MARatio.GT(1.2) {
		if trend == models.TrendWeak {
			return models.Signal{Action: models.StrongSell, Amplified: true}
		}
		return models.Signal{Action: models.WeakSell}
	}

	// 5. Washed out below trend with momentum turning up.
	if snap.RSI.LT(35) && snap.MARatio.LT(0.9) && diff.GT(0) {
		return models.Signal{Action: models.StrongBuy, Amplified: trend == models.TrendStrong}
	}

	// 6. Any single value symptom accumulates; a strong market escalates it.
	if snap.RSI.LT(45) || (price.Defined && snap.BBLower.Defined && price.Value < snap.BBLower.Value) || snap.MARatio.LT(1) {
		if trend == models.TrendStrong {
			return models.Signal{Action: models.StrongBuy, Amplified: true}
		}
		return models.Signal{Action: models.WeakBuy}
	}

	// 7. Nothing actionable.
	return models.Signal{Action: models.Hold}
}
