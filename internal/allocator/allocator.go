// Package allocator scores signaled funds and proposes a budget split over
// the top performers.
package allocator

import (
	"math"
	"sort"

	"NavPulse/internal/domain/models"
)

// Allocator ranks evaluated funds and splits a fixed budget across the
// top-N by score. Funds without a usable signal are never allocated.
type Allocator struct {
	Budget float64
	TopN   int
}

// New returns an Allocator with the given budget and selection size.
func New(budget float64, topN int) *Allocator {
	return &Allocator{Budget: budget, TopN: topN}
}

// Score maps a result to 0..100. Weighting: signal tier 40, RSI 20,
// MA proximity 15, MACD crossover 15 (crossover-down costs 5), Bollinger
// position 10. Undefined readings contribute nothing.
func Score(r models.Result) float64 {
	if !r.Available() {
		return 0
	}
	s := signalTerm(r.Signal) + rsiTerm(r.RSI) + maTerm(r.MARatio) + macdTerm(r.Snapshot) + bollTerm(r.Snapshot)
	return math.Max(0, math.Min(100, s))
}

func signalTerm(sig models.Signal) float64 {
	switch sig.Action {
	case models.StrongBuy:
		return 40
	case models.WeakBuy:
		return 28
	case models.Hold:
		return 16
	case models.WeakSell:
		return 8
	default:
		return 0
	}
}

func rsiTerm(rsi models.Reading) float64 {
	if !rsi.Defined {
		return 0
	}
	switch {
	case rsi.Value < 30:
		return 20
	case rsi.Value < 40:
		return 15
	case rsi.Value < 50:
		return 10
	case rsi.Value < 60:
		return 5
	default:
		return 0
	}
}

func maTerm(ratio models.Reading) float64 {
	if !ratio.Defined {
		return 0
	}
	d := math.Abs(ratio.Value - 1)
	switch {
	case d <= 0.05:
		return 15
	case d <= 0.10:
		return 10
	case d <= 0.20:
		return 5
	default:
		return 0
	}
}

func macdTerm(snap models.IndicatorSnapshot) float64 {
	switch {
	case snap.CrossoverUp():
		return 15
	case snap.CrossoverDown():
		return -5
	default:
		return 0
	}
}

func bollTerm(snap models.IndicatorSnapshot) float64 {
	price := snap.Latest
	if !price.Defined || !snap.BBUpper.Defined || !snap.BBLower.Defined {
		return 0
	}
	width := snap.BBUpper.Value - snap.BBLower.Value
	if price.Value <= snap.BBLower.Value {
		return 10
	}
	if width > 0 && (price.Value-snap.BBLower.Value)/width <= 0.5 {
		return 5
	}
	return 0
}

// Allocate selects the top-N available funds by score (growth as the tie
// breaker) and splits the budget proportionally to normalized scores.
// Weights are rounded to one decimal percent with the residual folded into
// the largest weight so they sum to exactly 100.0; amounts are floored to
// whole currency units so the total never exceeds the budget.
func (a *Allocator) Allocate(results []models.Result) []models.AllocationSuggestion {
	type scored struct {
		r models.Result
		s float64
	}
	candidates := make([]scored, 0, len(results))
	for _, r := range results {
		if !r.Available() {
			continue
		}
		if s := Score(r); s > 0 {
			candidates = append(candidates, scored{r: r, s: s})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].s != candidates[j].s {
			return candidates[i].s > candidates[j].s
		}
		gi, gj := candidates[i].r.Growth, candidates[j].r.Growth
		if gi.Defined && gj.Defined && gi.Value != gj.Value {
			return gi.Value > gj.Value
		}
		return candidates[i].r.FundID < candidates[j].r.FundID
	})
	if len(candidates) > a.TopN {
		candidates = candidates[:a.TopN]
	}

	var total float64
	for _, c := range candidates {
		total += c.s
	}
	if total <= 0 {
		return nil
	}

	out := make([]models.AllocationSuggestion, len(candidates))
	weightSum := 0.0
	largest := 0
	for i, c := range candidates {
		w := math.Round(c.s/total*1000) / 10 // one decimal percent
		out[i] = models.AllocationSuggestion{
			FundID:    c.r.FundID,
			Score:     math.Round(c.s*10) / 10,
			WeightPct: w,
		}
		weightSum += w
		if out[i].WeightPct > out[largest].WeightPct {
			largest = i
		}
	}
	// fold the rounding residual into the largest slice
	out[largest].WeightPct = math.Round((out[largest].WeightPct+100.0-weightSum)*10) / 10

	for i := range out {
		out[i].Amount = math.Floor(a.Budget * out[i].WeightPct / 100)
	}
	return out
}
