package allocator

import (
	"math"
	"testing"

	"NavPulse/internal/domain/models"
)

func result(fund string, action models.ActionSignal, rsi, maRatio float64) models.Result {
	return models.Result{
		FundID:  fund,
		RSI:     models.Def(rsi),
		MARatio: models.Def(maRatio),
		Signal:  models.Signal{Action: action},
		Snapshot: models.IndicatorSnapshot{
			Latest:  models.Def(1.1), // upper half of the band, no bollinger term
			RSI:     models.Def(rsi),
			MARatio: models.Def(maRatio),
			BBUpper: models.Def(1.2),
			BBLower: models.Def(0.8),
		},
	}
}

func TestScoreSignalTiers(t *testing.T) {
	cases := []struct {
		action models.ActionSignal
		want   float64
	}{
		{models.StrongBuy, 40},
		{models.WeakBuy, 28},
		{models.Hold, 16},
		{models.WeakSell, 8},
		{models.StrongSell, 0},
	}
	for _, c := range cases {
		r := result("f", c.action, 90, 2.0) // rsi and ma terms contribute 0
		if got := Score(r); got != c.want {
			t.Fatalf("%v: expected %v, got %v", c.action, c.want, got)
		}
	}
}

func TestScoreUnavailableIsZero(t *testing.T) {
	r := result("f", models.Unavailable, 25, 1.0)
	if got := Score(r); got != 0 {
		t.Fatalf("unavailable fund must score 0, got %v", got)
	}
}

func TestScoreCrossovers(t *testing.T) {
	up := result("f", models.Hold, 90, 2.0)
	up.Snapshot.MACDDiff = models.Def(0.01)
	up.Snapshot.PrevMACDDiff = models.Def(-0.01)
	if got := Score(up); got != 16+15 {
		t.Fatalf("golden cross: expected 31, got %v", got)
	}

	down := result("f", models.Hold, 90, 2.0)
	down.Snapshot.MACDDiff = models.Def(-0.01)
	down.Snapshot.PrevMACDDiff = models.Def(0.01)
	if got := Score(down); got != 16-5 {
		t.Fatalf("death cross: expected 11, got %v", got)
	}
}

func TestScoreBollingerBands(t *testing.T) {
	atLower := result("f", models.Hold, 90, 2.0)
	atLower.Snapshot.Latest = models.Def(0.8)
	if got := Score(atLower); got != 16+10 {
		t.Fatalf("at lower band: expected 26, got %v", got)
	}

	lowerHalf := result("f", models.Hold, 90, 2.0)
	lowerHalf.Snapshot.Latest = models.Def(0.95)
	if got := Score(lowerHalf); got != 16+5 {
		t.Fatalf("lower half: expected 21, got %v", got)
	}
}

func TestScoreClampedToHundred(t *testing.T) {
	r := result("f", models.StrongBuy, 25, 1.0)
	r.Snapshot.Latest = models.Def(0.8) // at lower band
	r.Snapshot.MACDDiff = models.Def(0.01)
	r.Snapshot.PrevMACDDiff = models.Def(-0.01)
	// 40 + 20 + 15 + 15 + 10 = 100 exactly
	if got := Score(r); got != 100 {
		t.Fatalf("expected max score 100, got %v", got)
	}
}

func TestAllocateTopN(t *testing.T) {
	a := New(10000, 3)
	results := []models.Result{
		result("A", models.StrongBuy, 25, 1.0),
		result("B", models.WeakBuy, 38, 1.0),
		result("C", models.Hold, 55, 1.0),
		result("D", models.WeakSell, 90, 2.0),
		result("E", models.Unavailable, 25, 1.0),
	}
	got := a.Allocate(results)
	if len(got) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(got))
	}
	if got[0].FundID != "A" || got[1].FundID != "B" || got[2].FundID != "C" {
		t.Fatalf("unexpected ranking: %v %v %v", got[0].FundID, got[1].FundID, got[2].FundID)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Fatalf("scores not descending at %d", i)
		}
	}
}

func TestAllocateWeightsSumToHundred(t *testing.T) {
	a := New(10000, 3)
	results := []models.Result{
		result("A", models.StrongBuy, 25, 1.0),
		result("B", models.WeakBuy, 48, 1.0),
		result("C", models.Hold, 55, 1.08),
	}
	got := a.Allocate(results)
	var sum float64
	for _, s := range got {
		sum += s.WeightPct
	}
	if math.Abs(sum-100.0) > 0.05 {
		t.Fatalf("weights must sum to exactly 100.0, got %v", sum)
	}
}

func TestAllocateAmountsNeverExceedBudget(t *testing.T) {
	const budget = 9999
	a := New(budget, 3)
	results := []models.Result{
		result("A", models.StrongBuy, 25, 1.0),
		result("B", models.WeakBuy, 42, 1.0),
		result("C", models.Hold, 58, 1.15),
	}
	got := a.Allocate(results)
	var total float64
	for _, s := range got {
		if s.Amount != math.Floor(s.Amount) {
			t.Fatalf("amount %v not a whole unit", s.Amount)
		}
		total += s.Amount
	}
	if total > budget {
		t.Fatalf("amounts %v exceed budget %v", total, budget)
	}
}

func TestAllocateSkipsNonPositiveScores(t *testing.T) {
	a := New(10000, 3)
	results := []models.Result{
		result("A", models.StrongSell, 90, 2.0), // scores 0
		result("B", models.Unavailable, 25, 1.0),
	}
	if got := a.Allocate(results); got != nil {
		t.Fatalf("expected no suggestions, got %v", got)
	}
}

func TestAllocateGrowthBreaksTies(t *testing.T) {
	a := New(10000, 1)
	x := result("X", models.Hold, 90, 2.0)
	x.Growth = models.Def(1.5)
	y := result("Y", models.Hold, 90, 2.0)
	y.Growth = models.Def(4.2)
	got := a.Allocate([]models.Result{x, y})
	if len(got) != 1 || got[0].FundID != "Y" {
		t.Fatalf("expected the faster grower to win the tie, got %+v", got)
	}
}
