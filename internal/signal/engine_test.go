package signal

import (
	"testing"

	"NavPulse/internal/domain/models"
)

type snapOpts struct {
	price, maRatio, rsi, macdDiff, bbUpper, bbLower float64
}

func mkSnap(o snapOpts) models.IndicatorSnapshot {
	return models.IndicatorSnapshot{
		Latest:   models.Def(o.price),
		MARatio:  models.Def(o.maRatio),
		RSI:      models.Def(o.rsi),
		MACDDiff: models.Def(o.macdDiff),
		BBUpper:  models.Def(o.bbUpper),
		BBLower:  models.Def(o.bbLower),
	}
}

// neutral-ish baseline that matches no rule except Hold
func holdSnap() models.IndicatorSnapshot {
	return mkSnap(snapOpts{price: 1.0, maRatio: 1.05, rsi: 55, macdDiff: 0.001, bbUpper: 1.1, bbLower: 0.9})
}

func TestUnavailableWithoutMARatio(t *testing.T) {
	snap := holdSnap()
	snap.MARatio = models.Undefined()
	got := Classify(snap, models.TrendStrong)
	if got.Action != models.Unavailable {
		t.Fatalf("expected unavailable, got %v", got.Action)
	}
}

func TestHold(t *testing.T) {
	got := Classify(holdSnap(), models.TrendNeutral)
	if got.Action != models.Hold || got.Amplified {
		t.Fatalf("expected plain hold, got %+v", got)
	}
}

func TestRuleTwoBeatsRuleFive(t *testing.T) {
	// satisfies rule 2 (ma_ratio < 0.95) AND rule 5 (rsi<35, ma_ratio<0.9,
	// macd diff > 0); order decides, so the drawdown exit wins.
	snap := mkSnap(snapOpts{price: 0.8, maRatio: 0.85, rsi: 30, macdDiff: 0.01, bbUpper: 1.1, bbLower: 0.9})
	got := Classify(snap, models.TrendNeutral)
	if got.Action != models.StrongSell {
		t.Fatalf("rule order must pick strong_sell, got %v", got.Action)
	}
}

func TestRuleTwoAmplifiedInWeakMarket(t *testing.T) {
	snap := mkSnap(snapOpts{price: 0.8, maRatio: 0.85, rsi: 50, macdDiff: 0, bbUpper: 1.1, bbLower: 0.9})
	got := Classify(snap, models.TrendWeak)
	if got.Action != models.StrongSell || !got.Amplified {
		t.Fatalf("expected amplified strong_sell, got %+v", got)
	}
	if got.Label() != "strong_sell(amplified)" {
		t.Fatalf("unexpected label %q", got.Label())
	}
}

func TestRuleThreeOverboughtRollover(t *testing.T) {
	snap := mkSnap(snapOpts{price: 1.5, maRatio: 1.25, rsi: 75, macdDiff: -0.01, bbUpper: 1.6, bbLower: 1.2})
	got := Classify(snap, models.TrendNeutral)
	if got.Action != models.StrongSell || got.Amplified {
		t.Fatalf("expected plain strong_sell, got %+v", got)
	}
}

func TestRuleFourEachSymptom(t *testing.T) {
	cases := []models.IndicatorSnapshot{
		mkSnap(snapOpts{price: 1.0, maRatio: 1.05, rsi: 66, macdDiff: 0, bbUpper: 1.1, bbLower: 0.9}),  // rsi > 65
		mkSnap(snapOpts{price: 1.15, maRatio: 1.05, rsi: 55, macdDiff: 0, bbUpper: 1.1, bbLower: 0.9}), // price above upper band
		mkSnap(snapOpts{price: 1.3, maRatio: 1.21, rsi: 55, macdDiff: 0.01, bbUpper: 1.4, bbLower: 1.0}), // extended over MA
	}
	for i, snap := range cases {
		got := Classify(snap, models.TrendNeutral)
		if got.Action != models.WeakSell {
			t.Fatalf("case %d: expected weak_sell, got %v", i, got.Action)
		}
	}
}

func TestRuleFourEscalatesInWeakMarket(t *testing.T) {
	snap := mkSnap(snapOpts{price: 1.0, maRatio: 1.05, rsi: 66, macdDiff: 0, bbUpper: 1.1, bbLower: 0.9})
	got := Classify(snap, models.TrendWeak)
	if got.Action != models.StrongSell || !got.Amplified {
		t.Fatalf("expected escalated strong_sell, got %+v", got)
	}
}

func TestRuleSixEachSymptom(t *testing.T) {
	cases := []models.IndicatorSnapshot{
		mkSnap(snapOpts{price: 1.0, maRatio: 1.05, rsi: 40, macdDiff: 0, bbUpper: 1.1, bbLower: 0.9}),  // rsi < 45
		mkSnap(snapOpts{price: 0.85, maRatio: 1.05, rsi: 55, macdDiff: 0, bbUpper: 1.1, bbLower: 0.9}), // price below lower band
		mkSnap(snapOpts{price: 0.97, maRatio: 0.98, rsi: 55, macdDiff: 0, bbUpper: 1.1, bbLower: 0.9}), // under MA
	}
	for i, snap := range cases {
		got := Classify(snap, models.TrendNeutral)
		if got.Action != models.WeakBuy {
			t.Fatalf("case %d: expected weak_buy, got %v", i, got.Action)
		}
	}
}

func TestRuleSixEscalatesInStrongMarket(t *testing.T) {
	snap := mkSnap(snapOpts{price: 0.96, maRatio: 0.97, rsi: 28, macdDiff: 0, bbUpper: 1.1, bbLower: 0.97})
	got := Classify(snap, models.TrendStrong)
	if got.Action != models.StrongBuy || !got.Amplified {
		t.Fatalf("expected amplified strong_buy, got %+v", got)
	}
}

func TestUndefinedReadingsMatchNothing(t *testing.T) {
	// MA ratio defined, everything else undefined: rules gated on RSI,
	// bands, or MACD cannot match; ma_ratio 1.05 avoids rules 2 and 6.
	snap := models.IndicatorSnapshot{MARatio: models.Def(1.05)}
	got := Classify(snap, models.TrendNeutral)
	if got.Action != models.Hold {
		t.Fatalf("expected hold with undefined oscillators, got %v", got.Action)
	}
}

func TestSellProtectionOutranksBuy(t *testing.T) {
	// overbought AND below lower band simultaneously: rule 4 fires before
	// rule 6 ever gets a look.
	snap := mkSnap(snapOpts{price: 0.85, maRatio: 1.0, rsi: 67, macdDiff: 0, bbUpper: 1.1, bbLower: 0.9})
	got := Classify(snap, models.TrendNeutral)
	if got.Action != models.WeakSell {
		t.Fatalf("expected weak_sell by precedence, got %v", got.Action)
	}
}
