package models

import "encoding/json"

// ActionSignal is the discrete per-fund classification. The order encodes
// signal strength tiers, from strongest buy to strongest sell.
type ActionSignal int

const (
	StrongBuy ActionSignal = iota
	WeakBuy
	Hold
	WeakSell
	StrongSell
	Unavailable
)

func (a ActionSignal) String() string {
	switch a {
	case StrongBuy:
		return "strong_buy"
	case WeakBuy:
		return "weak_buy"
	case Hold:
		return "hold"
	case WeakSell:
		return "weak_sell"
	case StrongSell:
		return "strong_sell"
	default:
		return "unavailable"
	}
}

func (a ActionSignal) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *ActionSignal) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*a = ParseActionSignal(s)
	return nil
}

// ParseActionSignal maps a wire string back to an ActionSignal. Unrecognized
// strings map to Unavailable.
func ParseActionSignal(s string) ActionSignal {
	switch s {
	case "strong_buy":
		return StrongBuy
	case "weak_buy":
		return WeakBuy
	case "hold":
		return Hold
	case "weak_sell":
		return WeakSell
	case "strong_sell":
		return StrongSell
	default:
		return Unavailable
	}
}

// Signal pairs an action with an amplification flag. Amplification marks a
// same-direction market trend reinforcing the action; it is a label, not an
// extra enum state.
type Signal struct {
	Action    ActionSignal `json:"action"`
	Amplified bool         `json:"amplified"`
}

// Label renders the human-readable form, e.g. "strong_buy(amplified)".
func (s Signal) Label() string {
	if s.Amplified {
		return s.Action.String() + "(amplified)"
	}
	return s.Action.String()
}

// MarketTrend is the coarse market state derived from the benchmark fund.
type MarketTrend int

const (
	TrendUnknown MarketTrend = iota
	TrendStrong
	TrendWeak
	TrendNeutral
)

func (t MarketTrend) String() string {
	switch t {
	case TrendStrong:
		return "strong"
	case TrendWeak:
		return "weak"
	case TrendNeutral:
		return "neutral"
	default:
		return "unknown"
	}
}

func (t MarketTrend) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *MarketTrend) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = ParseMarketTrend(s)
	return nil
}

// ParseMarketTrend maps a wire string back to a MarketTrend.
func ParseMarketTrend(s string) MarketTrend {
	switch s {
	case "strong":
		return TrendStrong
	case "weak":
		return TrendWeak
	case "neutral":
		return TrendNeutral
	default:
		return TrendUnknown
	}
}
