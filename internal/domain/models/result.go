package models

import "time"

// Result is the one record every evaluated fund produces, including funds
// whose evaluation failed (Signal.Action == Unavailable plus a reason).
type Result struct {
	FundID      string      `json:"fund_id"`
	LatestDate  time.Time   `json:"latest_date"`
	LatestValue Reading     `json:"latest_value"`
	RSI         Reading     `json:"rsi"`
	MARatio     Reading     `json:"ma_ratio"`
	MACDDiff    Reading     `json:"macd_minus_signal"`
	BBUpper     Reading     `json:"bb_upper"`
	BBLower     Reading     `json:"bb_lower"`
	Growth      Reading     `json:"growth_pct"`
	Signal      Signal      `json:"signal"`
	Trend       MarketTrend `json:"market_trend"`
	Held        bool        `json:"held"`
	Failure     string      `json:"failure_reason,omitempty"`

	// Snapshot is kept for the allocator; not serialized downstream.
	Snapshot IndicatorSnapshot `json:"-"`
}

// Available reports whether the fund produced a usable signal.
func (r Result) Available() bool {
	return r.Signal.Action != Unavailable
}

// AllocationSuggestion is one line of the proposed budget split.
type AllocationSuggestion struct {
	FundID    string  `json:"fund_id"`
	Score     float64 `json:"score"`
	WeightPct float64 `json:"weight_pct"`
	Amount    float64 `json:"amount"`
}

// ProgressEvent reports one completed fund evaluation within a running
// batch, for live consumers.
type ProgressEvent struct {
	FundID    string `json:"fund_id"`
	Action    string `json:"action"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// BatchReport is the outcome of a whole evaluation run.
type BatchReport struct {
	RanAt       time.Time              `json:"ran_at"`
	Trend       MarketTrend            `json:"market_trend"`
	Results     []Result               `json:"results"`
	Allocations []AllocationSuggestion `json:"allocations"`
}
