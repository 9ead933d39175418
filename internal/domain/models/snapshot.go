package models

// IndicatorSnapshot is the immutable result of one indicator evaluation
// over a fund's NAV series. Fields whose data floor is unmet are undefined.
type IndicatorSnapshot struct {
	Latest       Reading `json:"latest"`
	MACD         Reading `json:"macd"`
	SignalLine   Reading `json:"signal_line"`
	MACDDiff     Reading `json:"macd_diff"`      // MACD - SignalLine
	PrevMACDDiff Reading `json:"prev_macd_diff"` // previous period, for crossover detection
	RSI          Reading `json:"rsi"`
	BBUpper      Reading `json:"bb_upper"`
	BBLower      Reading `json:"bb_lower"`
	MA           Reading `json:"ma"`
	MARatio      Reading `json:"ma_ratio"`
}

// Insufficient reports whether the series fell below the global data floor,
// in which case the whole snapshot is undefined.
func (s IndicatorSnapshot) Insufficient() bool {
	return !s.Latest.Defined
}

// CrossoverUp reports a MACD golden cross: the diff turned positive this
// period after being at or below zero the previous one.
func (s IndicatorSnapshot) CrossoverUp() bool {
	return s.MACDDiff.GT(0) && s.PrevMACDDiff.Defined && s.PrevMACDDiff.Value <= 0
}

// CrossoverDown reports a MACD death cross.
func (s IndicatorSnapshot) CrossoverDown() bool {
	return s.MACDDiff.LT(0) && s.PrevMACDDiff.Defined && s.PrevMACDDiff.Value >= 0
}
