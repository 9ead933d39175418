package models

import (
	"sort"
	"time"
)

// NavPoint is one published net asset value for a fund.
// Dates are normalized to UTC midnight; one point per calendar date.
type NavPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// NavSeries is the full NAV history of a single fund, ascending by date
// with no duplicate dates. It is only ever mutated through Merge.
type NavSeries []NavPoint

// Watermark returns the most recent date present in the series.
func (s NavSeries) Watermark() (time.Time, bool) {
	if len(s) == 0 {
		return time.Time{}, false
	}
	return s[len(s)-1].Date, true
}

// Latest returns the newest point.
func (s NavSeries) Latest() (NavPoint, bool) {
	if len(s) == 0 {
		return NavPoint{}, false
	}
	return s[len(s)-1], true
}

// Values returns the NAV values in date order.
func (s NavSeries) Values() []float64 {
	vs := make([]float64, len(s))
	for i, p := range s {
		vs[i] = p.Value
	}
	return vs
}

// Merge combines the series with incoming points, keeping the incoming
// value when both carry the same date, and returns a new ascending series.
// Merging an empty incoming slice returns an equivalent series (idempotent).
func (s NavSeries) Merge(incoming []NavPoint) NavSeries {
	byDate := make(map[time.Time]float64, len(s)+len(incoming))
	for _, p := range s {
		byDate[normalizeDate(p.Date)] = p.Value
	}
	// incoming wins on conflict: upstream corrections supersede the cache
	for _, p := range incoming {
		byDate[normalizeDate(p.Date)] = p.Value
	}

	out := make(NavSeries, 0, len(byDate))
	for d, v := range byDate {
		out = append(out, NavPoint{Date: d, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// GrowthSince reports the percentage rise between the oldest point at or
// after cutoff and the latest point. Undefined with fewer than two points
// in range or a zero base value.
func (s NavSeries) GrowthSince(cutoff time.Time) Reading {
	var base *NavPoint
	for i := range s {
		if !s[i].Date.Before(cutoff) {
			base = &s[i]
			break
		}
	}
	last, ok := s.Latest()
	if base == nil || !ok || base.Date.Equal(last.Date) || base.Value == 0 {
		return Undefined()
	}
	return Def((last.Value - base.Value) * 100 / base.Value)
}

func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
