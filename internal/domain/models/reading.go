package models

import (
	"encoding/json"
	"math"
)

// Reading is an indicator value that may be undefined when the underlying
// series is too short. An undefined reading is a first-class state: it is
// never coerced to zero, and every comparison against it reports false.
type Reading struct {
	Value   float64
	Defined bool
}

// Def returns a defined reading. NaN and Inf collapse to undefined so that
// numeric edge cases (zero std, division by zero) cannot leak downstream.
func Def(v float64) Reading {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Reading{}
	}
	return Reading{Value: v, Defined: true}
}

// Undefined returns the undefined reading.
func Undefined() Reading { return Reading{} }

// GT reports whether the reading is defined and greater than x.
func (r Reading) GT(x float64) bool { return r.Defined && r.Value > x }

// LT reports whether the reading is defined and less than x.
func (r Reading) LT(x float64) bool { return r.Defined && r.Value < x }

// Sub subtracts o; undefined if either side is.
func (r Reading) Sub(o Reading) Reading {
	if !r.Defined || !o.Defined {
		return Undefined()
	}
	return Def(r.Value - o.Value)
}

// MarshalJSON encodes undefined readings as null.
func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON decodes null as undefined.
func (r *Reading) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = Reading{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = Def(v)
	return nil
}
