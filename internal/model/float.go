package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Float is a numeric value that may be undefined. Undefined values come from
// non-coercible input or from SafeDiv with a non-positive denominator.
//
// Every comparison against an undefined Float is false, and arithmetic with an
// undefined operand yields an undefined result.
type Float struct {
	Value float64
	Valid bool
}

// Some returns a defined Float. NaN and infinities are stored as undefined.
func Some(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Float{}
	}
	return Float{Value: v, Valid: true}
}

// None returns an undefined Float.
func None() Float { return Float{} }

// Or returns the value, or def when undefined.
func (f Float) Or(def float64) float64 {
	if !f.Valid {
		return def
	}
	return f.Value
}

// Gt reports f > x. False when f is undefined.
func (f Float) Gt(x float64) bool { return f.Valid && f.Value > x }

// Ge reports f >= x. False when f is undefined.
func (f Float) Ge(x float64) bool { return f.Valid && f.Value >= x }

// Lt reports f < x. False when f is undefined.
func (f Float) Lt(x float64) bool { return f.Valid && f.Value < x }

// Add returns f + g.
func (f Float) Add(g Float) Float {
	if !f.Valid || !g.Valid {
		return Float{}
	}
	return Some(f.Value + g.Value)
}

// Sub returns f - g.
func (f Float) Sub(g Float) Float {
	if !f.Valid || !g.Valid {
		return Float{}
	}
	return Some(f.Value - g.Value)
}

// Scale returns f * k.
func (f Float) Scale(k float64) Float {
	if !f.Valid {
		return Float{}
	}
	return Some(f.Value * k)
}

// String formats the value with the shortest representation that round-trips.
// Undefined values format as the empty string.
func (f Float) String() string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}

// MarshalJSON encodes undefined values as null.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON accepts a number or null.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Some(v)
	return nil
}

// SafeDiv divides num by den. The result is undefined when either operand is
// undefined or when den <= 0.
func SafeDiv(num, den Float) Float {
	if !num.Valid || !den.Valid || den.Value <= 0 {
		return Float{}
	}
	return Some(num.Value / den.Value)
}

// ParseFloat coerces a raw cell to a Float. Blank or non-numeric cells are undefined.
func ParseFloat(s string) Float {
	s = strings.TrimSpace(s)
	if s == "" {
		return Float{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Float{}
	}
	return Some(v)
}

// SumDefined adds the defined values, treating undefined ones as zero.
func SumDefined(vals ...Float) Float {
	var total float64
	for _, v := range vals {
		if v.Valid {
			total += v.Value
		}
	}
	return Some(total)
}
