package ply

import (
	"fmt"
	"math"
)

// Conversion selects what happens when a value does not fit the type it is
// converted into.
type Conversion uint8

const (
	// ConvertTruncate drops fractions toward zero and saturates at the
	// target's range. NaN becomes 0 in integer targets.
	ConvertTruncate Conversion = iota
	// ConvertStrict fails with ErrLossyConversion instead.
	ConvertStrict
)

func (c Conversion) String() string {
	switch c {
	case ConvertTruncate:
		return "truncate"
	case ConvertStrict:
		return "strict"
	}
	return "unknown"
}

func ParseConversion(s string) (Conversion, error) {
	switch s {
	case "", "truncate":
		return ConvertTruncate, nil
	case "strict":
		return ConvertStrict, nil
	}
	return 0, fmt.Errorf("ply: unknown conversion policy %q", s)
}

// convert maps v, read as type from, into the value set of t. The result
// always converts to t's Go type without implementation-defined behaviour.
// Integer to float conversions never fail, even when float32 rounds them.
func convert(v float64, from, t ScalarType, mode Conversion) (float64, error) {
	var out float64
	switch {
	case t == Float64:
		return v, nil
	case t == Float32:
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			return v, nil
		case v > t.Max():
			out = t.Max()
		case v < t.Min():
			out = t.Min()
		default:
			out = float64(float32(v))
		}
		if !from.IsFloat() {
			return out, nil
		}
	case math.IsNaN(v):
		out = 0
	case v < t.Min():
		out = t.Min()
	case v > t.Max():
		out = t.Max()
	default:
		out = math.Trunc(v)
	}
	if mode == ConvertStrict && out != v {
		return out, fmt.Errorf("%w: %v (%s) as %s", ErrLossyConversion, v, from, t)
	}
	return out, nil
}
