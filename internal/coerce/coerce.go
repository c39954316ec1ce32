// Package coerce turns loosely-typed values (decoded route state, config
// entries, query parameters) into strict booleans and numbers.
package coerce

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// ToBool reports whether x is the boolean true or the exact string "true".
// Every other value, including "yes", "1" and "TRUE", is false.
func ToBool(x any) bool {
	switch v := x.(type) {
	case bool:
		return v
	case *bool:
		return v != nil && *v
	case string:
		return v == "true"
	}
	return false
}

// ToNum returns the numeric value of x, or fallback when x is missing or
// cannot be read as a number.
func ToNum(x any, fallback float64) float64 {
	if x == nil {
		return fallback
	}
	if s, ok := x.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return fallback
		}
		x = s
	}
	n, err := cast.ToFloat64E(x)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return fallback
	}
	return n
}

// ToInt is ToNum truncated toward zero.
func ToInt(x any, fallback int) int {
	n := ToNum(x, math.NaN())
	if math.IsNaN(n) {
		return fallback
	}
	return int(n)
}

// ToString returns the string form of a scalar, or "" for nil and
// composite values.
func ToString(x any) string {
	switch x.(type) {
	case nil, map[string]any, []any:
		return ""
	}
	s, err := cast.ToStringE(x)
	if err != nil {
		return ""
	}
	return s
}
