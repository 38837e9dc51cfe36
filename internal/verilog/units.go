package verilog

import (
	"strconv"
	"strings"
)

// engPrefixes maps an engineering prefix to its scale.
var engPrefixes = map[string]float64{
	"f":   1e-15,
	"p":   1e-12,
	"n":   1e-9,
	"u":   1e-6,
	"m":   1e-3,
	"":    1.0,
	"k":   1e3,
	"meg": 1e6,
	"g":   1e9,
	"t":   1e12,
}

// ParseEngUnit converts a "<value> <prefix><base>" string such as "10 ps" or
// "3.3meg" into a float. baseUnit is the unit without prefix ("s" for
// seconds); it may be empty. The numeric part keeps only digits and dots.
func ParseEngUnit(s, baseUnit string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	baseUnit = strings.ToLower(baseUnit)

	var num, unit strings.Builder
	for _, r := range s {
		switch {
		case (r >= '0' && r <= '9') || r == '.':
			if unit.Len() == 0 {
				num.WriteRune(r)
			}
		case r == ' ':
		default:
			unit.WriteRune(r)
		}
	}
	val, err := strconv.ParseFloat(num.String(), 64)
	if err != nil {
		return 0, false
	}

	prefix := strings.TrimSuffix(unit.String(), baseUnit)
	scale, ok := engPrefixes[prefix]
	if !ok {
		return 0, false
	}
	return val * scale, true
}

// EvalTime evaluates a time value such as ("100", "ps"). Unknown units
// evaluate as seconds.
func EvalTime(num, unit string) float64 {
	v, ok := ParseEngUnit(num+" "+unit, "s")
	if ok {
		return v
	}
	v, _ = ParseEngUnit(num, "")
	return v
}
