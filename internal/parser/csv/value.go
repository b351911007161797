package csv

import (
	"regexp"
	"strconv"

	"csvload/internal/loaderr"
)

var (
	intPattern   = regexp.MustCompile(`^\d+$`)
	floatPattern = regexp.MustCompile(`^\d+\.\d+$`)
)

// ConvertValue turns a raw cell into its best-guess scalar:
//
//	""        -> nil
//	"42"      -> int64(42)
//	"3.14"    -> float64(3.14)
//	otherwise -> the string unchanged
//
// A cell that looks numeric but cannot be represented (integer overflow) is a
// validation error.
func ConvertValue(s string) (any, error) {
	switch {
	case s == "":
		return nil, nil
	case intPattern.MatchString(s):
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, loaderr.Validationf("convert value", "integer %q: %v", s, err)
		}
		return n, nil
	case floatPattern.MatchString(s):
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, loaderr.Validationf("convert value", "float %q: %v", s, err)
		}
		return f, nil
	default:
		return s, nil
	}
}
