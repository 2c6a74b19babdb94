package units

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMalformed     = errors.New("malformed energy value")
	ErrUnknownPrefix = errors.New("unknown SI prefix")
)

// PrefixFactors maps the one-letter SI prefixes found in energy strings to
// their multipliers.
var PrefixFactors = map[string]float64{
	"":  1,
	"k": 1e3,
	"M": 1e6,
	"G": 1e9,
}

// ParseEnergy converts strings like "150kW" or "2MJ" to a plain number in the
// base unit. The trailing unit letter is discarded.
func ParseEnergy(s string) (float64, error) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && isNumberByte(s[end]) {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("%q: %w", s, ErrMalformed)
	}
	magnitude, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrMalformed)
	}

	suffix := s[end:]
	if suffix == "" {
		return 0, fmt.Errorf("%q: missing unit: %w", s, ErrMalformed)
	}
	prefix := suffix[:len(suffix)-1]
	factor, ok := PrefixFactors[prefix]
	if !ok {
		return 0, fmt.Errorf("%q: prefix %q: %w", s, prefix, ErrUnknownPrefix)
	}
	return magnitude * factor, nil
}

func isNumberByte(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+'
}
