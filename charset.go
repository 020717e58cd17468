package fontbake

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidRangeSpec is returned when a codepoint range specifier is malformed.
var ErrInvalidRangeSpec = errors.New("invalid codepoint range")

// The default charset covers the printable ASCII range.
const (
	defaultCharsetMin = 0x20
	defaultCharsetMax = 0x7E
)

// ParseCharset resolves the user provided codepoint range specifiers into the final
// sorted and deduplicated set of codepoints to rasterize. Each specifier is either a
// single hexadecimal codepoint ("A0") or an inclusive range ("20-7E"). In case no
// specifier is provided the printable ASCII range is used.
func ParseCharset(specs []string) ([]rune, error) {
	if len(specs) == 0 {
		specs = []string{fmt.Sprintf("%X-%X", defaultCharsetMin, defaultCharsetMax)}
	}

	set := make(map[rune]struct{})
	for _, spec := range specs {
		min, max, err := parseRange(spec)
		if err != nil {
			return nil, err
		}
		for r := min; r <= max; r++ {
			set[r] = struct{}{}
		}
	}

	runes := make([]rune, 0, len(set))
	for r := range set {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool {
		return runes[i] < runes[j]
	})

	return runes, nil
}

// parseRange parses a single range specifier into its inclusive bounds.
func parseRange(spec string) (rune, rune, error) {
	lo, hi, isRange := strings.Cut(strings.TrimSpace(spec), "-")
	if !isRange {
		hi = lo
	}

	min, err := parseCodepoint(lo)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrInvalidRangeSpec, spec, err)
	}
	max, err := parseCodepoint(hi)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrInvalidRangeSpec, spec, err)
	}
	if min > max {
		return 0, 0, fmt.Errorf("%w: %q: min is greater than max", ErrInvalidRangeSpec, spec)
	}

	return min, max, nil
}

// parseCodepoint parses a hexadecimal Unicode codepoint.
func parseCodepoint(s string) (rune, error) {
	if len(s) == 0 {
		return 0, fmt.Errorf("empty codepoint")
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("not a hexadecimal number")
	}
	if v > unicode.MaxRune {
		return 0, fmt.Errorf("codepoint out of the Unicode range")
	}

	return rune(v), nil
}
