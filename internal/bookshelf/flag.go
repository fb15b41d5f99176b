package bookshelf

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ParseFlag converts a numeric query flag to a boolean the way a loose numeric
// conversion followed by a truthiness check would: the trimmed value must parse as
// a number, and the flag is set when that number is neither zero nor NaN.
// Unparseable values, including the empty string, yield false.
func ParseFlag(raw string) bool {
	v, ok := parseNumber(strings.TrimSpace(raw))
	return ok && v != 0 && !math.IsNaN(v)
}

func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			digits := s[2:]
			if strings.ContainsRune(digits, '_') {
				return 0, false
			}
			n, err := strconv.ParseUint(digits, base, 64)
			if err != nil {
				// Out-of-range literals are still non-zero numbers.
				if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
					return math.Inf(1), true
				}
				return 0, false
			}
			return float64(n), true
		}
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	// ParseFloat would also take inf, nan, hex floats and underscores, none of
	// which are numbers here.
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == 'e', r == 'E', r == '+', r == '-':
		default:
			return 0, false
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return v, true
		}
		return 0, false
	}
	return v, true
}

// FilterFromQuery builds a Filter from the name, reading and finished query
// parameters. A parameter filters whenever its key is present.
func FilterFromQuery(q url.Values) Filter {
	var f Filter
	if q.Has("name") {
		name := q.Get("name")
		f.Name = &name
	}
	if q.Has("reading") {
		reading := ParseFlag(q.Get("reading"))
		f.Reading = &reading
	}
	if q.Has("finished") {
		finished := ParseFlag(q.Get("finished"))
		f.Finished = &finished
	}
	return f
}
