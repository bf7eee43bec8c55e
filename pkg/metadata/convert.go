package metadata

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Converter turns a raw attribute value into its typed form. A non-nil error
// means the value (and the attribute carrying it) must be dropped.
type Converter func(raw string) (any, error)

// AsString accepts any value unchanged. It never fails.
func AsString(raw string) (any, error) {
	return raw, nil
}

// AsFloat parses a decimal number.
func AsFloat(raw string) (any, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", raw)
	}
	return v, nil
}

// AsInt parses a base-10 integer.
func AsInt(raw string) (any, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("not an integer: %q", raw)
	}
	return v, nil
}

// AsBool treats any non-empty value as true, mirroring the presence-flag
// semantics of the scan grammar. It never fails.
func AsBool(raw string) (any, error) {
	return strings.TrimSpace(raw) != "", nil
}

// estimatedPat matches duration strings of the shape "2d 2h 2m 2s" with any
// of the four parts optional.
var estimatedPat = regexp.MustCompile(
	`^(?:(?P<days>[0-9]+)d\s*)?` +
		`(?:(?P<hours>[0-9]+)h\s*)?` +
		`(?:(?P<minutes>[0-9]+)m\s*)?` +
		`(?:(?P<seconds>[0-9]+)s)?`)

// EstimatedToSeconds converts a slicer duration string such as "2h 6m 5s" to
// seconds. The second return value is false when nothing parseable was found
// or the total is zero.
func EstimatedToSeconds(value string) (int, bool) {
	m := estimatedPat.FindStringSubmatch(strings.ToLower(value))
	if m == nil {
		return 0, false
	}
	units := []int{24 * 60 * 60, 60 * 60, 60, 1}
	total := 0
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, false
		}
		total += n * unit
	}
	if total == 0 {
		return 0, false
	}
	return total, true
}
