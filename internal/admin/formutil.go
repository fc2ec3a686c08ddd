package admin

import (
	"strconv"
	"strings"
	"time"
)

const (
	dateFormat     = "2006-01-02"
	dateTimeFormat = "2006-01-02T15:04" // html datetime-local inputs
)

// parseDate returns nil for an empty value; malformed input also maps to
// nil so optional date fields degrade to unset instead of erroring.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := time.Parse(dateFormat, s)
	if err != nil {
		return nil
	}
	return &d
}

func parseDateReq(s string) (time.Time, bool) {
	d, err := time.Parse(dateFormat, strings.TrimSpace(s))
	return d, err == nil
}

func parseDateTime(s string) (time.Time, bool) {
	d, err := time.Parse(dateTimeFormat, strings.TrimSpace(s))
	return d, err == nil
}

// formUint parses a select/hidden id value; "" and "0" mean unset.
func formUint(s string) *uint {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return nil
	}
	u := uint(n)
	return &u
}

func formInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// formUints collects all values of a multi-select field.
func formUints(values []string) []uint {
	out := make([]uint, 0, len(values))
	for _, v := range values {
		if u := formUint(v); u != nil {
			out = append(out, *u)
		}
	}
	return out
}
