package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadAmount = errors.New("invalid amount")

// ParseCents converts a dollars-and-cents form value ("45", "45.5",
// "45.50") to integer cents. More than two decimal places is an error.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return 0, ErrBadAmount
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, ErrBadAmount
	}
	for len(frac) < 2 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrBadAmount
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, ErrBadAmount
	}
	cents := w*100 + f
	if neg {
		cents = -cents
	}
	return cents, nil
}

// FormatCents renders integer cents as "12.34" for templates and forms.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
