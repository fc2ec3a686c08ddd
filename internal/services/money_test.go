package services

import "testing"

// TestParseCents covers the accepted form-value shapes: bare dollars,
// one or two decimal places, a leading dollar sign, and negatives.
func TestParseCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"45", 4500},
		{"45.5", 4550},
		{"45.50", 4550},
		{"$45.50", 4550},
		{" 45.50 ", 4550},
		{"0.05", 5},
		{".75", 75},
		{"-12.34", -1234},
		{"0", 0},
	}
	for _, c := range cases {
		got, err := ParseCents(c.in)
		if err != nil {
			t.Errorf("ParseCents(%q): unexpected error %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseCents(%q): want %d, got %d", c.in, c.want, got)
		}
	}
}

func TestParseCentsRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "  ", "abc", "1.234", "12.3.4", "1,200"} {
		if _, err := ParseCents(in); err == nil {
			t.Errorf("ParseCents(%q): expected error, got none", in)
		}
	}
}

func TestFormatCents(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{4550, "45.50"},
		{5, "0.05"},
		{0, "0.00"},
		{-1234, "-12.34"},
		{100000, "1000.00"},
	}
	for _, c := range cases {
		if got := FormatCents(c.in); got != c.want {
			t.Errorf("FormatCents(%d): want %q, got %q", c.in, c.want, got)
		}
	}
}

// Round-tripping a parsed amount must be lossless; cents are exact.
func TestMoneyRoundTrip(t *testing.T) {
	for _, s := range []string{"45.50", "0.05", "1999.99"} {
		cents, err := ParseCents(s)
		if err != nil {
			t.Fatalf("ParseCents(%q): %v", s, err)
		}
		if got := FormatCents(cents); got != s {
			t.Errorf("round trip %q: got %q", s, got)
		}
	}
}
