package utils

import "testing"

func TestFormatUSD(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{1234567.89, "$1,234,567.89"},
		{999, "$999.00"},
		{-4500.5, "-$4,500.50"},
		{0, "$0.00"},
	}
	for _, tc := range cases {
		if got := FormatUSD(tc.in); got != tc.want {
			t.Errorf("FormatUSD(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{2.5e12, "$2.50T"},
		{2.5e9, "$2.50B"},
		{1927345, "$1.93M"},
		{12500, "$12.50K"},
		{99.41, "$99.41"},
		{-1.5e9, "-$1.50B"},
	}
	for _, tc := range cases {
		if got := FormatCompact(tc.in); got != tc.want {
			t.Errorf("FormatCompact(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatPct(t *testing.T) {
	if got := FormatPct(0.124); got != "+12.4%" {
		t.Errorf("FormatPct(0.124) = %q", got)
	}
	if got := FormatPct(-0.05); got != "-5.0%" {
		t.Errorf("FormatPct(-0.05) = %q", got)
	}
}

func TestNormalizeTicker(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"aapl", "AAPL"},
		{"  msft ", "MSFT"},
		{"apple", "AAPL"},
		{"NYSE:BRK.B", "BRK.B"},
		{"nasdaq:nvda", "NVDA"},
		{"google", "GOOGL"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeTicker(tc.in); got != tc.want {
			t.Errorf("NormalizeTicker(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
