package utils

import "strings"

// Common ticker aliases for companies usually referred to by name.
var tickerAliases = map[string]string{
	"APPLE":              "AAPL",
	"MICROSOFT":          "MSFT",
	"ALPHABET":           "GOOGL",
	"GOOGLE":             "GOOGL",
	"AMAZON":             "AMZN",
	"META":               "META",
	"FACEBOOK":           "META",
	"NVIDIA":             "NVDA",
	"TESLA":              "TSLA",
	"BERKSHIRE":          "BRK.B",
	"BERKSHIRE HATHAWAY": "BRK.B",
	"JPMORGAN":           "JPM",
	"JP MORGAN":          "JPM",
	"JOHNSON & JOHNSON":  "JNJ",
	"EXXON":              "XOM",
	"WALMART":            "WMT",
	"COCA-COLA":          "KO",
	"COCA COLA":          "KO",
	"PROCTER & GAMBLE":   "PG",
	"INTEL":              "INTC",
	"NETFLIX":            "NFLX",
	"DISNEY":             "DIS",
}

// NormalizeTicker canonicalizes user input into an exchange ticker:
// trimmed, uppercased, aliases resolved, exchange suffixes stripped.
func NormalizeTicker(input string) string {
	t := strings.ToUpper(strings.TrimSpace(input))
	if t == "" {
		return t
	}

	if alias, ok := tickerAliases[t]; ok {
		return alias
	}

	// Strip "NYSE:" / "NASDAQ:" prefixes.
	if idx := strings.LastIndex(t, ":"); idx >= 0 {
		t = t[idx+1:]
	}
	return strings.TrimSpace(t)
}
