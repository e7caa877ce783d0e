// internal/util/util.go
package util

import (
	"fmt"
	"os"
	"unicode/utf8"
)

// WriteFile writes data to a file with 0o644 permissions.
func WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

// TruncateRunes truncates a string to a maximum number of runes,
// appending an ellipsis if truncated.
func TruncateRunes(text string, maxRunes int) string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxRunes]) + "…"
}

// FormatCost renders a USD amount at the precision cost-per-inference
// needs.
func FormatCost(usd float64) string {
	return fmt.Sprintf("$%.5f", usd)
}

// FormatLatency renders a millisecond latency without decimals.
func FormatLatency(ms float64) string {
	return fmt.Sprintf("%.0fms", ms)
}

// FormatTokens renders a token count with thousands separators.
func FormatTokens(n int) string {
	if n < 0 {
		return "-" + FormatTokens(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}

// FormatPercent renders a percentage with one decimal place.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
