package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeString drops control characters, trims what is left, and caps it at
// maxLen runes. maxLen <= 0 means no cap.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, input))
	if maxLen <= 0 || utf8.RuneCountInString(cleaned) <= maxLen {
		return cleaned
	}
	return strings.TrimSpace(string([]rune(cleaned)[:maxLen]))
}

// NormalizeCropType lowercases a crop name and collapses inner whitespace so
// "Basmati  Rice" and "basmati rice" key the same MSP rate.
func NormalizeCropType(input string) string {
	return strings.ToLower(strings.Join(strings.Fields(SanitizeString(input, 64)), " "))
}
