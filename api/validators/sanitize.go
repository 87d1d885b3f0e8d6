package validators

import (
	"strings"
	"unicode/utf8"
)

// Clean trims input and cuts it to at most maxLen bytes without splitting a
// multi-byte rune. A non-positive maxLen only trims.
func Clean(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 || len(trimmed) <= maxLen {
		return trimmed
	}
	cut := trimmed[:maxLen]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return strings.TrimSpace(cut)
}
