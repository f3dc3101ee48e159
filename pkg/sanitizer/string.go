package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims s and collapses inner whitespace runs to one space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeTitle(title string) string {
	return TrimAndNormalize(title)
}

// NormalizeID trims surrounding whitespace. IDs are case sensitive.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}
