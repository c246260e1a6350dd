package validation

import (
	"strings"
	"unicode"
)

// isControl reports whether r is a C0 control character or DEL.
func isControl(r rune) bool {
	return r <= 0x1F || r == 0x7F
}

// isSpace matches the ECMAScript \s class: unicode.IsSpace plus the byte
// order mark, minus NEL (U+0085).
func isSpace(r rune) bool {
	if r == '\u0085' {
		return false
	}
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// Sanitize normalizes free text typed into any of the studio tools.
//
// Control characters (U+0000-U+001F, U+007F) are removed first, so a newline
// between two words joins them rather than becoming a space. Remaining
// whitespace runs collapse to a single ASCII space and the result is trimmed.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))

	space := false
	for _, r := range text {
		if isControl(r) {
			continue
		}
		if isSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		space = false
		b.WriteRune(r)
	}

	return strings.Trim(b.String(), " ")
}

// SanitizeValue sanitizes v when it is textual and returns "" otherwise.
func SanitizeValue(v any) string {
	switch s := v.(type) {
	case string:
		return Sanitize(s)
	case *string:
		if s == nil {
			return ""
		}
		return Sanitize(*s)
	default:
		return ""
	}
}
