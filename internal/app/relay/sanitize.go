package relay

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field limits, in runes.
const (
	MaxRoomIDLength      = 40
	MaxDisplayNameLength = 24
	MaxKeyLength         = 50
	MaxMessageIDLength   = 64
	MaxTextLength        = 2000
	MaxFilenameLength    = 140
	MaxMIMETypeLength    = 100
)

// SanitizeText strips angle brackets, invalid UTF-8 and control characters
// (newline and tab survive) and truncates the result to max runes.
func SanitizeText(s string, max int) string {
	return sanitize(s, max, true)
}

// SanitizeLine is SanitizeText for single-line fields: every control
// character is dropped and surrounding whitespace is trimmed.
func SanitizeLine(s string, max int) string {
	return strings.TrimSpace(sanitize(s, max, false))
}

func sanitize(s string, max int, multiline bool) string {
	if s == "" || max <= 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(min(len(s), max*utf8.UTFMax))

	n := 0
	for i, r := range s {
		if n == max {
			break
		}

		switch {
		case r == '<' || r == '>':
			continue
		case r == utf8.RuneError:
			if _, size := utf8.DecodeRuneInString(s[i:]); size <= 1 {
				continue
			}
		case unicode.IsControl(r):
			if !multiline || (r != '\n' && r != '\t') {
				continue
			}
		}

		b.WriteRune(r)
		n++
	}

	return b.String()
}
