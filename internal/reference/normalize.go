// Package reference turns free-text scripture queries into ranked,
// canonical references. Every function in it is pure: catalogs and
// preferences come in as arguments and nothing is mutated.
package reference

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes raw query text: lower-case, punctuation replaced
// by spaces, decimal digits of any script folded to ASCII, a space inserted
// between a digit and a following letter, and whitespace collapsed and
// trimmed. Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	var sb strings.Builder
	sb.Grow(len(raw))

	pendingSpace := false
	prevDigit := false
	for _, r := range norm.NFC.String(strings.ToLower(raw)) {
		d, isDigit := asciiDigit(r)
		switch {
		case isDigit || isLetter(r):
			if sb.Len() > 0 && (pendingSpace || (prevDigit && !isDigit)) {
				sb.WriteByte(' ')
			}
			pendingSpace = false
			prevDigit = isDigit
			if isDigit {
				sb.WriteRune(d)
			} else {
				sb.WriteRune(r)
			}
		default:
			// punctuation and whitespace both collapse into one separator
			pendingSpace = true
			prevDigit = false
		}
	}

	return sb.String()
}

// isLetter treats combining marks as letters so that names in scripts
// written with vowel signs stay whole words.
func isLetter(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r)
}

// asciiDigit maps a decimal digit of any script to its ASCII form.
// Unicode encodes each script's digits as a contiguous run starting at
// zero, so the value is the offset from the start of the run.
func asciiDigit(r rune) (rune, bool) {
	if r >= '0' && r <= '9' {
		return r, true
	}
	if !unicode.IsDigit(r) {
		return 0, false
	}

	zero := r
	for unicode.IsDigit(zero - 1) {
		zero--
	}
	return '0' + (r-zero)%10, true
}
