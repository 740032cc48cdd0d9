package document

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxNameLength is the maximum number of runes kept in a member name.
const MaxNameLength = 128

// SanitizeName normalizes a member name to NFC, replaces control characters
// with spaces, trims surrounding space and truncates it to MaxNameLength
// runes.
func SanitizeName(name string) string {
	name = norm.NFC.String(name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if r := []rune(name); len(r) > MaxNameLength {
		name = strings.TrimSpace(string(r[:MaxNameLength]))
	}
	return name
}
