// Package normalize converts file name stems into lowercase ASCII-safe
// tokens and owns the stem/extension split used across the organizer.
package normalize

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

// Normalize transliterates text into a lowercase ASCII token suitable for
// file names. Input is NFKC-normalized, transliterated to a Latin
// approximation (Cyrillic and other scripts included, Latin passes
// through), and every rune outside [A-Za-z0-9] becomes a single underscore.
// The function is pure and total; empty input yields an empty token.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	decoded := unidecode.Unidecode(norm.NFKC.String(text))
	var b strings.Builder
	b.Grow(len(decoded))
	for _, r := range decoded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// SplitStem splits a file name into stem and extension. The extension
// starts at the final dot and keeps its original case. A leading dot
// (dotfiles) and a trailing dot belong to the stem, so ".bashrc" and
// "draft." both report an empty extension.
func SplitStem(name string) (stem, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	return name[:i], name[i:]
}
