package normalize

import (
	"unicode"
	"unicode/utf8"
)

// MinTokenRunes is the shortest token kept by Tokens
const MinTokenRunes = 2

// isWord reports whether r belongs inside a token. Only letters and digits do;
// underscores, hyphens and all other punctuation split
func isWord(r rune) bool {
	if r == utf8.RuneError {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Tokens normalizes s and splits it into word tokens of at least MinTokenRunes runes.
// Order and duplicates are preserved
func (n *Normalizer) Tokens(s string) []string {
	ns := n.Normalize(s)
	if ns == "" {
		return nil
	}
	var out []string
	start, runes := -1, 0
	for i, r := range ns {
		if isWord(r) {
			if start < 0 {
				start, runes = i, 0
			}
			runes++
			continue
		}
		if start >= 0 {
			if runes >= MinTokenRunes {
				out = append(out, ns[start:i])
			}
			start = -1
		}
	}
	if start >= 0 && runes >= MinTokenRunes {
		out = append(out, ns[start:])
	}
	return out
}
