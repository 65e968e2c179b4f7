// Package normalize folds PR text into the canonical form the vocabulary is
// built from. Training and serving must agree byte for byte, so any change
// here needs a features.VocabularyVersion bump
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalizer is stateless and safe for concurrent use
type Normalizer struct{}

// New returns a Normalizer
func New() *Normalizer { return &Normalizer{} }

// transform chains keep state, so each call borrows one
var chains = sync.Pool{New: func() any {
	return transform.Chain(
		norm.NFKD,    // split accents and ligatures
		cases.Fold(), // case fold
		runes.Remove(runes.Predicate(func(r rune) bool {
			return unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Cf, r)
		})), // combining marks and zero widths
		width.Fold, // fullwidth to ascii
		norm.NFC,
	)
}}

// Normalize drops invalid UTF-8, folds s through the chain above and
// collapses whitespace runs to single spaces
func (*Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}
	tr := chains.Get().(transform.Transformer)
	defer chains.Put(tr)
	tr.Reset()

	out, _, err := transform.String(tr, strings.ToValidUTF8(s, ""))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(out), " ")
}
