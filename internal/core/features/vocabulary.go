package features

import (
	"encoding/json"
	"math"
	"slices"
	"sort"

	"prsentinel/internal/core/normalize"
	perr "prsentinel/internal/platform/errors"
)

// VocabularyVersion is bumped whenever tokenization or weighting changes
const VocabularyVersion = 1

// Vocabulary maps terms to column indexes and carries their idf weights.
// Terms are stored in lexical order; column i of the text block is Terms[i].
// A Vocabulary is immutable after Fit or Unmarshal and safe for concurrent use
type Vocabulary struct {
	Version  int       `json:"version"`
	Terms    []string  `json:"terms"`
	IDF      []float64 `json:"idf"`
	DocCount int       `json:"doc_count"`

	index map[string]int
}

var tokenizer = normalize.New()

// Fit selects at most maxTerms terms by document frequency (ties broken lexically)
// and computes smooth idf = ln((1+n)/(1+df)) + 1 over docs
func Fit(docs []string, maxTerms int) *Vocabulary {
	if maxTerms <= 0 {
		maxTerms = DefaultVocabSize
	}
	df := map[string]int{}
	for _, d := range docs {
		seen := map[string]struct{}{}
		for _, tok := range tokenizer.Tokens(d) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxTerms {
		terms = terms[:maxTerms]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for i, t := range terms {
		idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	v := &Vocabulary{Version: VocabularyVersion, Terms: terms, IDF: idf, DocCount: len(docs)}
	v.buildIndex()
	return v
}

func (v *Vocabulary) buildIndex() {
	v.index = make(map[string]int, len(v.Terms))
	for i, t := range v.Terms {
		v.index[t] = i
	}
}

// Size is the number of text columns
func (v *Vocabulary) Size() int {
	if v == nil {
		return 0
	}
	return len(v.Terms)
}

// Dim is the full vector width: numeric block plus one column per term
func (v *Vocabulary) Dim() int { return NumericFields + v.Size() }

// Index returns the column of term within the text block
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Transform writes the L2 normalized tf-idf weights of text into dst, which must have Size() entries
func (v *Vocabulary) Transform(text string, dst []float64) {
	clear(dst)
	for _, tok := range tokenizer.Tokens(text) {
		if i, ok := v.index[tok]; ok {
			dst[i]++
		}
	}
	var ss float64
	for i, tf := range dst {
		if tf == 0 {
			continue
		}
		w := tf * v.IDF[i]
		dst[i] = w
		ss += w * w
	}
	if ss == 0 {
		return
	}
	norm := math.Sqrt(ss)
	for i := range dst {
		dst[i] /= norm
	}
}

// Validate checks the invariants Unmarshal relies on
func (v *Vocabulary) Validate() error {
	if v == nil {
		return perr.New(perr.ErrorCodeInvalidArgument, "vocabulary: nil")
	}
	if v.Version != VocabularyVersion {
		return perr.Newf(perr.ErrorCodeInvalidArgument, "vocabulary: unsupported version %d", v.Version)
	}
	if len(v.Terms) != len(v.IDF) {
		return perr.Newf(perr.ErrorCodeInvalidArgument, "vocabulary: %d terms but %d idf weights", len(v.Terms), len(v.IDF))
	}
	if !slices.IsSorted(v.Terms) {
		return perr.New(perr.ErrorCodeInvalidArgument, "vocabulary: terms not sorted")
	}
	for i := 1; i < len(v.Terms); i++ {
		if v.Terms[i] == v.Terms[i-1] {
			return perr.Newf(perr.ErrorCodeInvalidArgument, "vocabulary: duplicate term %q", v.Terms[i])
		}
	}
	return nil
}

// UnmarshalJSON decodes, validates and indexes a persisted vocabulary
func (v *Vocabulary) UnmarshalJSON(b []byte) error {
	type plain Vocabulary
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*v = Vocabulary(p)
	if err := v.Validate(); err != nil {
		return err
	}
	v.buildIndex()
	return nil
}
