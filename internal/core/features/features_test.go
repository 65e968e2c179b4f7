package features

import (
	"encoding/json"
	"math"
	"slices"
	"testing"
)

func TestWeakLabel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		add, del int64
		want     int
	}{
		{0, 0, 0},
		{5000, 0, 0},
		{2500, 2500, 0},
		{3000, 2001, 1},
		{1, 5000, 1},
	}
	for _, c := range cases {
		if got := WeakLabel(Record{Additions: c.add, Deletions: c.del}, DefaultLabelThreshold); got != c.want {
			t.Fatalf("WeakLabel(%d,%d) = %d, want %d", c.add, c.del, got, c.want)
		}
	}
}

func TestRecordText(t *testing.T) {
	t.Parallel()

	r := Record{Title: "Fix bug", Body: "Corrects overflow", Labels: []string{"bug", "core"}, AuthorAssociation: "MEMBER"}
	if got, want := r.Text(), "Fix bug Corrects overflow bug core MEMBER"; got != want {
		t.Fatalf("Text = %q, want %q", got, want)
	}
	var zero Record
	if got := zero.Text(); got != "   " {
		t.Fatalf("zero Text = %q", got)
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()

	r := Record{Additions: -3, CommitsCount: 2}.Clamp()
	if r.Additions != 0 || r.CommitsCount != 2 || r.Labels == nil {
		t.Fatalf("unexpected clamp result %+v", r)
	}
}

func TestFit_SelectsByDocumentFrequency(t *testing.T) {
	t.Parallel()

	docs := []string{
		"alpha beta gamma",
		"alpha beta",
		"alpha delta",
		"zeta",
	}
	v := Fit(docs, 2)
	if want := []string{"alpha", "beta"}; !slices.Equal(v.Terms, want) {
		t.Fatalf("Terms = %v, want %v", v.Terms, want)
	}
	if v.DocCount != 4 {
		t.Fatalf("DocCount = %d", v.DocCount)
	}
	// alpha df=3, beta df=2
	if got, want := v.IDF[0], math.Log(5.0/4.0)+1; math.Abs(got-want) > 1e-12 {
		t.Fatalf("idf(alpha) = %v, want %v", got, want)
	}
	if got, want := v.IDF[1], math.Log(5.0/3.0)+1; math.Abs(got-want) > 1e-12 {
		t.Fatalf("idf(beta) = %v, want %v", got, want)
	}
}

func TestFit_TiesBrokenLexically(t *testing.T) {
	t.Parallel()

	v := Fit([]string{"pear apple mango"}, 2)
	if want := []string{"apple", "mango"}; !slices.Equal(v.Terms, want) {
		t.Fatalf("Terms = %v, want %v", v.Terms, want)
	}
}

func TestFit_DropsShortTokensAndFolds(t *testing.T) {
	t.Parallel()

	v := Fit([]string{"A Fix FIX fix x"}, 10)
	if want := []string{"fix"}; !slices.Equal(v.Terms, want) {
		t.Fatalf("Terms = %v, want %v", v.Terms, want)
	}
}

func TestVectorize_Width(t *testing.T) {
	t.Parallel()

	v := Fit([]string{"refactor parser", "add parser tests", "bump deps"}, DefaultVocabSize)
	for _, r := range []Record{{}, {Title: "unseen words only"}, {Title: "parser", Additions: 9}} {
		if got := len(Vectorize(r, v)); got != NumericFields+v.Size() {
			t.Fatalf("len = %d, want %d", got, NumericFields+v.Size())
		}
	}
}

func TestVectorize_NumericBlockAndNorm(t *testing.T) {
	t.Parallel()

	v := Fit([]string{"refactor parser", "add parser tests"}, DefaultVocabSize)
	r := Record{Additions: 10, Deletions: 2, ChangedFiles: 3, AssigneesCount: 1, CommitsCount: 4, Title: "refactor parser"}
	vec := Vectorize(r, v)
	if want := []float64{10, 2, 3, 1, 4}; !slices.Equal(vec[:NumericFields], want) {
		t.Fatalf("numeric block = %v, want %v", vec[:NumericFields], want)
	}
	var ss float64
	for _, w := range vec[NumericFields:] {
		ss += w * w
	}
	if math.Abs(ss-1) > 1e-9 {
		t.Fatalf("text block norm^2 = %v, want 1", ss)
	}

	empty := Vectorize(Record{}, v)
	for i, w := range empty {
		if w != 0 {
			t.Fatalf("empty record column %d = %v", i, w)
		}
	}
}

// TestVectorize_ThreeRecords mirrors a tiny encode run: three records, V capped at 1000
func TestVectorize_ThreeRecords(t *testing.T) {
	t.Parallel()

	rs := []Record{
		{Additions: 6000, Deletions: 10, Title: "huge vendored drop"},
		{Additions: 3, Title: "typo"},
		{Additions: 40, Deletions: 40, Title: "tests", Labels: []string{"ci"}},
	}
	v := Fit(Texts(rs), DefaultVocabSize)
	labels := []int{}
	for _, r := range rs {
		if got := len(Vectorize(r, v)); got != v.Dim() {
			t.Fatalf("row width %d, want %d", got, v.Dim())
		}
		labels = append(labels, WeakLabel(r, DefaultLabelThreshold))
	}
	if !slices.Equal(labels, []int{1, 0, 0}) {
		t.Fatalf("labels = %v", labels)
	}
	if v.Size() > DefaultVocabSize {
		t.Fatalf("vocabulary too large: %d", v.Size())
	}
}

func TestVocabulary_JSONRoundTripKeepsIndex(t *testing.T) {
	t.Parallel()

	v := Fit([]string{"merge queue", "queue flake"}, 10)
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	var back Vocabulary
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	i, ok := back.Index("queue")
	if !ok || back.Terms[i] != "queue" {
		t.Fatalf("index lost after unmarshal")
	}
	a := Vectorize(Record{Title: "queue flake"}, v)
	c := Vectorize(Record{Title: "queue flake"}, &back)
	if !slices.Equal(a, c) {
		t.Fatalf("vectors differ after round trip")
	}
}

func TestVocabulary_UnmarshalRejectsBadShape(t *testing.T) {
	t.Parallel()

	bad := []string{
		`{"version":1,"terms":["a","b"],"idf":[1]}`,
		`{"version":1,"terms":["b","a"],"idf":[1,1]}`,
		`{"version":1,"terms":["a","a"],"idf":[1,1]}`,
		`{"version":9,"terms":[],"idf":[]}`,
	}
	for _, in := range bad {
		var v Vocabulary
		if err := json.Unmarshal([]byte(in), &v); err == nil {
			t.Fatalf("expected error for %s", in)
		}
	}
}
