package normalize

import (
	"reflect"
	"testing"
)

func TestNormalize_Table(t *testing.T) {
	n := New()

	tests := []struct {
		name string
		in   string
		out  string
	}{
		{name: "identity ascii", in: "hello world", out: "hello world"},
		{name: "empty", in: "", out: ""},
		{
			name: "utf8 repair drops invalid bytes",
			in:   string([]byte{0xff, 'f', 'o', 'o', 0x80, ' ', 'b', 'a', 'r'}),
			out:  "foo bar",
		},
		{name: "case fold", in: "Fix BUG", out: "fix bug"},
		{name: "remove zero-widths", in: "re\u200Bfac\u200Dtor", out: "refactor"},
		{name: "strip accents precomposed", in: "Café", out: "cafe"},
		{name: "strip accents combining", in: "cafe\u0301", out: "cafe"},
		{name: "width fold fullwidth", in: "ＦＩＸ ci", out: "fix ci"},
		{name: "nfkc ligature", in: "oﬃce", out: "office"},
		{name: "collapse whitespace", in: "  a\t\tb\nc   d  ", out: "a b c d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.in); got != tt.out {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.out)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	n := New()

	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "Fix a bug in CI", want: []string{"fix", "bug", "in", "ci"}},
		{in: "bump go-chi/chi to v5.1.0", want: []string{"bump", "go", "chi", "chi", "to", "v5"}},
		{in: "snake_case splits", want: []string{"snake", "case", "splits"}},
		{in: "a_b-c 42", want: []string{"42"}},
		{in: "x y z", want: nil},
		{in: "naïve MEMBER", want: []string{"naive", "member"}},
	}
	for _, tt := range tests {
		if got := n.Tokens(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("Tokens(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestTokens_Deterministic(t *testing.T) {
	n := New()
	in := "Refactor ＡＰＩ layer; add tests for café handling"
	first := n.Tokens(in)
	for range 50 {
		if got := n.Tokens(in); !reflect.DeepEqual(got, first) {
			t.Fatalf("tokenizer not deterministic: %v vs %v", got, first)
		}
	}
}
