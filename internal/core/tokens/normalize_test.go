package tokens

import (
	"reflect"
	"testing"
)

func TestNormalize_Table(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  []string
	}{
		{
			name: "empty",
			in:   "",
			out:  nil,
		},
		{
			name: "whitespace only",
			in:   " \t\n ",
			out:  nil,
		},
		{
			name: "lowercase and punctuation",
			in:   "OpenAI Ships New Reasoning Models!",
			out:  []string{"openai", "ship", "reason", "model"},
		},
		{
			name: "urls stripped entirely",
			in:   "details at https://example.com/a?b=c#d rollout",
			out:  []string{"detail", "rollout"},
		},
		{
			name: "stop words and short tokens dropped",
			in:   "the new story is up on hn",
			out:  nil,
		},
		{
			name: "domain noise dropped",
			in:   "BREAKING: fusion breakthrough confirmed",
			out:  []string{"breakthrough"},
		},
		{
			name: "length bounds",
			in:   "ab abc a-very-long-token-that-keeps-going-forever",
			out:  []string{"abc"},
		},
		{
			name: "suffix stemming",
			in:   "workers shipping shipped caps",
			out:  []string{"worker", "shipp", "shipp", "caps"},
		},
		{
			name: "fullwidth folds to ascii",
			in:   "ＬＡＵＮＣＨ window",
			out:  []string{"launch", "window"},
		},
		{
			name: "invalid utf8 repaired",
			in:   string([]byte{0xff, 'r', 'o', 'c', 'k', 'e', 't', 0x80, 's'}),
			out:  []string{"rocket"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if !reflect.DeepEqual(got, tc.out) {
				t.Fatalf("Normalize(%q) = %v, want %v", tc.in, got, tc.out)
			}
		})
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	in := "Fusion startup claims NET ENERGY GAIN, see https://x.io/p"
	a := Normalize(in)
	b := Normalize(in)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("two calls disagree: %v vs %v", a, b)
	}
}

func TestStem(t *testing.T) {
	tests := []struct{ in, out string }{
		{"running", "runn"},
		{"sing", "sing"},   // len 4, ing kept
		{"parsed", "pars"},
		{"bed", "bed"},     // len 3, ed kept
		{"models", "model"},
		{"gas", "gas"}, // len 3, s kept
	}
	for _, tc := range tests {
		if got := stem(tc.in); got != tc.out {
			t.Fatalf("stem(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}
