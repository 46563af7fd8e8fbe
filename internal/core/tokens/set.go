package tokens

// Set is a deduplicated set of normalized tokens derived from one text field.
// Ephemeral: callers rebuild it per call instead of caching
type Set map[string]struct{}

// NewSet builds a Set from already-normalized tokens
func NewSet(toks []string) Set {
	s := make(Set, len(toks))
	for _, t := range toks {
		s[t] = struct{}{}
	}
	return s
}

// SetOf normalizes text and returns its token set
func SetOf(text string) Set {
	return NewSet(Normalize(text))
}

// Has reports whether tok is in the set
func (s Set) Has(tok string) bool {
	_, ok := s[tok]
	return ok
}

// Jaccard returns |a∩b| / |a∪b|.
// Two empty sets are identical (1); exactly one empty set shares nothing (0).
// Intersection iterates the smaller set, an O(min(|a|,|b|)) walk that matters
// when clustering compares one item against every centroid
func Jaccard(a, b Set) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	inter := 0
	for t := range small {
		if _, ok := large[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
