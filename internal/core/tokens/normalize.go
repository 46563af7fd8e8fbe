// Package tokens provides the deterministic text normalizer and token-set
// similarity primitives shared by clustering and every scorer
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKC normalization and case folding
// 3 Strip URLs
// 4 Replace anything outside [a-z0-9 -] with a space
// 5 Collapse whitespace and split
// 6 Drop tokens shorter than 3 or longer than 24 bytes
// 7 Drop stop words
// 8 Crude suffix stem ing/ed/s
package tokens

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

const (
	// MinTokenLen is the shortest token that survives normalization
	MinTokenLen = 3
	// MaxTokenLen is the longest token that survives normalization
	MaxTokenLen = 24
)

var urlRe = regexp.MustCompile(`https?://\S+`)

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		// order matters and mirrors the documented pipeline
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),                       // unicode case folding
			runes.Remove(runes.In(unicode.Mn)), // strip combining marks
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,                         // map fullwidth forms to ASCII
		)
	},
}

// Normalize reduces free text to an ordered slice of lowercase tokens.
// It never fails: empty or garbage input yields an empty slice
func Normalize(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	// 1 repair UTF-8 drop invalid bytes
	s = strings.ToValidUTF8(s, "")

	// 2 fold via pooled chain then reset and return it
	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	// 3 strip URLs before punctuation folding so hostnames do not leak tokens
	ns = urlRe.ReplaceAllString(ns, " ")

	// 4 anything outside [a-z0-9 -] becomes a space
	ns = foldCharset(ns)

	// 5-8 split, bound, de-stop, stem
	fields := strings.Fields(ns)
	out := make([]string, 0, len(fields))
	for _, tok := range fields {
		if len(tok) < MinTokenLen || len(tok) > MaxTokenLen {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		out = append(out, stem(tok))
	}
	// one representation for "nothing survived", same as the blank-input path
	if len(out) == 0 {
		return nil
	}
	return out
}

// foldCharset maps every rune outside [a-z0-9 -] to a space
func foldCharset(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// stem strips one trailing suffix, longest first.
// Deliberately crude: it only has to make near-duplicate headlines collide
func stem(tok string) string {
	switch {
	case len(tok) > 5 && strings.HasSuffix(tok, "ing"):
		return tok[:len(tok)-3]
	case len(tok) > 4 && strings.HasSuffix(tok, "ed"):
		return tok[:len(tok)-2]
	case len(tok) > 4 && strings.HasSuffix(tok, "s"):
		return tok[:len(tok)-1]
	}
	return tok
}
