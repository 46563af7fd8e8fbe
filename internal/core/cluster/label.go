package cluster

import (
	"regexp"
	"sort"
	"strings"

	"zeitgeist/internal/core/tokens"
)

// genericTitles rejects member titles that say nothing about the moment
var genericTitles = map[string]struct{}{
	"update":     {},
	"updates":    {},
	"news":       {},
	"discussion": {},
	"thread":     {},
	"megathread": {},
	"question":   {},
	"help":       {},
	"test":       {},
	"untitled":   {},
	"article":    {},
	"link":       {},
}

var (
	labelURLRe   = regexp.MustCompile(`https?://\S+`)
	labelSpaceRe = regexp.MustCompile(`\s+`)
)

// Representative returns the member whose title should name the cluster:
// highest weight, then highest similarity to the centroid, then the shorter
// cleaned title. Second return is false for an empty cluster
func (c *Cluster) Representative(centroidSize int) (Item, bool) {
	if len(c.Members) == 0 {
		return Item{}, false
	}
	centroid := c.Centroid(centroidSize)

	idx := make([]int, len(c.Members))
	for i := range idx {
		idx[i] = i
	}
	sims := make([]float64, len(c.Members))
	for i, m := range c.Members {
		sims[i] = tokens.Jaccard(m.TokenSet(), centroid)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ma, mb := c.Members[idx[a]], c.Members[idx[b]]
		if ma.Weight != mb.Weight {
			return ma.Weight > mb.Weight
		}
		if sims[idx[a]] != sims[idx[b]] {
			return sims[idx[a]] > sims[idx[b]]
		}
		return len(CleanTitle(ma.Title)) < len(CleanTitle(mb.Title))
	})
	return c.Members[idx[0]], true
}

// Label names the cluster for display. It prefers the representative's cleaned
// title and falls back to a centroid-token label when the pick is judged
// generic. It never invents content absent from the members
func (c *Cluster) Label(centroidSize int) string {
	rep, ok := c.Representative(centroidSize)
	if ok {
		if t := CleanTitle(rep.Title); !IsGenericTitle(t) {
			return t
		}
	}
	return c.tokenLabel(centroidSize)
}

// tokenLabel derives a label from the centroid's top tokens
func (c *Cluster) tokenLabel(centroidSize int) string {
	centroid := c.Centroid(centroidSize)
	if len(centroid) == 0 {
		return ""
	}
	toks := make([]string, 0, len(centroid))
	for t := range centroid {
		toks = append(toks, t)
	}
	// count desc, first-seen asc, same ordering Centroid ranks by
	sort.Slice(toks, func(i, j int) bool {
		if c.counts[toks[i]] != c.counts[toks[j]] {
			return c.counts[toks[i]] > c.counts[toks[j]]
		}
		return c.seen[toks[i]] < c.seen[toks[j]]
	})
	if len(toks) > 4 {
		toks = toks[:4]
	}
	return strings.Join(toks, " ")
}

// CleanTitle strips URLs and collapses whitespace
func CleanTitle(s string) string {
	s = labelURLRe.ReplaceAllString(s, " ")
	s = labelSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// IsGenericTitle judges whether a cleaned title is too vague to display.
// Short titles and deny-listed single topics both fail
func IsGenericTitle(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 8 {
		return true
	}
	if _, bad := genericTitles[strings.ToLower(s)]; bad {
		return true
	}
	// a title whose meaningful tokens all normalize away is noise
	return len(tokens.Normalize(s)) < 2
}
