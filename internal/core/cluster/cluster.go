// Package cluster groups normalized items into moment candidates using greedy
// centroid assignment followed by a near-duplicate merge pass
package cluster

import (
	"sort"

	"zeitgeist/internal/core/tokens"
)

// Item is one clusterable unit, already normalized by the caller. Tokens is
// the ordered normalizer output; first occurrence order breaks centroid ties,
// so it must not be shuffled
type Item struct {
	ID       string
	Title    string
	Source   string
	Category string
	Weight   float64
	Tokens   []string
}

// TokenSet returns the deduplicated set view used for similarity
func (it Item) TokenSet() tokens.Set { return tokens.NewSet(it.Tokens) }

// Cluster is a mutable aggregate grown during assignment and frozen once the
// engine returns it
type Cluster struct {
	Members    []Item
	Sources    map[string]int
	Categories map[string]int
	MaxWeight  float64

	counts map[string]int // token -> occurrences across members
	seen   map[string]int // token -> first-seen rank, breaks centroid ties
	next   int
}

func newCluster() *Cluster {
	return &Cluster{
		Sources:    make(map[string]int),
		Categories: make(map[string]int),
		counts:     make(map[string]int),
		seen:       make(map[string]int),
	}
}

func (c *Cluster) add(it Item) {
	c.Members = append(c.Members, it)
	if it.Source != "" {
		c.Sources[it.Source]++
	}
	if it.Category != "" {
		c.Categories[it.Category]++
	}
	if it.Weight > c.MaxWeight {
		c.MaxWeight = it.Weight
	}
	// walk the ordered slice, not a set, so first-seen ranks are reproducible
	inItem := make(map[string]struct{}, len(it.Tokens))
	for _, t := range it.Tokens {
		if _, dup := inItem[t]; dup {
			continue
		}
		inItem[t] = struct{}{}
		if _, ok := c.seen[t]; !ok {
			c.seen[t] = c.next
			c.next++
		}
		c.counts[t]++
	}
}

// absorb merges every member of o into c
func (c *Cluster) absorb(o *Cluster) {
	for _, m := range o.Members {
		c.add(m)
	}
}

// Centroid returns the cluster's similarity fingerprint: its top-n most
// frequent tokens, ties broken by first-seen order
func (c *Cluster) Centroid(n int) tokens.Set {
	if len(c.counts) == 0 || n <= 0 {
		return nil
	}
	type tc struct {
		tok   string
		count int
		rank  int
	}
	all := make([]tc, 0, len(c.counts))
	for t, n := range c.counts {
		all = append(all, tc{tok: t, count: n, rank: c.seen[t]})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].rank < all[j].rank
	})
	if n > len(all) {
		n = len(all)
	}
	out := make(tokens.Set, n)
	for _, e := range all[:n] {
		out[e.tok] = struct{}{}
	}
	return out
}

// Category returns the dominant member category, or "" when none was tagged
func (c *Cluster) Category() string {
	best, bestN := "", 0
	for cat, n := range c.Categories {
		if n > bestN || (n == bestN && (best == "" || cat < best)) {
			best, bestN = cat, n
		}
	}
	return best
}

// DistinctSources returns how many distinct source tags the members span
func (c *Cluster) DistinctSources() int { return len(c.Sources) }
