package cluster

import (
	"sort"

	"zeitgeist/internal/core/tokens"
)

// Reference thresholds. Empirically chosen in the reference system; behavior
// parity depends on keeping them, so override via Options rather than editing
const (
	DefaultMergeThreshold     = 0.22
	DefaultDuplicateThreshold = 0.55
	DefaultCentroidSize       = 12
)

// Options tunes the engine. Zero values fall back to the reference defaults
type Options struct {
	// MergeThreshold is the minimum centroid similarity for pass-1 assignment
	MergeThreshold float64
	// DuplicateThreshold is the minimum centroid similarity for pass-2 merging
	DuplicateThreshold float64
	// CentroidSize caps how many top tokens form a centroid
	CentroidSize int
	// MaxClusters caps the final output, 0 means unlimited
	MaxClusters int
	// SameCategory gates assignment and merging on matching category tags.
	// Cross-category pipelines leave it false
	SameCategory bool
}

func (o Options) withDefaults() Options {
	if o.MergeThreshold <= 0 {
		o.MergeThreshold = DefaultMergeThreshold
	}
	if o.DuplicateThreshold <= 0 {
		o.DuplicateThreshold = DefaultDuplicateThreshold
	}
	if o.CentroidSize <= 0 {
		o.CentroidSize = DefaultCentroidSize
	}
	return o
}

// Engine runs the two clustering passes
type Engine struct {
	opts Options
}

// New constructs an Engine
func New(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Cluster runs greedy assignment, merges near duplicates, ranks, and caps.
// Output is deterministic for a given input ordering; reordering the input can
// change the result, an accepted property of the online pass
func (e *Engine) Cluster(items []Item) []*Cluster {
	cs := e.Assign(items)
	cs = e.MergeNearDuplicates(cs)
	if e.opts.MaxClusters > 0 && len(cs) > e.opts.MaxClusters {
		cs = cs[:e.opts.MaxClusters]
	}
	return cs
}

// Assign is pass 1: each item joins the best-matching existing cluster at
// arrival time, or starts a new one. Clusters are never split
func (e *Engine) Assign(items []Item) []*Cluster {
	var out []*Cluster
	for _, it := range items {
		ts := it.TokenSet()
		var best *Cluster
		bestSim := 0.0
		for _, c := range out {
			if e.opts.SameCategory && it.Category != "" && c.Category() != it.Category {
				continue
			}
			sim := tokens.Jaccard(ts, c.Centroid(e.opts.CentroidSize))
			if sim > bestSim {
				best, bestSim = c, sim
			}
		}
		if best != nil && bestSim >= e.opts.MergeThreshold {
			best.add(it)
			continue
		}
		c := newCluster()
		c.add(it)
		out = append(out, c)
	}
	return out
}

// MergeNearDuplicates is pass 2: walk the rank-sorted clusters and fold any
// whose centroid is near-identical to one already placed. This claws back the
// fragmentation pass 1's order dependence produces
func (e *Engine) MergeNearDuplicates(cs []*Cluster) []*Cluster {
	if len(cs) < 2 {
		return cs
	}
	ranked := make([]*Cluster, len(cs))
	copy(ranked, cs)
	rank(ranked)

	out := make([]*Cluster, 0, len(ranked))
	for _, c := range ranked {
		merged := false
		for _, placed := range out {
			if e.opts.SameCategory && c.Category() != placed.Category() {
				continue
			}
			sim := tokens.Jaccard(c.Centroid(e.opts.CentroidSize), placed.Centroid(e.opts.CentroidSize))
			if sim >= e.opts.DuplicateThreshold {
				placed.absorb(c)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, c)
		}
	}
	rank(out)
	return out
}

// rank orders clusters by distinct sources desc, then max weight desc, then
// member count desc. Stable so equal clusters keep arrival order
func rank(cs []*Cluster) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.DistinctSources() != b.DistinctSources() {
			return a.DistinctSources() > b.DistinctSources()
		}
		if a.MaxWeight != b.MaxWeight {
			return a.MaxWeight > b.MaxWeight
		}
		return len(a.Members) > len(b.Members)
	})
}
