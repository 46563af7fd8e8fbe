package scoring

import (
	"fmt"
	"strings"
)

// DensitySignal is the minimal evidence the breadth scorer needs
type DensitySignal struct {
	Source string
	ID     string
}

// DensityResult is the signal-density verdict with its inputs exposed for audit
type DensityResult struct {
	Score         float64        `json:"score"`
	TotalSignals  int            `json:"total_signals"`
	UniqueSources int            `json:"unique_sources"`
	Diversity     float64        `json:"diversity"`
	Dominance     float64        `json:"dominance"`
	PerSource     map[string]int `json:"per_source,omitempty"`
}

// sourceAliases folds collector spellings onto canonical source tags
var sourceAliases = map[string]string{
	"hackernews":          "hn",
	"hacker-news":         "hn",
	"news.ycombinator":    "hn",
	"ycombinator":         "hn",
	"reddit.com":          "reddit",
	"old.reddit.com":      "reddit",
	"lobste.rs":           "lobsters",
}

// dominance above this share starts eating into the score
const dominancePivot = 0.25

// NormalizeSource lowercases, trims, and folds known aliases
func NormalizeSource(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if canon, ok := sourceAliases[s]; ok {
		return canon
	}
	return s
}

// SignalDensity measures evidence breadth: how many distinct sources report
// the moment and how dominated the evidence is by its loudest source.
// Zero signals scores zero
func SignalDensity(signals []DensitySignal) DensityResult {
	if len(signals) == 0 {
		return DensityResult{}
	}

	perSource := make(map[string]int)
	seen := make(map[string]struct{}, len(signals))
	total := 0
	for i, sig := range signals {
		src := NormalizeSource(sig.Source)
		if src == "" {
			src = "unknown"
		}
		id := strings.TrimSpace(sig.ID)
		if id == "" {
			// stable synthetic id keyed on position
			id = fmt.Sprintf("idx:%d", i)
		}
		key := src + "\x00" + id
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		perSource[src]++
		total++
	}
	if total == 0 {
		return DensityResult{}
	}

	maxPer := 0
	for _, n := range perSource {
		if n > maxPer {
			maxPer = n
		}
	}

	diversity := float64(len(perSource)) / float64(total)
	dominance := float64(maxPer) / float64(total)
	score := diversity * (0.25 + 0.75*clamp01(1-(dominance-dominancePivot)))

	return DensityResult{
		Score:         clamp01(score),
		TotalSignals:  total,
		UniqueSources: len(perSource),
		Diversity:     diversity,
		Dominance:     dominance,
		PerSource:     perSource,
	}
}
