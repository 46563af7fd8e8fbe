package scoring

import (
	"math"
	"sort"
	"time"
)

// VelocityOptions tunes the acceleration scorer. Zero values take the
// reference defaults: 12 one-hour bins with the last quarter as the recent tail
type VelocityOptions struct {
	Bins           int
	BinWidth       time.Duration
	RecentFraction float64
}

func (o VelocityOptions) withDefaults() VelocityOptions {
	if o.Bins <= 0 {
		o.Bins = 12
	}
	if o.BinWidth <= 0 {
		o.BinWidth = time.Hour
	}
	if o.RecentFraction <= 0 || o.RecentFraction >= 1 {
		o.RecentFraction = 0.25
	}
	return o
}

// VelocityResult is the acceleration verdict plus the bins it was read from
type VelocityResult struct {
	Score       float64 `json:"score"`
	Ratio       float64 `json:"ratio"`
	RecentAvg   float64 `json:"recent_avg"`
	BaselineAvg float64 `json:"baseline_avg"`
	Used        int     `json:"used"`
	Counts      []int   `json:"counts,omitempty"`
}

// baselineFloor stops a dead-quiet baseline from manufacturing huge ratios
const baselineFloor = 0.25

// Velocity measures temporal acceleration: are signals arriving faster now
// than over the baseline window. The caller drops unparsable timestamps before
// calling; an empty slice scores zero
func Velocity(times []time.Time, opts VelocityOptions) VelocityResult {
	o := opts.withDefaults()
	if len(times) == 0 {
		return VelocityResult{Counts: make([]int, o.Bins)}
	}

	latest := times[0]
	for _, t := range times[1:] {
		if t.After(latest) {
			latest = t
		}
	}

	// fixed-width bins ending at the latest timestamp; anything older than the
	// window lands in the first bin so it still weighs on the baseline
	counts := make([]int, o.Bins)
	for _, t := range times {
		off := latest.Sub(t)
		idx := o.Bins - 1 - int(off/o.BinWidth)
		if idx < 0 {
			idx = 0
		}
		if idx > o.Bins-1 {
			idx = o.Bins - 1
		}
		counts[idx]++
	}

	tail := int(math.Ceil(float64(o.Bins) * o.RecentFraction))
	if tail < 1 {
		tail = 1
	}
	if tail >= o.Bins {
		tail = o.Bins - 1
	}
	head := o.Bins - tail

	recentSum, baseSum := 0, 0
	for i, n := range counts {
		if i >= head {
			recentSum += n
		} else {
			baseSum += n
		}
	}
	recentAvg := float64(recentSum) / float64(tail)
	baseAvg := float64(baseSum) / float64(head)

	ratio := recentAvg / math.Max(baselineFloor, baseAvg)
	base := ratioToBase(ratio)

	activity := clamp01(recentAvg / 2)
	sample := clamp01(float64(len(times)) / 6)
	score := clamp01(base * activity * sample)

	return VelocityResult{
		Score:       score,
		Ratio:       ratio,
		RecentAvg:   recentAvg,
		BaselineAvg: baseAvg,
		Used:        len(times),
		Counts:      counts,
	}
}

// ratioToBase maps an acceleration ratio onto the reference piecewise table
func ratioToBase(r float64) float64 {
	switch {
	case r < 1:
		return 0.20
	case r < 1.5:
		return lerp(0.35, 0.75, (r-1)/0.5)
	case r < 2:
		return lerp(0.55, 0.70, (r-1.5)/0.5)
	case r < 3:
		return lerp(0.70, 0.85, r-2)
	case r < 4:
		return lerp(0.85, 1.0, r-3)
	default:
		return 1.0
	}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// SortTimes orders timestamps ascending in place, oldest first. Handy for
// callers that also need first/last seen
func SortTimes(ts []time.Time) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
}
