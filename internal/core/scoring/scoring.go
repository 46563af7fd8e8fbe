// Package scoring implements the four independent moment quality scorers.
// Every scorer is a pure function from evidence to a score in [0,1] plus
// diagnostics; identical input always produces identical output
package scoring

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
