// Package qualify combines the four component scores into a single
// machine-checkable verdict on a moment candidate
package qualify

import (
	"time"

	"zeitgeist/internal/core/scoring"
)

// Signal is one strict, already-converted evidence item.
// CreatedAt is the zero time when the upstream timestamp did not parse; such
// signals still count for breadth but are excluded from velocity
type Signal struct {
	Source    string    `json:"source"`
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	Keywords  []string  `json:"keywords,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Candidate is the unit submitted for qualification. Immutable once built
type Candidate struct {
	ID               string    `json:"id"`
	Title            string    `json:"title,omitempty"`
	Description      string    `json:"description,omitempty"`
	Keywords         []string  `json:"keywords,omitempty"`
	FirstSeenAt      time.Time `json:"first_seen_at,omitempty"`
	CollapsedFromIDs []string  `json:"collapsed_from_ids,omitempty"`
	Signals          []Signal  `json:"signals"`
}

// Score carries the four clamped component scores and their weighted combination
type Score struct {
	SignalDensity      float64 `json:"signal_density"`
	Velocity           float64 `json:"velocity"`
	NarrativeCoherence float64 `json:"narrative_coherence"`
	CulturalLegibility float64 `json:"cultural_legibility"`
	Overall            float64 `json:"overall"`
}

// Weights for combining component scores. They are re-normalized defensively,
// so they do not have to sum to exactly 1
type Weights struct {
	SignalDensity      float64 `json:"signal_density"`
	Velocity           float64 `json:"velocity"`
	NarrativeCoherence float64 `json:"narrative_coherence"`
	CulturalLegibility float64 `json:"cultural_legibility"`
}

// DefaultWeights returns the reference weighting
func DefaultWeights() Weights {
	return Weights{
		SignalDensity:      0.30,
		Velocity:           0.25,
		NarrativeCoherence: 0.25,
		CulturalLegibility: 0.20,
	}
}

// Thresholds gate qualification. A candidate must clear every one
type Thresholds struct {
	MinOverall            float64 `json:"min_overall"`
	MinSignalDensity      float64 `json:"min_signal_density"`
	MinVelocity           float64 `json:"min_velocity"`
	MinNarrativeCoherence float64 `json:"min_narrative_coherence"`
	MinCulturalLegibility float64 `json:"min_cultural_legibility"`
	MinUniqueSources      int     `json:"min_unique_sources"`
	MinTotalSignals       int     `json:"min_total_signals"`
}

// DefaultThresholds returns the reference gate
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinOverall:            0.68,
		MinSignalDensity:      0.30,
		MinVelocity:           0.40,
		MinNarrativeCoherence: 0.40,
		MinCulturalLegibility: 0.35,
		MinUniqueSources:      2,
		MinTotalSignals:       4,
	}
}

// Reason is a machine-readable failure tag. Multiple reasons may fire for one
// candidate; a candidate passes iff none do
type Reason string

// Failure tags, stable for wire compatibility
const (
	ReasonSingleSource     Reason = "FAIL_SINGLE_SOURCE"
	ReasonLowSignalCount   Reason = "FAIL_LOW_SIGNAL_COUNT"
	ReasonLowSignalDensity Reason = "FAIL_LOW_SIGNAL_DENSITY"
	ReasonLowVelocity      Reason = "FAIL_LOW_VELOCITY"
	ReasonLowCoherence     Reason = "FAIL_LOW_COHERENCE"
	ReasonLowLegibility    Reason = "FAIL_LOW_LEGIBILITY"
	ReasonLowOverall       Reason = "FAIL_LOW_OVERALL"
	ReasonInternalError    Reason = "FAIL_INTERNAL"
)

// Maturity is a coarse lifecycle label derived from velocity and volume
type Maturity string

// Maturity labels
const (
	MaturityEmerging    Maturity = "emerging"
	MaturityForming     Maturity = "forming"
	MaturityEstablished Maturity = "established"
	MaturityExpired     Maturity = "expired"
)

// Explain carries the evidence counts behind a verdict for auditability
type Explain struct {
	UniqueSources    int       `json:"unique_sources"`
	TotalSignals     int       `json:"total_signals"`
	FirstSeenAt      time.Time `json:"first_seen_at,omitempty"`
	CollapsedFromIDs []string  `json:"collapsed_from_ids,omitempty"`
}

// Qualification is the verdict. Computed fresh on every call, never cached
type Qualification struct {
	Pass     bool     `json:"pass"`
	Score    Score    `json:"score"`
	Reasons  []Reason `json:"reasons,omitempty"`
	Maturity Maturity `json:"maturity,omitempty"`
	Explain  *Explain `json:"explain,omitempty"`
}

// Options configures one qualification call. Nil Weights/Thresholds take the
// defaults; a pointer to a zero struct is honored as-is, so callers can zero
// every gate or every weight explicitly
type Options struct {
	Weights        *Weights
	Thresholds     *Thresholds
	Velocity       scoring.VelocityOptions
	MaturityOnFail bool
}

func (o Options) withDefaults() Options {
	if o.Weights == nil {
		w := DefaultWeights()
		o.Weights = &w
	}
	if o.Thresholds == nil {
		t := DefaultThresholds()
		o.Thresholds = &t
	}
	return o
}

// Qualify scores a candidate and gates it against the configured thresholds.
// It is total: any internal panic degrades to a conservative failing verdict
// instead of propagating
func Qualify(c Candidate, opts Options) (q Qualification) {
	defer func() {
		if recover() != nil {
			q = Qualification{Pass: false, Reasons: []Reason{ReasonInternalError}}
		}
	}()

	o := opts.withDefaults()

	density := scoring.SignalDensity(densityInput(c.Signals))
	velocity := scoring.Velocity(velocityInput(c.Signals), o.Velocity)
	coherence := scoring.NarrativeCoherence(phrases(c), keywords(c))
	legibility := scoring.CulturalLegibility(displayTitle(c), signalPhrases(c.Signals))

	score := combine(Score{
		SignalDensity:      density.Score,
		Velocity:           velocity.Score,
		NarrativeCoherence: coherence.Score,
		CulturalLegibility: legibility.Score,
	}, *o.Weights)

	var reasons []Reason
	if density.UniqueSources < o.Thresholds.MinUniqueSources {
		reasons = append(reasons, ReasonSingleSource)
	}
	if density.TotalSignals < o.Thresholds.MinTotalSignals {
		reasons = append(reasons, ReasonLowSignalCount)
	}
	if score.SignalDensity < o.Thresholds.MinSignalDensity {
		reasons = append(reasons, ReasonLowSignalDensity)
	}
	if score.Velocity < o.Thresholds.MinVelocity {
		reasons = append(reasons, ReasonLowVelocity)
	}
	if score.NarrativeCoherence < o.Thresholds.MinNarrativeCoherence {
		reasons = append(reasons, ReasonLowCoherence)
	}
	if score.CulturalLegibility < o.Thresholds.MinCulturalLegibility {
		reasons = append(reasons, ReasonLowLegibility)
	}
	if score.Overall < o.Thresholds.MinOverall {
		reasons = append(reasons, ReasonLowOverall)
	}

	q = Qualification{
		Pass:    len(reasons) == 0,
		Score:   score,
		Reasons: reasons,
		Explain: &Explain{
			UniqueSources:    density.UniqueSources,
			TotalSignals:     density.TotalSignals,
			FirstSeenAt:      firstSeen(c),
			CollapsedFromIDs: c.CollapsedFromIDs,
		},
	}
	if q.Pass || o.MaturityOnFail {
		q.Maturity = classifyMaturity(score.Velocity, density.TotalSignals)
	}
	return q
}

// combine clamps each component and applies re-normalized weights.
// All-zero weights yield an overall of zero rather than a division error
func combine(s Score, w Weights) Score {
	s.SignalDensity = clamp01(s.SignalDensity)
	s.Velocity = clamp01(s.Velocity)
	s.NarrativeCoherence = clamp01(s.NarrativeCoherence)
	s.CulturalLegibility = clamp01(s.CulturalLegibility)

	sum := w.SignalDensity + w.Velocity + w.NarrativeCoherence + w.CulturalLegibility
	if sum <= 0 {
		s.Overall = 0
		return s
	}
	s.Overall = clamp01(
		(s.SignalDensity*w.SignalDensity +
			s.Velocity*w.Velocity +
			s.NarrativeCoherence*w.NarrativeCoherence +
			s.CulturalLegibility*w.CulturalLegibility) / sum)
	return s
}

// classifyMaturity is a fixed decision table over velocity and volume.
// Clause order is part of the contract
func classifyMaturity(velocityScore float64, totalSignals int) Maturity {
	switch {
	case totalSignals < 6 && velocityScore >= 0.62:
		return MaturityEmerging
	case totalSignals >= 6 && velocityScore >= 0.52:
		return MaturityForming
	case totalSignals >= 12 && velocityScore < 0.52:
		return MaturityEstablished
	case velocityScore < 0.35:
		return MaturityExpired
	default:
		return MaturityForming
	}
}

func densityInput(signals []Signal) []scoring.DensitySignal {
	out := make([]scoring.DensitySignal, len(signals))
	for i, s := range signals {
		out[i] = scoring.DensitySignal{Source: s.Source, ID: s.ID}
	}
	return out
}

func velocityInput(signals []Signal) []time.Time {
	out := make([]time.Time, 0, len(signals))
	for _, s := range signals {
		if !s.CreatedAt.IsZero() {
			out = append(out, s.CreatedAt)
		}
	}
	return out
}

// phrases gathers every text field that can carry narrative
func phrases(c Candidate) []string {
	out := make([]string, 0, 2+2*len(c.Signals))
	if c.Title != "" {
		out = append(out, c.Title)
	}
	if c.Description != "" {
		out = append(out, c.Description)
	}
	for _, s := range c.Signals {
		if s.Title != "" {
			out = append(out, s.Title)
		}
		if s.Summary != "" {
			out = append(out, s.Summary)
		}
	}
	return out
}

func signalPhrases(signals []Signal) []string {
	out := make([]string, 0, len(signals))
	for _, s := range signals {
		if s.Title != "" {
			out = append(out, s.Title)
		}
	}
	return out
}

func keywords(c Candidate) []string {
	out := append([]string(nil), c.Keywords...)
	for _, s := range c.Signals {
		out = append(out, s.Keywords...)
	}
	return out
}

// displayTitle prefers the candidate override, then the first signal title
func displayTitle(c Candidate) string {
	if c.Title != "" {
		return c.Title
	}
	for _, s := range c.Signals {
		if s.Title != "" {
			return s.Title
		}
	}
	return ""
}

// firstSeen prefers the explicit firstSeenAt, then the oldest parsed signal
func firstSeen(c Candidate) time.Time {
	if !c.FirstSeenAt.IsZero() {
		return c.FirstSeenAt
	}
	var first time.Time
	for _, s := range c.Signals {
		if s.CreatedAt.IsZero() {
			continue
		}
		if first.IsZero() || s.CreatedAt.Before(first) {
			first = s.CreatedAt
		}
	}
	return first
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
