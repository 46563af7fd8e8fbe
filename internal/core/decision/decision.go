// Package decision classifies whether a moment is worth acting on right now.
// It runs off raw evidence counts and timestamps only, deliberately independent
// of the quality scorers, and always errs toward waiting
package decision

import (
	"fmt"
	"time"
)

// State is the action recommendation
type State string

// Trajectory describes where confidence is heading
type Trajectory string

// Strength grades the evidence volume given how fresh it is
type Strength string

// Enum values, stable for wire compatibility
const (
	StateAct     State = "ACT"
	StateWait    State = "WAIT"
	StateRefresh State = "REFRESH"

	TrajectoryAccelerating Trajectory = "ACCELERATING"
	TrajectoryStable       Trajectory = "STABLE"
	TrajectoryWeakening    Trajectory = "WEAKENING"
	TrajectoryVolatile     Trajectory = "VOLATILE"

	StrengthWeak     Strength = "WEAK"
	StrengthModerate Strength = "MODERATE"
	StrengthStrong   Strength = "STRONG"
)

// Classification bands. Recency is measured from the last confirmed signal,
// age from the first sighting
const (
	veryRecentWindow = 3 * time.Hour
	recentWindow     = 24 * time.Hour
	staleAge         = 36 * time.Hour

	denseVelocityPerHour = 1.5
	denseSignalCount     = 10
)

// Evidence is the raw input: counts plus the two anchor timestamps.
// Zero timestamps mean unknown
type Evidence struct {
	SignalCount     int       `json:"signal_count"`
	SourceCount     int       `json:"source_count"`
	FirstSeenAt     time.Time `json:"first_seen_at"`
	LastConfirmedAt time.Time `json:"last_confirmed_at"`
}

// Stats echoes the derived figures behind a surface for auditability
type Stats struct {
	SignalCount     int       `json:"signal_count"`
	SourceCount     int       `json:"source_count"`
	FirstSeenAt     time.Time `json:"first_seen_at"`
	LastConfirmedAt time.Time `json:"last_confirmed_at"`
	AgeHours        float64   `json:"age_hours"`
	RecencyMins     float64   `json:"recency_mins"`
	VelocityPerHour float64   `json:"velocity_per_hour"`
}

// Surface is the recommendation. The safety invariant holds for every value
// this package produces: State is ACT only when Strength is STRONG and
// Trajectory is ACCELERATING
type Surface struct {
	State      State      `json:"decision_state"`
	Trajectory Trajectory `json:"confidence_trajectory"`
	Strength   Strength   `json:"signal_strength"`
	Rationale  string     `json:"decision_rationale"`
	Evidence   *Stats     `json:"evidence,omitempty"`
}

// safeDefault is what callers get when the evidence cannot be read
func safeDefault(why string) Surface {
	return Surface{
		State:      StateWait,
		Trajectory: TrajectoryStable,
		Strength:   StrengthWeak,
		Rationale:  why,
	}
}

// Surface classifies the evidence as of the supplied clock. It is total:
// missing timestamps and internal panics both degrade to a conservative
// WAIT/STABLE/WEAK surface instead of an error
func SurfaceDecision(ev Evidence, now time.Time) (s Surface) {
	defer func() {
		if recover() != nil {
			s = safeDefault("internal classification failure; defaulting to wait")
		}
	}()

	if now.IsZero() {
		return safeDefault("no reference clock supplied; defaulting to wait")
	}
	anchor := ev.LastConfirmedAt
	if anchor.IsZero() {
		anchor = ev.FirstSeenAt
	}
	if anchor.IsZero() {
		return safeDefault("no timestamps on evidence; defaulting to wait")
	}
	first := ev.FirstSeenAt
	if first.IsZero() {
		first = anchor
	}

	age := now.Sub(first)
	recency := now.Sub(anchor)
	if age < 0 {
		age = 0
	}
	if recency < 0 {
		recency = 0
	}

	ageHours := age.Hours()
	velocity := float64(ev.SignalCount) / maxf(ageHours, 1)
	dense := velocity >= denseVelocityPerHour || ev.SignalCount >= denseSignalCount

	strength := classifyStrength(ev.SignalCount, ev.SourceCount, recency)
	trajectory := classifyTrajectory(age, recency, dense)
	state := downgrade(baseState(strength, trajectory), strength, trajectory)

	return Surface{
		State:      state,
		Trajectory: trajectory,
		Strength:   strength,
		Rationale:  rationale(ev, strength, trajectory, state, recency),
		Evidence: &Stats{
			SignalCount:     ev.SignalCount,
			SourceCount:     ev.SourceCount,
			FirstSeenAt:     ev.FirstSeenAt,
			LastConfirmedAt: ev.LastConfirmedAt,
			AgeHours:        ageHours,
			RecencyMins:     recency.Minutes(),
			VelocityPerHour: velocity,
		},
	}
}

// classifyStrength grades volume against recency-banded thresholds: the
// staler the last confirmation, the more evidence it takes to impress
func classifyStrength(signals, sources int, recency time.Duration) Strength {
	switch {
	case recency <= veryRecentWindow:
		if signals >= 6 && sources >= 2 {
			return StrengthStrong
		}
		if signals >= 3 {
			return StrengthModerate
		}
	case recency <= recentWindow:
		if signals >= 10 && sources >= 3 {
			return StrengthStrong
		}
		if signals >= 5 && sources >= 2 {
			return StrengthModerate
		}
	default:
		if signals >= 12 && sources >= 3 {
			return StrengthModerate
		}
	}
	return StrengthWeak
}

// classifyTrajectory reads the shape of the timeline. Weakening wins over
// everything: a stale confirmation on an old candidate is a dying moment
// no matter how big it once was
func classifyTrajectory(age, recency time.Duration, dense bool) Trajectory {
	switch {
	case recency > recentWindow && age > staleAge:
		return TrajectoryWeakening
	case dense && recency <= veryRecentWindow:
		return TrajectoryAccelerating
	case dense && age > staleAge && recency > veryRecentWindow:
		return TrajectoryVolatile
	default:
		return TrajectoryStable
	}
}

// baseState maps strength and trajectory to a provisional recommendation
func baseState(strength Strength, trajectory Trajectory) State {
	if trajectory == TrajectoryWeakening || strength == StrengthWeak {
		return StateWait
	}
	if strength == StrengthStrong && trajectory == TrajectoryAccelerating {
		return StateAct
	}
	return StateRefresh
}

// downgrade enforces the compatibility filter. It only ever lowers a
// recommendation, never raises one
func downgrade(state State, strength Strength, trajectory Trajectory) State {
	if state != StateAct {
		if strength == StrengthWeak || trajectory == TrajectoryWeakening {
			return StateWait
		}
		return state
	}
	if strength != StrengthStrong || trajectory != TrajectoryAccelerating {
		if strength == StrengthWeak || trajectory == TrajectoryWeakening {
			return StateWait
		}
		return StateRefresh
	}
	return StateAct
}

func rationale(ev Evidence, strength Strength, trajectory Trajectory, state State, recency time.Duration) string {
	return fmt.Sprintf("%d signals across %d sources, last confirmed %s ago: %s evidence on a %s trajectory, recommend %s",
		ev.SignalCount, ev.SourceCount, humanDuration(recency),
		strength, trajectory, state)
}

// humanDuration renders a duration in the coarsest useful unit
func humanDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "moments"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
