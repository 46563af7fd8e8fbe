package scoring

import (
	"testing"
	"time"
)

var vnow = time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

func TestVelocity_Empty(t *testing.T) {
	got := Velocity(nil, VelocityOptions{})
	if got.Score != 0 || got.Used != 0 {
		t.Fatalf("no timestamps must score zero: %+v", got)
	}
	if len(got.Counts) != 12 {
		t.Fatalf("expected default bin layout, got %d bins", len(got.Counts))
	}
}

func TestVelocity_RecentBurstScoresHigh(t *testing.T) {
	// half the signals in the last hour, half twenty hours ago
	times := []time.Time{
		vnow, vnow.Add(-10 * time.Minute), vnow.Add(-25 * time.Minute), vnow.Add(-40 * time.Minute),
		vnow.Add(-20 * time.Hour), vnow.Add(-20 * time.Hour), vnow.Add(-20 * time.Hour), vnow.Add(-20 * time.Hour),
	}
	got := Velocity(times, VelocityOptions{})
	if got.Used != 8 {
		t.Fatalf("all parseable timestamps count: %+v", got)
	}
	if got.Score <= 0.5 {
		t.Fatalf("recent burst should score above 0.5, got %v", got.Score)
	}
	if got.Score >= 0.7 {
		t.Fatalf("dampening should keep a 4-signal burst under 0.7, got %v", got.Score)
	}
}

func TestVelocity_StragglerAfterOldBurstScoresLow(t *testing.T) {
	// one fresh straggler, the real activity five-plus hours back
	times := []time.Time{
		vnow,
		vnow.Add(-5 * time.Hour), vnow.Add(-5 * time.Hour),
		vnow.Add(-6 * time.Hour), vnow.Add(-7 * time.Hour),
	}
	got := Velocity(times, VelocityOptions{})
	if got.Score > 0.1 {
		t.Fatalf("a lone straggler must not read as acceleration: %+v", got)
	}
}

func TestVelocity_SteadyTrickleScoresLow(t *testing.T) {
	// one signal per hour across the whole window: no acceleration
	var times []time.Time
	for i := 0; i < 12; i++ {
		times = append(times, vnow.Add(-time.Duration(i)*time.Hour))
	}
	got := Velocity(times, VelocityOptions{})
	// ratio 1.0 exactly: recent avg == baseline avg == 1
	if got.Score > 0.35 {
		t.Fatalf("steady trickle must not look like acceleration, got %+v", got)
	}
}

func TestVelocity_SameMinuteBurst(t *testing.T) {
	times := []time.Time{
		vnow, vnow.Add(-10 * time.Second), vnow.Add(-20 * time.Second),
		vnow.Add(-30 * time.Second), vnow.Add(-40 * time.Second),
	}
	got := Velocity(times, VelocityOptions{})
	if got.BaselineAvg != 0 {
		t.Fatalf("burst has no baseline: %+v", got)
	}
	if got.Score <= 0.5 || got.Score > 1 {
		t.Fatalf("tight burst off a dead baseline scores high but bounded: %+v", got)
	}
}

func TestVelocity_OlderThanWindowLandsInBaseline(t *testing.T) {
	times := []time.Time{vnow, vnow.Add(-30 * time.Hour), vnow.Add(-40 * time.Hour)}
	got := Velocity(times, VelocityOptions{})
	if got.Counts[0] != 2 {
		t.Fatalf("stale signals belong to the first bin: %+v", got.Counts)
	}
	if got.Used != 3 {
		t.Fatalf("stale signals still count as used: %+v", got)
	}
}

func TestVelocity_Deterministic(t *testing.T) {
	times := []time.Time{vnow, vnow.Add(-90 * time.Minute), vnow.Add(-7 * time.Hour)}
	a := Velocity(times, VelocityOptions{})
	b := Velocity(times, VelocityOptions{})
	if a.Score != b.Score || a.Ratio != b.Ratio {
		t.Fatalf("identical input diverged: %+v vs %+v", a, b)
	}
}

func TestRatioToBase_Table(t *testing.T) {
	tests := []struct {
		ratio float64
		want  float64
	}{
		{0.5, 0.20},
		{1.0, 0.35},
		{1.5, 0.55},
		{2.0, 0.70},
		{3.0, 0.85},
		{4.0, 1.0},
		{9.0, 1.0},
	}
	for _, tc := range tests {
		if got := ratioToBase(tc.ratio); got != tc.want {
			t.Fatalf("ratioToBase(%v) = %v, want %v", tc.ratio, got, tc.want)
		}
	}
}
