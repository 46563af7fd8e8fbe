package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"zeitgeist/internal/core/qualify"
	"zeitgeist/internal/services/moments/domain"
)

var snow = time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

type fakeCollector struct {
	name  string
	items []domain.RawItem
	err   error
}

func (f fakeCollector) Name() string { return f.name }
func (f fakeCollector) Collect(context.Context) ([]domain.RawItem, error) {
	return f.items, f.err
}

type fakeWriter struct {
	batches [][]domain.Moment
	err     error
}

func (f *fakeWriter) InsertNew(_ context.Context, ms []domain.Moment) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.batches = append(f.batches, ms)
	return len(ms), nil
}

type fakeArchive struct {
	momentIDs []string
	err       error
}

func (f *fakeArchive) ArchiveBatch(_ context.Context, momentID string, _ time.Time, _ []qualify.Signal) error {
	if f.err != nil {
		return f.err
	}
	f.momentIDs = append(f.momentIDs, momentID)
	return nil
}

// permissive lets every cluster through so tests can focus on orchestration
func permissive() qualify.Options {
	return qualify.Options{Thresholds: &qualify.Thresholds{}}
}

func burst(source string, n int) []domain.RawItem {
	items := make([]domain.RawItem, n)
	for i := range items {
		items[i] = domain.RawItem{
			Source:    source,
			ID:        string(rune('a' + i)),
			Title:     "Reactor ignition milestone delivers record energy gain",
			Keywords:  []string{"reactor", "energy"},
			Weight:    float64(10 + i),
			CreatedAt: snow.Add(-time.Duration(i*10) * time.Minute),
		}
	}
	return items
}

func TestScanPersistsQualifiedMoments(t *testing.T) {
	w := &fakeWriter{}
	a := &fakeArchive{}
	svc := New(Deps{
		Collectors: []domain.CollectorPort{
			fakeCollector{name: "hn", items: burst("hn", 3)},
			fakeCollector{name: "reddit", items: burst("reddit", 3)},
		},
		Writer:  w,
		Archive: a,
		Clock:   func() time.Time { return snow },
	}, Config{Qualify: permissive()})

	rep, err := svc.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if rep.Collected != 6 {
		t.Fatalf("collected = %d, want 6", rep.Collected)
	}
	if rep.Clusters != 1 {
		t.Fatalf("identical titles must form one cluster, got %d", rep.Clusters)
	}
	if rep.Qualified != 1 || rep.Inserted != 1 {
		t.Fatalf("qualified/inserted = %d/%d, want 1/1", rep.Qualified, rep.Inserted)
	}
	if len(w.batches) != 1 || len(w.batches[0]) != 1 {
		t.Fatalf("writer batches wrong: %+v", w.batches)
	}

	m := w.batches[0][0]
	if m.SignalCount != 6 || m.SourceCount != 2 {
		t.Fatalf("moment evidence wrong: %+v", m)
	}
	if m.FirstSeenAt != snow.Add(-20*time.Minute) || m.LastConfirmedAt != snow {
		t.Fatalf("anchors wrong: first=%v last=%v", m.FirstSeenAt, m.LastConfirmedAt)
	}
	if m.Decision.State == "" || m.Decision.Rationale == "" {
		t.Fatalf("decision not surfaced: %+v", m.Decision)
	}
	if len(a.momentIDs) != 1 || a.momentIDs[0] != m.ID {
		t.Fatalf("archive not invoked for moment: %v", a.momentIDs)
	}
}

func TestScanIDsAreDeterministic(t *testing.T) {
	run := func(order []domain.CollectorPort) string {
		w := &fakeWriter{}
		svc := New(Deps{
			Collectors: order,
			Writer:     w,
			Clock:      func() time.Time { return snow },
		}, Config{Qualify: permissive()})
		if _, err := svc.Scan(context.Background()); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		if len(w.batches) != 1 || len(w.batches[0]) != 1 {
			t.Fatalf("expected exactly one moment, got %+v", w.batches)
		}
		return w.batches[0][0].ID
	}

	hn := fakeCollector{name: "hn", items: burst("hn", 3)}
	rd := fakeCollector{name: "reddit", items: burst("reddit", 3)}

	first := run([]domain.CollectorPort{hn, rd})
	second := run([]domain.CollectorPort{rd, hn})
	if first != second {
		t.Fatalf("same evidence must yield same id: %s vs %s", first, second)
	}
}

func TestScanToleratesPartialSourceFailure(t *testing.T) {
	w := &fakeWriter{}
	svc := New(Deps{
		Collectors: []domain.CollectorPort{
			fakeCollector{name: "hn", items: burst("hn", 4)},
			fakeCollector{name: "reddit", err: errors.New("rate limited")},
		},
		Writer: w,
		Clock:  func() time.Time { return snow },
	}, Config{Qualify: permissive()})

	rep, err := svc.Scan(context.Background())
	if err != nil {
		t.Fatalf("one dead source must not fail the scan: %v", err)
	}
	if rep.Collected != 4 {
		t.Fatalf("collected = %d, want 4", rep.Collected)
	}
	if rep.SourceErrors["reddit"] == "" {
		t.Fatalf("reddit failure not reported: %+v", rep.SourceErrors)
	}
}

func TestScanAllSourcesDownIsError(t *testing.T) {
	svc := New(Deps{
		Collectors: []domain.CollectorPort{
			fakeCollector{name: "hn", err: errors.New("timeout")},
			fakeCollector{name: "reddit", err: errors.New("timeout")},
		},
		Writer: &fakeWriter{},
		Clock:  func() time.Time { return snow },
	}, Config{Qualify: permissive()})

	if _, err := svc.Scan(context.Background()); err == nil {
		t.Fatalf("total blackout must surface an error")
	}
}

func TestScanDefaultGateRejectsThinEvidence(t *testing.T) {
	w := &fakeWriter{}
	svc := New(Deps{
		Collectors: []domain.CollectorPort{
			fakeCollector{name: "hn", items: burst("hn", 2)},
		},
		Writer: w,
		Clock:  func() time.Time { return snow },
	}, Config{})

	rep, err := svc.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if rep.Qualified != 0 || len(w.batches) != 0 {
		t.Fatalf("two same-source signals must not qualify: %+v", rep)
	}
}

func TestScanWriterErrorPropagates(t *testing.T) {
	svc := New(Deps{
		Collectors: []domain.CollectorPort{
			fakeCollector{name: "hn", items: burst("hn", 3)},
			fakeCollector{name: "reddit", items: burst("reddit", 3)},
		},
		Writer: &fakeWriter{err: errors.New("pg down")},
		Clock:  func() time.Time { return snow },
	}, Config{Qualify: permissive()})

	if _, err := svc.Scan(context.Background()); err == nil {
		t.Fatalf("persistence failure must propagate")
	}
}

func TestConfigClampsSourceTimeout(t *testing.T) {
	cases := []struct {
		in, want time.Duration
	}{
		{0, 6 * time.Second},
		{time.Second, 3 * time.Second},
		{5 * time.Second, 5 * time.Second},
		{time.Minute, 8 * time.Second},
	}
	for _, tc := range cases {
		got := Config{SourceTimeout: tc.in}.withDefaults().SourceTimeout
		if got != tc.want {
			t.Fatalf("clamp(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
