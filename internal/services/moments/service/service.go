// Package service runs the scan pipeline: collect raw items, cluster them
// into candidates, qualify, decide, and persist what passes
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"zeitgeist/internal/core/cluster"
	"zeitgeist/internal/core/decision"
	"zeitgeist/internal/core/qualify"
	"zeitgeist/internal/core/tokens"
	perr "zeitgeist/internal/platform/errors"
	"zeitgeist/internal/platform/logger"
	"zeitgeist/internal/services/moments/domain"
)

// momentNamespace seeds deterministic candidate ids: the same member set
// always yields the same moment id, which is what makes InsertNew idempotent
var momentNamespace = uuid.MustParse("6f1db5a2-9c4e-4bb4-8a52-f0b4f6f8c7d1")

// Config tunes one Service instance
type Config struct {
	// SourceTimeout bounds each collector call, clamped to [3s, 8s]
	SourceTimeout time.Duration
	// MaxClusters caps how many candidates one scan considers, 0 = unlimited
	MaxClusters int
	// Cluster and Qualify pass through to the respective engines
	Cluster cluster.Options
	Qualify qualify.Options
}

const (
	minSourceTimeout     = 3 * time.Second
	maxSourceTimeout     = 8 * time.Second
	defaultSourceTimeout = 6 * time.Second
)

func (c Config) withDefaults() Config {
	switch {
	case c.SourceTimeout == 0:
		c.SourceTimeout = defaultSourceTimeout
	case c.SourceTimeout < minSourceTimeout:
		c.SourceTimeout = minSourceTimeout
	case c.SourceTimeout > maxSourceTimeout:
		c.SourceTimeout = maxSourceTimeout
	}
	return c
}

// Deps are the service's injected ports. Archive and Clock are optional
type Deps struct {
	Collectors []domain.CollectorPort
	Writer     domain.WriterPort
	Archive    domain.ArchivePort
	Clock      func() time.Time
}

// Service is the scan orchestrator
type Service struct {
	deps Deps
	cfg  Config
	eng  *cluster.Engine
}

// New constructs a Service
func New(deps Deps, cfg Config) *Service {
	cfg = cfg.withDefaults()
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	co := cfg.Cluster
	if co.MaxClusters == 0 {
		co.MaxClusters = cfg.MaxClusters
	}
	return &Service{deps: deps, cfg: cfg, eng: cluster.New(co)}
}

// Report summarizes one scan for logs and operators
type Report struct {
	StartedAt    time.Time         `json:"started_at"`
	Collected    int               `json:"collected"`
	SourceErrors map[string]string `json:"source_errors,omitempty"`
	Clusters     int               `json:"clusters"`
	Qualified    int               `json:"qualified"`
	Inserted     int               `json:"inserted"`
	Moments      []domain.Moment   `json:"moments,omitempty"`
}

// Scan runs one full pipeline pass. Collector failures are tolerated and
// reported; only a total collection blackout or a persistence failure is an
// error. The clustering and scoring stages are single-threaded on purpose so
// a given item ordering always produces the same moments
func (s *Service) Scan(ctx context.Context) (Report, error) {
	now := s.deps.Clock().UTC()
	rep := Report{StartedAt: now, SourceErrors: map[string]string{}}
	log := logger.C(ctx)

	items, srcErrs := s.collect(ctx)
	rep.SourceErrors = srcErrs
	rep.Collected = len(items)
	if len(items) == 0 {
		if len(srcErrs) > 0 {
			return rep, perr.Unavailablef("all %d sources failed", len(srcErrs))
		}
		return rep, nil
	}

	sortItems(items)
	byKey, clusterItems := prepare(items)

	clusters := s.eng.Cluster(clusterItems)
	rep.Clusters = len(clusters)

	var passed []domain.Moment
	for _, c := range clusters {
		cand := s.candidate(c, byKey)
		q := qualify.Qualify(cand, s.cfg.Qualify)
		if !q.Pass {
			log.Debug().
				Str("candidate_id", cand.ID).
				Interface("reasons", q.Reasons).
				Msg("candidate rejected")
			continue
		}
		m := s.moment(cand, q, now)
		passed = append(passed, m)
	}
	rep.Qualified = len(passed)

	if len(passed) > 0 {
		inserted, err := s.deps.Writer.InsertNew(ctx, passed)
		if err != nil {
			return rep, perr.Wrap(err, perr.ErrorCodeDB, "persist moments")
		}
		rep.Inserted = inserted
		rep.Moments = passed
		s.archive(ctx, passed, now)
	}
	return rep, nil
}

// collect fans out to every collector with a per-source deadline and gathers
// whatever arrives. Result order is fixed by collector registration order, not
// by who answered first
func (s *Service) collect(ctx context.Context) ([]domain.RawItem, map[string]string) {
	type result struct {
		items []domain.RawItem
		err   error
	}
	results := make([]result, len(s.deps.Collectors))

	var wg sync.WaitGroup
	for i, col := range s.deps.Collectors {
		wg.Add(1)
		go func(i int, col domain.CollectorPort) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.cfg.SourceTimeout)
			defer cancel()
			items, err := col.Collect(cctx)
			results[i] = result{items: items, err: err}
		}(i, col)
	}
	wg.Wait()

	var out []domain.RawItem
	errs := map[string]string{}
	for i, col := range s.deps.Collectors {
		if results[i].err != nil {
			errs[col.Name()] = results[i].err.Error()
			logger.C(ctx).Warn().
				Str("source", col.Name()).
				Err(results[i].err).
				Msg("collector failed, continuing without it")
			continue
		}
		out = append(out, results[i].items...)
	}
	return out, errs
}

// sortItems fixes the clustering input order regardless of which goroutine
// finished first. The greedy pass is order-dependent, so this is what makes
// repeated scans over the same data reproducible
func sortItems(items []domain.RawItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Source != items[j].Source {
			return items[i].Source < items[j].Source
		}
		if items[i].ID != items[j].ID {
			return items[i].ID < items[j].ID
		}
		return items[i].Title < items[j].Title
	})
}

// prepare tokenizes each raw item and keeps a lookup from cluster member key
// back to the original, since cluster.Item carries only the token set
func prepare(items []domain.RawItem) (map[string]domain.RawItem, []cluster.Item) {
	byKey := make(map[string]domain.RawItem, len(items))
	out := make([]cluster.Item, 0, len(items))
	for i, it := range items {
		key := memberKey(it, i)
		byKey[key] = it

		var b strings.Builder
		b.WriteString(it.Title)
		if it.Summary != "" {
			b.WriteByte(' ')
			b.WriteString(it.Summary)
		}
		for _, k := range it.Keywords {
			b.WriteByte(' ')
			b.WriteString(k)
		}
		out = append(out, cluster.Item{
			ID:       key,
			Title:    it.Title,
			Source:   it.Source,
			Category: it.Category,
			Weight:   it.Weight,
			Tokens:   tokens.Normalize(b.String()),
		})
	}
	return byKey, out
}

func memberKey(it domain.RawItem, i int) string {
	if it.ID != "" {
		return it.Source + ":" + it.ID
	}
	return fmt.Sprintf("%s:#%d", it.Source, i)
}

// candidate freezes one cluster into a qualification candidate. The id is a
// SHA1 UUID over the sorted member keys, so re-scanning the same evidence
// produces the same id and the write-once store dedupes it
func (s *Service) candidate(c *cluster.Cluster, byKey map[string]domain.RawItem) qualify.Candidate {
	keys := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		keys = append(keys, m.ID)
	}
	sort.Strings(keys)

	centroidSize := s.cfg.Cluster.CentroidSize
	if centroidSize <= 0 {
		centroidSize = cluster.DefaultCentroidSize
	}

	signals := make([]qualify.Signal, 0, len(keys))
	for _, k := range keys {
		if raw, ok := byKey[k]; ok {
			signals = append(signals, raw.Signal())
		}
	}

	kws := make([]string, 0, centroidSize)
	for t := range c.Centroid(centroidSize) {
		kws = append(kws, t)
	}
	sort.Strings(kws)

	return qualify.Candidate{
		ID:       uuid.NewSHA1(momentNamespace, []byte(strings.Join(keys, "\n"))).String(),
		Title:    c.Label(centroidSize),
		Keywords: kws,
		Signals:  signals,
	}
}

// moment builds the persisted record from a passing candidate
func (s *Service) moment(cand qualify.Candidate, q qualify.Qualification, now time.Time) domain.Moment {
	var first, last time.Time
	for _, sig := range cand.Signals {
		if sig.CreatedAt.IsZero() {
			continue
		}
		if first.IsZero() || sig.CreatedAt.Before(first) {
			first = sig.CreatedAt
		}
		if last.IsZero() || sig.CreatedAt.After(last) {
			last = sig.CreatedAt
		}
	}

	d := decision.SurfaceDecision(decision.Evidence{
		SignalCount:     q.Explain.TotalSignals,
		SourceCount:     q.Explain.UniqueSources,
		FirstSeenAt:     first,
		LastConfirmedAt: last,
	}, now)

	return domain.Moment{
		ID:              cand.ID,
		Title:           cand.Title,
		Keywords:        cand.Keywords,
		FirstSeenAt:     first,
		LastConfirmedAt: last,
		SignalCount:     q.Explain.TotalSignals,
		SourceCount:     q.Explain.UniqueSources,
		Qualification:   q,
		Decision:        d,
		Signals:         cand.Signals,
		CreatedAt:       now,
	}
}

// archive copies the evidence behind each inserted moment to cold storage.
// Failures log and move on; archival never blocks the scan
func (s *Service) archive(ctx context.Context, moments []domain.Moment, now time.Time) {
	if s.deps.Archive == nil {
		return
	}
	for _, m := range moments {
		if err := s.deps.Archive.ArchiveBatch(ctx, m.ID, now, m.Signals); err != nil {
			logger.C(ctx).Warn().
				Str("moment_id", m.ID).
				Err(err).
				Msg("signal archive failed")
		}
	}
}
