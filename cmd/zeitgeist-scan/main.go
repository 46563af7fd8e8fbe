// Command zeitgeist-scan runs the collect/cluster/qualify/decide pipeline,
// once by default or on an interval with SCAN_EVERY
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"zeitgeist/internal/adapters/ingest/hackernews"
	"zeitgeist/internal/adapters/ingest/reddit"
	"zeitgeist/internal/core/cluster"
	"zeitgeist/internal/core/qualify"
	"zeitgeist/internal/platform/config"
	"zeitgeist/internal/platform/logger"
	"zeitgeist/internal/platform/store/ch"
	"zeitgeist/internal/platform/store/pg"
	"zeitgeist/internal/services/moments/domain"
	"zeitgeist/internal/services/moments/repo"
	"zeitgeist/internal/services/moments/service"
)

func main() {
	logger.Init(logger.FromEnv())
	l := logger.Named("scan")

	cfg := config.New().Prefix("ZEITGEIST_SCAN_")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := pg.Open(ctx, pg.Config{
		URL:      cfg.MustString("PGSQL_URL"),
		MaxConns: int32(cfg.MayInt("PGSQL_MAX_CONNS", 4)),
		SlowMs:   cfg.MayInt("PGSQL_SLOW_MS", 250),
	}, pg.Tracer(*logger.Get()))
	if err != nil {
		l.Panic().Err(err).Msg("postgres open failed")
	}
	defer db.Close()

	var archive domain.ArchivePort
	if url := cfg.MayString("CLICKHOUSE_URL", ""); url != "" {
		click, err := ch.Open(ctx, ch.Config{URL: url, Role: "scan", Tag: "zeitgeist"})
		if err != nil {
			l.Panic().Err(err).Msg("clickhouse open failed")
		}
		defer func() { _ = click.Close() }()
		archive = repo.NewArchive(click)
	}

	svc := service.New(service.Deps{
		Collectors: collectors(cfg),
		Writer:     repo.NewPG(db.Pool),
		Archive:    archive,
	}, service.Config{
		SourceTimeout: cfg.MayDuration("SOURCE_TIMEOUT", 6*time.Second),
		MaxClusters:   cfg.MayInt("MAX_CLUSTERS", 0),
		Cluster: cluster.Options{
			MergeThreshold:     cfg.MayFloat64("CLUSTER_MERGE", 0),
			DuplicateThreshold: cfg.MayFloat64("CLUSTER_DUP", 0),
			CentroidSize:       cfg.MayInt("CLUSTER_CENTROID", 0),
		},
		Qualify: qualify.Options{
			Thresholds: thresholds(cfg),
		},
	})

	every := cfg.MayDuration("EVERY", 0)
	if every <= 0 {
		runOnce(ctx, l, svc)
		return
	}

	l.Info().Dur("every", every).Msg("scan loop starting")
	runOnce(ctx, l, svc)
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			l.Info().Msg("scan loop stopped")
			return
		case <-tick.C:
			runOnce(ctx, l, svc)
		}
	}
}

func runOnce(ctx context.Context, l *logger.Logger, svc *service.Service) {
	rep, err := svc.Scan(ctx)
	if err != nil {
		l.Error().Err(err).Msg("scan failed")
		return
	}
	l.Info().
		Int("collected", rep.Collected).
		Int("clusters", rep.Clusters).
		Int("qualified", rep.Qualified).
		Int("inserted", rep.Inserted).
		Int("source_errors", len(rep.SourceErrors)).
		Msg("scan done")
}

// thresholds starts from the reference gate so overriding one knob leaves
// the rest intact
func thresholds(cfg config.Conf) *qualify.Thresholds {
	th := qualify.DefaultThresholds()
	th.MinOverall = cfg.MayFloat64("MIN_OVERALL", th.MinOverall)
	th.MinSignalDensity = cfg.MayFloat64("MIN_DENSITY", th.MinSignalDensity)
	th.MinVelocity = cfg.MayFloat64("MIN_VELOCITY", th.MinVelocity)
	th.MinNarrativeCoherence = cfg.MayFloat64("MIN_COHERENCE", th.MinNarrativeCoherence)
	th.MinCulturalLegibility = cfg.MayFloat64("MIN_LEGIBILITY", th.MinCulturalLegibility)
	th.MinUniqueSources = cfg.MayInt("MIN_SOURCES", th.MinUniqueSources)
	th.MinTotalSignals = cfg.MayInt("MIN_SIGNALS", th.MinTotalSignals)
	return &th
}

func collectors(cfg config.Conf) []domain.CollectorPort {
	var out []domain.CollectorPort
	if cfg.MayBool("HN_ENABLED", true) {
		out = append(out, hackernews.New(hackernews.Options{
			BaseURL: cfg.MayString("HN_URL", ""),
			Limit:   cfg.MayInt("HN_LIMIT", 25),
		}))
	}
	if cfg.MayBool("REDDIT_ENABLED", true) {
		out = append(out, reddit.New(reddit.Options{
			BaseURL:    cfg.MayString("REDDIT_URL", ""),
			UserAgent:  cfg.MayString("REDDIT_UA", ""),
			Subreddits: cfg.MayCSV("REDDIT_SUBREDDITS", []string{"all", "news", "technology"}),
			Limit:      cfg.MayInt("REDDIT_LIMIT", 25),
		}))
	}
	return out
}
