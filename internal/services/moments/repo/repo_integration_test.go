//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"zeitgeist/internal/core/decision"
	"zeitgeist/internal/core/qualify"
	perr "zeitgeist/internal/platform/errors"
	"zeitgeist/internal/services/moments/domain"
)

func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mapped.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

const momentsDDL = `
CREATE TABLE IF NOT EXISTS moments (
	id                TEXT PRIMARY KEY,
	title             TEXT NOT NULL,
	category          TEXT NOT NULL DEFAULT '',
	keywords          TEXT[] NOT NULL DEFAULT '{}',
	first_seen_at     TIMESTAMPTZ NOT NULL,
	last_confirmed_at TIMESTAMPTZ NOT NULL,
	signal_count      INT NOT NULL,
	source_count      INT NOT NULL,
	qualification     JSONB NOT NULL,
	decision          JSONB NOT NULL,
	signals           JSONB NOT NULL DEFAULT '[]',
	created_at        TIMESTAMPTZ NOT NULL
)`

func sampleMoment(id string, at time.Time) domain.Moment {
	return domain.Moment{
		ID:              id,
		Title:           "Reactor ignition milestone",
		Keywords:        []string{"energy", "reactor"},
		FirstSeenAt:     at.Add(-2 * time.Hour),
		LastConfirmedAt: at,
		SignalCount:     6,
		SourceCount:     2,
		Qualification: qualify.Qualification{
			Pass:     true,
			Score:    qualify.Score{Overall: 0.75},
			Maturity: qualify.MaturityForming,
		},
		Decision: decision.Surface{
			State:      decision.StateAct,
			Trajectory: decision.TrajectoryAccelerating,
			Strength:   decision.StrengthStrong,
			Rationale:  "fresh burst",
		},
		Signals: []qualify.Signal{
			{Source: "hn", ID: "1", Title: "Reactor ignition", CreatedAt: at.Add(-time.Hour)},
			{Source: "reddit", ID: "2", Title: "Reactor milestone", CreatedAt: at},
		},
		CreatedAt: at,
	}
}

func TestMomentRoundtrip_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, momentsDDL); err != nil {
		t.Fatalf("ddl: %v", err)
	}

	store := NewPG(pool)
	at := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

	inserted, err := store.InsertNew(ctx, []domain.Moment{
		sampleMoment("m-1", at),
		sampleMoment("m-2", at.Add(time.Minute)),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("inserted = %d, want 2", inserted)
	}

	// first write wins: the same ids again are silently skipped
	again, err := store.InsertNew(ctx, []domain.Moment{sampleMoment("m-1", at.Add(time.Hour))})
	if err != nil {
		t.Fatalf("reinsert: %v", err)
	}
	if again != 0 {
		t.Fatalf("reinsert affected %d rows, want 0", again)
	}

	got, err := store.Get(ctx, "m-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.LastConfirmedAt.Equal(at) {
		t.Fatalf("reinsert must not update: last_confirmed_at = %v, want %v", got.LastConfirmedAt, at)
	}
	if !got.Qualification.Pass || got.Decision.State != decision.StateAct {
		t.Fatalf("json columns lost data: %+v", got)
	}
	if len(got.Signals) != 2 || got.Signals[0].Source != "hn" {
		t.Fatalf("signals wrong: %+v", got.Signals)
	}

	list, total, err := store.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("list = %d/%d, want 2/2", len(list), total)
	}
	if list[0].ID != "m-2" {
		t.Fatalf("newest first expected, got %s", list[0].ID)
	}

	if _, err := store.Get(ctx, "nope"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("missing id must map to not-found, got %v", err)
	}
}
