// Package repo persists moments in Postgres. Writes are first-write-wins:
// a moment id is inserted at most once and never updated afterwards
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	perr "zeitgeist/internal/platform/errors"
	"zeitgeist/internal/services/moments/domain"
)

// Queryer is the slice of pgx both *pgxpool.Pool and pgx.Tx satisfy
type Queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PG is the Postgres-backed moment store
type PG struct {
	q Queryer
}

// NewPG constructs the store
func NewPG(q Queryer) *PG { return &PG{q: q} }

const momentCols = `
	id, title, category, keywords,
	first_seen_at, last_confirmed_at,
	signal_count, source_count,
	qualification, decision, signals, created_at`

// InsertNew writes the batch with ON CONFLICT DO NOTHING on the id, so
// re-scans of the same evidence are free. Returns how many rows were new
func (r *PG) InsertNew(ctx context.Context, moments []domain.Moment) (int, error) {
	if len(moments) == 0 {
		return 0, nil
	}

	var (
		sb   strings.Builder
		args []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	sb.WriteString("INSERT INTO moments (")
	sb.WriteString(momentCols)
	sb.WriteString(") VALUES ")
	for i, m := range moments {
		qual, err := json.Marshal(m.Qualification)
		if err != nil {
			return 0, perr.Wrapf(err, perr.ErrorCodeJSON, "marshal qualification for %s", m.ID)
		}
		dec, err := json.Marshal(m.Decision)
		if err != nil {
			return 0, perr.Wrapf(err, perr.ErrorCodeJSON, "marshal decision for %s", m.ID)
		}
		sigs, err := json.Marshal(m.Signals)
		if err != nil {
			return 0, perr.Wrapf(err, perr.ErrorCodeJSON, "marshal signals for %s", m.ID)
		}

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		sb.WriteString(strings.Join([]string{
			arg(m.ID), arg(m.Title), arg(m.Category), arg(m.Keywords),
			arg(m.FirstSeenAt), arg(m.LastConfirmedAt),
			arg(m.SignalCount), arg(m.SourceCount),
			arg(qual), arg(dec), arg(sigs), arg(m.CreatedAt),
		}, ", "))
		sb.WriteString(")")
	}
	sb.WriteString(" ON CONFLICT (id) DO NOTHING")

	tag, err := r.q.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, perr.FromPostgresf(err, "insert moments")
	}
	return int(tag.RowsAffected()), nil
}

// List returns a page of moments, newest first, plus the total count
func (r *PG) List(ctx context.Context, limit, offset int) ([]domain.Moment, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.q.QueryRow(ctx, "SELECT COUNT(*) FROM moments").Scan(&total); err != nil {
		return nil, 0, perr.FromPostgresf(err, "count moments")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(momentCols)
	sb.WriteString(" FROM moments ORDER BY created_at DESC, id LIMIT $1 OFFSET $2")

	rows, err := r.q.Query(ctx, sb.String(), limit, offset)
	if err != nil {
		return nil, 0, perr.FromPostgresf(err, "list moments")
	}
	defer rows.Close()

	out := make([]domain.Moment, 0, limit)
	for rows.Next() {
		m, err := scanMoment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, perr.FromPostgresf(err, "list moments rows")
	}
	return out, total, nil
}

// Get fetches one moment by id
func (r *PG) Get(ctx context.Context, id string) (domain.Moment, error) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(momentCols)
	sb.WriteString(" FROM moments WHERE id = $1")

	row := r.q.QueryRow(ctx, sb.String(), id)
	m, err := scanMoment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Moment{}, perr.NotFoundf("moment %s not found", id)
	}
	return m, err
}

func scanMoment(row pgx.Row) (domain.Moment, error) {
	var (
		m               domain.Moment
		qual, dec, sigs []byte
		first, last     time.Time
	)
	err := row.Scan(
		&m.ID, &m.Title, &m.Category, &m.Keywords,
		&first, &last,
		&m.SignalCount, &m.SourceCount,
		&qual, &dec, &sigs, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Moment{}, err
		}
		return domain.Moment{}, perr.FromPostgresf(err, "scan moment")
	}
	m.FirstSeenAt, m.LastConfirmedAt = first.UTC(), last.UTC()
	m.CreatedAt = m.CreatedAt.UTC()

	if err := json.Unmarshal(qual, &m.Qualification); err != nil {
		return domain.Moment{}, perr.Wrapf(err, perr.ErrorCodeJSON, "decode qualification for %s", m.ID)
	}
	if err := json.Unmarshal(dec, &m.Decision); err != nil {
		return domain.Moment{}, perr.Wrapf(err, perr.ErrorCodeJSON, "decode decision for %s", m.ID)
	}
	if len(sigs) > 0 {
		if err := json.Unmarshal(sigs, &m.Signals); err != nil {
			return domain.Moment{}, perr.Wrapf(err, perr.ErrorCodeJSON, "decode signals for %s", m.ID)
		}
	}
	return m, nil
}
