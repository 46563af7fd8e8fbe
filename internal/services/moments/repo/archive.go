package repo

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"zeitgeist/internal/core/qualify"
	perr "zeitgeist/internal/platform/errors"
	"zeitgeist/internal/platform/store/ch"
)

// Archive appends the raw signals behind each moment to ClickHouse for
// later offline analysis. Append-only, no reads on the hot path
type Archive struct {
	conn  driver.Conn
	table string
}

// NewArchive constructs the signal archive over a native connection
func NewArchive(c *ch.CH) *Archive {
	return &Archive{conn: c.Conn(), table: "zeitgeist.moment_signals"}
}

// ArchiveBatch writes one moment's evidence as a single batch insert
func (a *Archive) ArchiveBatch(ctx context.Context, momentID string, batchAt time.Time, signals []qualify.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	batch, err := a.conn.PrepareBatch(ctx,
		"INSERT INTO "+a.table+
			" (moment_id, source, signal_id, title, summary, keywords, signal_at, archived_at)")
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "prepare signal batch")
	}
	for _, s := range signals {
		if err := batch.Append(
			momentID, s.Source, s.ID, s.Title, s.Summary, s.Keywords,
			s.CreatedAt, batchAt,
		); err != nil {
			return perr.Wrap(err, perr.ErrorCodeDB, "append signal")
		}
	}
	if err := batch.Send(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "send signal batch")
	}
	return nil
}
