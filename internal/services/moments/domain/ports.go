package domain

import (
	"context"
	"time"

	"zeitgeist/internal/core/qualify"
)

// CollectorPort fetches raw items from one upstream source. Collect must
// honor ctx cancellation; a failed source returns an error and zero items,
// never a partial panic
type CollectorPort interface {
	Name() string
	Collect(ctx context.Context) ([]RawItem, error)
}

// WriterPort persists qualified moments with first-write-wins semantics:
// an id that already exists is silently skipped, never updated
type WriterPort interface {
	InsertNew(ctx context.Context, moments []Moment) (inserted int, err error)
}

// ReaderPort reads persisted moments for the API surface
type ReaderPort interface {
	List(ctx context.Context, limit, offset int) ([]Moment, int, error)
	Get(ctx context.Context, id string) (Moment, error)
}

// ArchivePort appends the raw evidence behind a moment to cold storage.
// Archival is best-effort; failures must not block the pipeline
type ArchivePort interface {
	ArchiveBatch(ctx context.Context, momentID string, batchAt time.Time, signals []qualify.Signal) error
}
