package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/proneo/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event.
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns pending events in insertion order.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error)

	// MarkPublished removes delivered events.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}

// DeviceStateRepository provides access to device_state, the server-side
// home of each device's dismissals and alert toggles.
type DeviceStateRepository interface {
	// Get returns the value for key, or localstate.ErrKeyNotFound when the row
	// is missing or expired.
	Get(ctx context.Context, db DBTX, key string) ([]byte, error)

	// Put upserts key. A nil expiresAt keeps the row forever.
	Put(ctx context.Context, db DBTX, key string, value []byte, expiresAt *time.Time) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, db DBTX, key string) error

	// PurgeExpired deletes expired rows and reports how many went.
	PurgeExpired(ctx context.Context, db DBTX) (int64, error)
}
