package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdeck-api/internal/domain/stats"
)

// TaskTagStore defines the interface for task-to-tag associations.
type TaskTagStore interface {
	// ReplaceForTask swaps the full tag set of a task for tagIDs, keeping
	// their order. It deletes and inserts, so it must run inside a
	// transaction to be atomic. An unknown tag ID fails with
	// ErrInvalidEntity and leaves nothing half-written once rolled back.
	ReplaceForTask(ctx context.Context, taskID uuid.UUID, tagIDs []uuid.UUID, now time.Time) error

	// ListTagIDs returns the task's tag IDs in assignment order.
	ListTagIDs(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error)

	// CountUsage returns, for each of the owner's tags, how many of the
	// owner's non-deleted tasks carry it. Tags with no live tasks may be
	// omitted.
	CountUsage(ctx context.Context, ownerID uuid.UUID) ([]stats.TagUsage, error)

	// WithTx returns a TaskTagStore that runs every query on the given transaction.
	WithTx(tx *sql.Tx) TaskTagStore
}
