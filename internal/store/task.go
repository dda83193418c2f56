package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdeck-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// Every read and write is scoped to an owner: a task belonging to someone
// else behaves exactly like a task that does not exist.
type TaskStore interface {
	// Create saves a new task. It validates the task first.
	// Returns store.ErrInvalidEntity when the project or parent reference
	// does not satisfy a foreign key.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves one of the owner's tasks, deleted or not.
	// Returns ErrTaskNotFound if the task does not exist for the owner.
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// GetForUpdate is GetByID with a row-level lock (SELECT ... FOR UPDATE).
	// It must run inside a transaction.
	GetForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// List returns the owner's tasks matching the filter. An empty
	// filter.Ordering sorts by order ascending, then created_at descending.
	List(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error)

	// ListByIDs returns the owner's tasks among ids in the default ordering.
	// IDs that are unknown or foreign are silently skipped.
	ListByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*domain.Task, error)

	// Update persists every mutable field of the task, including CompletedAt.
	// Returns ErrTaskNotFound if no row for the owner matched.
	Update(ctx context.Context, task *domain.Task) error

	// Delete permanently removes the task. Subtasks and tag associations go
	// with it through ON DELETE CASCADE.
	// Returns ErrTaskNotFound if the task does not exist for the owner.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// BatchUpdate writes the same field values to every one of the owner's
	// tasks among ids and returns the IDs that were actually changed.
	// It does not stamp CompletedAt; see StampCompleted.
	BatchUpdate(
		ctx context.Context,
		ownerID uuid.UUID,
		ids []uuid.UUID,
		update domain.BatchUpdate,
		now time.Time,
	) ([]uuid.UUID, error)

	// StampCompleted sets completed_at to now on the owner's tasks among ids.
	StampCompleted(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID, now time.Time) error

	// WithTx returns a TaskStore that runs every query on the given transaction.
	//
	// Example usage:
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       return taskStore.WithTx(tx).Update(ctx, task)
	//   })
	WithTx(tx *sql.Tx) TaskStore
}
