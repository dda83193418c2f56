package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdeck-api/internal/domain"
	"github.com/phrazzld/taskdeck-api/internal/domain/stats"
)

// NewTaskInput carries the caller-settable fields of a new task. Status is
// not among them: every task starts as todo.
type NewTaskInput struct {
	Title       string
	Description *string
	ProjectID   *uuid.UUID
	ParentID    *uuid.UUID
	Priority    domain.TaskPriority
	StartDate   *time.Time
	DueDate     *time.Time
	Order       int
	IsStarred   bool
}

// TaskDetail is a task together with its tag IDs in assignment order.
// Subtasks is only populated by Get and never includes deleted subtasks.
type TaskDetail struct {
	Task     *domain.Task
	TagIDs   []uuid.UUID
	Subtasks []*domain.Task
}

// BatchResult reports the outcome of a batch update. Tasks holds the updated
// tasks as they are after the write, in the default list order.
type BatchResult struct {
	UpdatedCount int
	Tasks        []*domain.Task
}

// ViewResult is the evaluated content of a system view.
type ViewResult struct {
	Results []*domain.Task
	Count   int
}

// Service manages the lifecycle of an owner's tasks.
//
// Every method is scoped to ownerID. A task that does not exist and a task
// that belongs to another owner are indistinguishable: both yield an error
// matching store.ErrNotFound.
//
// Unexpected failures come back as *ServiceError; validation failures match
// domain.ErrValidation and can be unpacked with errors.As into
// *domain.ValidationError.
type Service interface {
	// Create stores a new todo task and attaches tagIDs in order.
	// A parent that is not one of the owner's tasks is a validation error;
	// an unknown project or tag yields store.ErrInvalidEntity.
	Create(ctx context.Context, ownerID uuid.UUID, input NewTaskInput, tagIDs []uuid.UUID) (*TaskDetail, error)

	// Get returns a task, deleted or not, with its tags and live subtasks.
	Get(ctx context.Context, ownerID, id uuid.UUID) (*TaskDetail, error)

	// List returns the owner's tasks matching filter. When filter.IsDeleted
	// is nil, deleted tasks are left out.
	List(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error)

	// Update applies a partial edit. When tags is set its value replaces the
	// task's tag set (null clears it). CompletedAt is never changed here.
	Update(
		ctx context.Context,
		ownerID, id uuid.UUID,
		update domain.TaskUpdate,
		tags domain.Optional[[]uuid.UUID],
	) (*TaskDetail, error)

	// Complete marks the task completed and stamps CompletedAt with the
	// current time, also when it was already completed.
	Complete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// ToggleStar flips IsStarred.
	ToggleStar(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// SoftDelete moves the task to the trash. Status is untouched.
	SoftDelete(ctx context.Context, ownerID, id uuid.UUID) error

	// Restore takes the task out of the trash. Status is untouched.
	Restore(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// PermanentDelete removes the task, its subtasks and its tag links.
	PermanentDelete(ctx context.Context, ownerID, id uuid.UUID) error

	// SetTags replaces the task's tag set and returns the stored order.
	SetTags(ctx context.Context, ownerID, id uuid.UUID, tagIDs []uuid.UUID) ([]uuid.UUID, error)

	// ListTags returns the task's tag IDs in assignment order.
	ListTags(ctx context.Context, ownerID, id uuid.UUID) ([]uuid.UUID, error)

	// BatchUpdate writes the same values to every one of the owner's tasks
	// among ids. IDs the owner does not hold are skipped without error.
	// Setting status to completed also stamps CompletedAt, atomically with
	// the field write.
	BatchUpdate(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID, update domain.BatchUpdate) (*BatchResult, error)

	// SystemView evaluates a named view at the current time.
	SystemView(ctx context.Context, ownerID uuid.UUID, name string) (*ViewResult, error)

	// Statistics computes the dashboard snapshot over the owner's live tasks.
	Statistics(ctx context.Context, ownerID uuid.UUID) (*stats.Snapshot, error)
}

// ServiceError wraps an unexpected failure with the operation it interrupted.
type ServiceError struct {
	// Operation is the failing operation, e.g. "complete" or "batch_update".
	Operation string
	// Message is a human-readable description of the error.
	Message string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
