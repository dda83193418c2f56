package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents where a task is in its workflow.
type TaskStatus string

// Possible task status values
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskStatuses lists every valid status in workflow order.
var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted}

// IsValid reports whether s is one of the known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// IsOpen reports whether the task still has work outstanding.
func (s TaskStatus) IsOpen() bool {
	return s == TaskStatusTodo || s == TaskStatusInProgress
}

// TaskPriority ranks how urgent a task is.
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityNone   TaskPriority = "none"
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// TaskPriorities lists every valid priority from lowest to highest.
var TaskPriorities = []TaskPriority{
	TaskPriorityNone,
	TaskPriorityLow,
	TaskPriorityMedium,
	TaskPriorityHigh,
}

// IsValid reports whether p is one of the known priorities.
func (p TaskPriority) IsValid() bool {
	return p.Rank() >= 0
}

// Rank returns the sort position of the priority, or -1 when unknown.
func (p TaskPriority) Rank() int {
	for i, known := range TaskPriorities {
		if p == known {
			return i
		}
	}
	return -1
}

// MaxTaskTitleLength is the longest title the store accepts.
const MaxTaskTitleLength = 255

// Task-specific validation errors
var (
	ErrTaskIDEmpty         = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)
	ErrTaskUserIDEmpty     = fmt.Errorf("%w: task user ID cannot be empty", ErrValidation)
	ErrTaskTitleEmpty      = fmt.Errorf("%w: task title cannot be empty", ErrValidation)
	ErrTaskTitleTooLong    = fmt.Errorf("%w: task title exceeds %d characters", ErrValidation, MaxTaskTitleLength)
	ErrInvalidTaskStatus   = fmt.Errorf("%w: invalid task status", ErrValidation)
	ErrInvalidTaskPriority = fmt.Errorf("%w: invalid task priority", ErrValidation)
	ErrTaskParentSelf      = fmt.Errorf("%w: task cannot be its own parent", ErrValidation)
)

// Task is a unit of work owned by a single user. Soft deletion is tracked by
// IsDeleted independently of Status, so a task may be completed and deleted
// at the same time.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	ProjectID   *uuid.UUID   `json:"project"`
	ParentID    *uuid.UUID   `json:"parent"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	StartDate   *time.Time   `json:"start_date"`
	DueDate     *time.Time   `json:"due_date"`
	CompletedAt *time.Time   `json:"completed_at"`
	Order       int          `json:"order"`
	IsStarred   bool         `json:"is_starred"`
	IsDeleted   bool         `json:"is_deleted"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a todo task for the given owner with a fresh ID and
// timestamps. Returns an error if validation fails.
func NewTask(userID uuid.UUID, title string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     strings.TrimSpace(title),
		Priority:  TaskPriorityNone,
		Status:    TaskStatusTodo,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}
	if t.UserID == uuid.Nil {
		return ErrTaskUserIDEmpty
	}
	if err := validateTitle(t.Title); err != nil {
		return err
	}
	if !t.Priority.IsValid() {
		return ErrInvalidTaskPriority
	}
	if !t.Status.IsValid() {
		return ErrInvalidTaskStatus
	}
	if t.ParentID != nil && *t.ParentID == t.ID {
		return ErrTaskParentSelf
	}
	return nil
}

// Complete marks the task completed and stamps CompletedAt. Repeated calls
// move CompletedAt forward.
func (t *Task) Complete(now time.Time) {
	completedAt := now
	t.Status = TaskStatusCompleted
	t.CompletedAt = &completedAt
	t.UpdatedAt = now
}

// ToggleStar flips the starred flag.
func (t *Task) ToggleStar(now time.Time) {
	t.IsStarred = !t.IsStarred
	t.UpdatedAt = now
}

// SoftDelete moves the task to the trash without touching its status.
func (t *Task) SoftDelete(now time.Time) {
	t.IsDeleted = true
	t.UpdatedAt = now
}

// Restore takes the task out of the trash without touching its status.
func (t *Task) Restore(now time.Time) {
	t.IsDeleted = false
	t.UpdatedAt = now
}

// IsOverdue reports whether an open task is past its due date.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status.IsOpen()
}

// ApplyUpdate copies every field set in u onto the task and validates the
// result. CompletedAt is never touched here: only Complete and the batch
// completion stamp write it, so a later status edit can leave a stale value.
// On error the task is left unchanged.
func (t *Task) ApplyUpdate(u TaskUpdate, now time.Time) error {
	next := *t

	if u.Title != nil {
		next.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description.Set {
		next.Description = u.Description.Value
	}
	if u.ProjectID.Set {
		next.ProjectID = u.ProjectID.Value
	}
	if u.ParentID.Set {
		next.ParentID = u.ParentID.Value
	}
	if u.Priority != nil {
		next.Priority = *u.Priority
	}
	if u.Status != nil {
		next.Status = *u.Status
	}
	if u.StartDate.Set {
		next.StartDate = u.StartDate.Value
	}
	if u.DueDate.Set {
		next.DueDate = u.DueDate.Value
	}
	if u.Order != nil {
		next.Order = *u.Order
	}
	if u.IsStarred != nil {
		next.IsStarred = *u.IsStarred
	}
	if u.IsDeleted != nil {
		next.IsDeleted = *u.IsDeleted
	}

	if err := next.Validate(); err != nil {
		return err
	}

	next.UpdatedAt = now
	*t = next
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTaskTitleEmpty
	}
	if len([]rune(title)) > MaxTaskTitleLength {
		return ErrTaskTitleTooLong
	}
	return nil
}
