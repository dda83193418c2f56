package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Optional distinguishes a field that was never sent from one explicitly set
// to null. Set is true whenever the key was present; Value is nil for null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns an Optional that clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON implements json.Unmarshaler. It is only invoked when the key
// is present, which is what marks the Optional as set.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// TaskUpdate is a partial edit of a task's own fields. Nil pointers and unset
// Optionals leave the corresponding field alone.
type TaskUpdate struct {
	Title       *string             `json:"title"`
	Description Optional[string]    `json:"description"`
	ProjectID   Optional[uuid.UUID] `json:"project"`
	ParentID    Optional[uuid.UUID] `json:"parent"`
	Priority    *TaskPriority       `json:"priority"`
	Status      *TaskStatus         `json:"status"`
	StartDate   Optional[time.Time] `json:"start_date"`
	DueDate     Optional[time.Time] `json:"due_date"`
	Order       *int                `json:"order"`
	IsStarred   *bool               `json:"is_starred"`
	IsDeleted   *bool               `json:"is_deleted"`
}

// BatchFields is the closed set of JSON keys a batch update may carry.
var BatchFields = []string{"status", "priority", "project", "is_starred", "is_deleted"}

// Batch validation errors
var (
	ErrBatchEmptyIDs     = fmt.Errorf("%w: task_ids cannot be empty", ErrValidation)
	ErrBatchNoFields     = fmt.Errorf("%w: updates must set at least one field", ErrValidation)
	ErrBatchFieldInvalid = fmt.Errorf("%w: field not permitted in batch update", ErrValidation)
)

// BatchUpdate holds the identical field values applied to every task in a
// batch. Only the fields in BatchFields exist here, so anything else cannot
// be expressed.
type BatchUpdate struct {
	Status    *TaskStatus         `json:"status"`
	Priority  *TaskPriority       `json:"priority"`
	ProjectID Optional[uuid.UUID] `json:"project"`
	IsStarred *bool               `json:"is_starred"`
	IsDeleted *bool               `json:"is_deleted"`
}

// IsEmpty reports whether no field is set.
func (b BatchUpdate) IsEmpty() bool {
	return b.Status == nil &&
		b.Priority == nil &&
		!b.ProjectID.Set &&
		b.IsStarred == nil &&
		b.IsDeleted == nil
}

// Fields returns the JSON names of the set fields, in BatchFields order.
func (b BatchUpdate) Fields() []string {
	set := map[string]bool{
		"status":     b.Status != nil,
		"priority":   b.Priority != nil,
		"project":    b.ProjectID.Set,
		"is_starred": b.IsStarred != nil,
		"is_deleted": b.IsDeleted != nil,
	}
	fields := make([]string, 0, len(BatchFields))
	for _, name := range BatchFields {
		if set[name] {
			fields = append(fields, name)
		}
	}
	return fields
}

// CompletesTasks reports whether the update moves tasks to completed, which
// requires a completed_at stamp alongside the field write.
func (b BatchUpdate) CompletesTasks() bool {
	return b.Status != nil && *b.Status == TaskStatusCompleted
}

// Validate rejects empty updates and unknown enum values.
func (b BatchUpdate) Validate() error {
	if b.IsEmpty() {
		return ErrBatchNoFields
	}
	if b.Status != nil && !b.Status.IsValid() {
		return NewValidationError("status", "is not a valid status", ErrInvalidTaskStatus)
	}
	if b.Priority != nil && !b.Priority.IsValid() {
		return NewValidationError("priority", "is not a valid priority", ErrInvalidTaskPriority)
	}
	return nil
}

// DecodeBatchUpdate parses a batch update payload, rejecting any key outside
// BatchFields before a single value is interpreted.
func DecodeBatchUpdate(data []byte) (BatchUpdate, error) {
	var update BatchUpdate

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return update, NewValidationError("updates", "must be a JSON object", ErrInvalidFormat)
	}
	for key := range raw {
		if !isBatchField(key) {
			return update, NewValidationError(key, "cannot be changed in a batch", ErrBatchFieldInvalid)
		}
	}

	if err := json.Unmarshal(data, &update); err != nil {
		return update, NewValidationError("updates", "has a malformed value", ErrInvalidFormat)
	}
	if err := update.Validate(); err != nil {
		return update, err
	}
	return update, nil
}

func isBatchField(key string) bool {
	for _, field := range BatchFields {
		if key == field {
			return true
		}
	}
	return false
}
