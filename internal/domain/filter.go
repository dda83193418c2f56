package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// orderingFields are the keys accepted by TaskFilter.Ordering. A leading "-"
// sorts descending; an empty ordering means order ASC, created_at DESC.
var orderingFields = map[string]bool{
	"created_at": true,
	"due_date":   true,
	"order":      true,
	"priority":   true,
}

// ErrInvalidOrdering is returned for an ordering outside the allowed fields.
var ErrInvalidOrdering = NewValidationError("ordering", "is not a sortable field", ErrInvalidFormat)

// TaskFilter narrows an owner's tasks. Zero values mean "no constraint".
// DueFrom/DueBefore form a half-open window [DueFrom, DueBefore).
type TaskFilter struct {
	Statuses  []TaskStatus
	Priority  *TaskPriority
	ProjectID *uuid.UUID
	NoProject bool
	ParentID  *uuid.UUID
	IsStarred *bool
	IsDeleted *bool
	DueFrom   *time.Time
	DueBefore *time.Time
	Search    string
	Ordering  string
}

// Validate checks enum values and the ordering key.
func (f TaskFilter) Validate() error {
	for _, s := range f.Statuses {
		if !s.IsValid() {
			return NewValidationError("status", "is not a valid status", ErrInvalidTaskStatus)
		}
	}
	if f.Priority != nil && !f.Priority.IsValid() {
		return NewValidationError("priority", "is not a valid priority", ErrInvalidTaskPriority)
	}
	if f.Ordering != "" && !orderingFields[strings.TrimPrefix(f.Ordering, "-")] {
		return ErrInvalidOrdering
	}
	return nil
}

// Matches evaluates the filter against a single task. The PostgreSQL store
// translates the same fields into a WHERE clause; this is the reference
// semantics.
func (f TaskFilter) Matches(t *Task) bool {
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, t.Status) {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.NoProject && t.ProjectID != nil {
		return false
	}
	if f.ProjectID != nil && (t.ProjectID == nil || *t.ProjectID != *f.ProjectID) {
		return false
	}
	if f.ParentID != nil && (t.ParentID == nil || *t.ParentID != *f.ParentID) {
		return false
	}
	if f.IsStarred != nil && t.IsStarred != *f.IsStarred {
		return false
	}
	if f.IsDeleted != nil && t.IsDeleted != *f.IsDeleted {
		return false
	}
	if f.DueFrom != nil && (t.DueDate == nil || t.DueDate.Before(*f.DueFrom)) {
		return false
	}
	if f.DueBefore != nil && (t.DueDate == nil || !t.DueDate.Before(*f.DueBefore)) {
		return false
	}
	if f.Search != "" && !matchesSearch(t, f.Search) {
		return false
	}
	return true
}

func containsStatus(statuses []TaskStatus, s TaskStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func matchesSearch(t *Task, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(t.Title), term) {
		return true
	}
	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), term)
}
