package domain

import (
	"fmt"
	"time"
)

// SystemView names a virtual collection of tasks derived from a predicate.
// Views have no storage of their own and are evaluated fresh on every call.
type SystemView string

// Known system views
const (
	ViewInbox     SystemView = "inbox"
	ViewCompleted SystemView = "completed"
	ViewTrash     SystemView = "trash"
	ViewToday     SystemView = "today"
	ViewStarred   SystemView = "starred"
)

// SystemViews lists every known view.
var SystemViews = []SystemView{ViewInbox, ViewCompleted, ViewTrash, ViewToday, ViewStarred}

// ErrUnknownView is returned for a view name outside SystemViews.
var ErrUnknownView = fmt.Errorf("%w: unknown system view", ErrValidation)

// ParseSystemView resolves a view name.
func ParseSystemView(name string) (SystemView, error) {
	for _, v := range SystemViews {
		if string(v) == name {
			return v, nil
		}
	}
	return "", NewValidationError("view", fmt.Sprintf("%q is not a system view", name), ErrUnknownView)
}

// Filter returns the predicate behind the view. now and loc only matter for
// the today view, whose window is the local calendar day containing now.
func (v SystemView) Filter(now time.Time, loc *time.Location) TaskFilter {
	notDeleted := false
	deleted := true
	starred := true

	switch v {
	case ViewInbox:
		return TaskFilter{
			NoProject: true,
			IsDeleted: &notDeleted,
			Statuses:  []TaskStatus{TaskStatusTodo, TaskStatusInProgress},
		}
	case ViewCompleted:
		return TaskFilter{
			Statuses:  []TaskStatus{TaskStatusCompleted},
			IsDeleted: &notDeleted,
		}
	case ViewTrash:
		return TaskFilter{IsDeleted: &deleted}
	case ViewToday:
		start := StartOfDay(now, loc)
		end := start.AddDate(0, 0, 1)
		return TaskFilter{
			Statuses:  []TaskStatus{TaskStatusTodo, TaskStatusInProgress},
			IsDeleted: &notDeleted,
			DueFrom:   &start,
			DueBefore: &end,
		}
	case ViewStarred:
		return TaskFilter{IsStarred: &starred, IsDeleted: &notDeleted}
	}
	// Unreachable for parsed views; match nothing rather than everything.
	return TaskFilter{Statuses: []TaskStatus{""}}
}

// Matches reports whether t belongs to the view at time now.
func (v SystemView) Matches(t *Task, now time.Time, loc *time.Location) bool {
	return v.Filter(now, loc).Matches(t)
}

// StartOfDay returns midnight of the calendar day containing t in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
