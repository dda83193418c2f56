package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSystemView(t *testing.T) {
	t.Parallel()

	for _, v := range SystemViews {
		parsed, err := ParseSystemView(string(v))
		require.NoError(t, err)
		assert.Equal(t, v, parsed)
	}

	_, err := ParseSystemView("bogus")
	assert.ErrorIs(t, err, ErrUnknownView)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseSystemView("Inbox")
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestSystemViewMatches(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
	project := uuid.New()
	todayDue := time.Date(2025, 3, 14, 23, 30, 0, 0, time.UTC)
	tomorrowDue := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	build := func(mutate func(*Task)) *Task {
		task := validTask()
		mutate(task)
		return task
	}

	inboxTodo := build(func(*Task) {})
	inboxProgress := build(func(tk *Task) { tk.Status = TaskStatusInProgress })
	inProject := build(func(tk *Task) { tk.ProjectID = &project })
	done := build(func(tk *Task) { tk.Complete(now) })
	doneDeleted := build(func(tk *Task) { tk.Complete(now); tk.IsDeleted = true })
	trashedTodo := build(func(tk *Task) { tk.IsDeleted = true })
	starred := build(func(tk *Task) { tk.IsStarred = true; tk.ProjectID = &project })
	dueToday := build(func(tk *Task) { tk.DueDate = &todayDue; tk.ProjectID = &project })
	dueTomorrow := build(func(tk *Task) { tk.DueDate = &tomorrowDue })

	testCases := []struct {
		view SystemView
		in   []*Task
		out  []*Task
	}{
		{
			view: ViewInbox,
			in:   []*Task{inboxTodo, inboxProgress, dueTomorrow},
			out:  []*Task{inProject, done, trashedTodo, starred},
		},
		{
			view: ViewCompleted,
			in:   []*Task{done},
			out:  []*Task{doneDeleted, inboxTodo},
		},
		{
			view: ViewTrash,
			in:   []*Task{trashedTodo, doneDeleted},
			out:  []*Task{inboxTodo, done},
		},
		{
			view: ViewToday,
			in:   []*Task{dueToday},
			out:  []*Task{dueTomorrow, inboxTodo, done},
		},
		{
			view: ViewStarred,
			in:   []*Task{starred},
			out:  []*Task{inboxTodo},
		},
	}

	for _, tc := range testCases {
		t.Run(string(tc.view), func(t *testing.T) {
			for _, task := range tc.in {
				assert.True(t, tc.view.Matches(task, now, time.UTC), "expected %s to include %+v", tc.view, task)
			}
			for _, task := range tc.out {
				assert.False(t, tc.view.Matches(task, now, time.UTC), "expected %s to exclude %+v", tc.view, task)
			}
		})
	}
}

func TestTodayViewRespectsLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC-5", -5*60*60)
	// 03:00 UTC on the 15th is still the 14th at UTC-5
	now := time.Date(2025, 3, 15, 3, 0, 0, 0, time.UTC)
	due := time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC)

	task := validTask()
	task.DueDate = &due

	assert.True(t, ViewToday.Matches(task, now, loc))
	assert.False(t, ViewToday.Matches(task, now, time.UTC))
}

func TestStartOfDay(t *testing.T) {
	t.Parallel()

	in := time.Date(2025, 3, 14, 15, 4, 5, 6, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), StartOfDay(in, nil))

	loc := time.FixedZone("UTC+9", 9*60*60)
	got := StartOfDay(in, loc)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, loc), got)
}
