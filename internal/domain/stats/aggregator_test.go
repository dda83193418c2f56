package stats

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdeck-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)

func newTask(status domain.TaskStatus, createdAt time.Time) *domain.Task {
	return &domain.Task{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Title:     "task",
		Status:    status,
		Priority:  domain.TaskPriorityNone,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestComputeSummary(t *testing.T) {
	t.Parallel()

	a := newTask(domain.TaskStatusTodo, fixedNow.Add(-48*time.Hour))
	a.DueDate = timePtr(fixedNow.Add(time.Hour))

	b := newTask(domain.TaskStatusCompleted, fixedNow.Add(-24*time.Hour))
	b.CompletedAt = timePtr(fixedNow.Add(-time.Hour))

	c := newTask(domain.TaskStatusInProgress, fixedNow.Add(-72*time.Hour))
	c.DueDate = timePtr(fixedNow.Add(-24 * time.Hour))

	snap := Compute([]*domain.Task{a, b, c}, nil, fixedNow, time.UTC)

	assert.Equal(t, Summary{
		Total:          3,
		Completed:      1,
		InProgress:     1,
		Todo:           1,
		Overdue:        1,
		CompletionRate: 33.3,
	}, snap.Summary)
	assert.Equal(t, fixedNow, snap.GeneratedAt)
}

func TestComputeOverdueBoundary(t *testing.T) {
	t.Parallel()

	midnight := domain.StartOfDay(fixedNow, time.UTC)

	tests := []struct {
		name    string
		due     time.Time
		status  domain.TaskStatus
		overdue int
	}{
		{"due at today's midnight", midnight, domain.TaskStatusTodo, 1},
		{"due exactly now", fixedNow, domain.TaskStatusTodo, 0},
		{"due later today", fixedNow.Add(time.Minute), domain.TaskStatusTodo, 0},
		{"completed past due", midnight, domain.TaskStatusCompleted, 0},
		{"in progress past due", midnight, domain.TaskStatusInProgress, 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			task := newTask(tt.status, fixedNow.Add(-48*time.Hour))
			task.DueDate = timePtr(tt.due)

			snap := Compute([]*domain.Task{task}, nil, fixedNow, time.UTC)
			assert.Equal(t, tt.overdue, snap.Summary.Overdue)
		})
	}
}

func TestComputeIgnoresDeletedTasks(t *testing.T) {
	t.Parallel()

	live := newTask(domain.TaskStatusTodo, fixedNow.Add(-time.Hour))
	trashed := newTask(domain.TaskStatusCompleted, fixedNow.Add(-time.Hour))
	trashed.IsDeleted = true
	trashed.CompletedAt = timePtr(fixedNow)

	snap := Compute([]*domain.Task{live, trashed, nil}, nil, fixedNow, time.UTC)

	assert.Equal(t, 1, snap.Summary.Total)
	assert.Equal(t, 0, snap.Summary.Completed)
	assert.Equal(t, map[domain.TaskStatus]int{domain.TaskStatusTodo: 1}, snap.StatusDistribution)
	assert.Equal(t, 0, snap.WeeklyData[6].Completed)
}

func TestComputeEmpty(t *testing.T) {
	t.Parallel()

	snap := Compute(nil, nil, fixedNow, nil)

	assert.Equal(t, Summary{}, snap.Summary)
	assert.Len(t, snap.WeeklyData, WeekDays)
	assert.Empty(t, snap.ProjectDistribution)
	assert.Empty(t, snap.TagStats)
	for _, day := range snap.WeeklyData {
		assert.Zero(t, day.Completed)
		assert.Zero(t, day.Total)
	}
}

func TestCompletionRate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		completed int
		total     int
		expected  float64
	}{
		{name: "no tasks", completed: 0, total: 0, expected: 0},
		{name: "one third", completed: 1, total: 3, expected: 33.3},
		{name: "two thirds", completed: 2, total: 3, expected: 66.7},
		{name: "all done", completed: 4, total: 4, expected: 100},
		{name: "one in eight", completed: 1, total: 8, expected: 12.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, CompletionRate(tc.completed, tc.total), 0.0001)
		})
	}
}

func TestWeeklyData(t *testing.T) {
	t.Parallel()

	// created a week ago, completed two days ago
	old := newTask(domain.TaskStatusCompleted, fixedNow.AddDate(0, 0, -7))
	old.CompletedAt = timePtr(fixedNow.AddDate(0, 0, -2))

	// created yesterday, completed today
	recent := newTask(domain.TaskStatusCompleted, fixedNow.AddDate(0, 0, -1))
	recent.CompletedAt = timePtr(fixedNow.Add(-time.Hour))

	// created today, still open
	fresh := newTask(domain.TaskStatusTodo, fixedNow.Add(-2*time.Hour))

	snap := Compute([]*domain.Task{old, recent, fresh}, nil, fixedNow, time.UTC)
	require.Len(t, snap.WeeklyData, WeekDays)

	assert.Equal(t, "2025-03-08", snap.WeeklyData[0].Date)
	assert.Equal(t, "2025-03-14", snap.WeeklyData[6].Date)

	expected := []DayStat{
		{Date: "2025-03-08", Completed: 0, Total: 1},
		{Date: "2025-03-09", Completed: 0, Total: 1},
		{Date: "2025-03-10", Completed: 0, Total: 1},
		{Date: "2025-03-11", Completed: 0, Total: 1},
		{Date: "2025-03-12", Completed: 1, Total: 1},
		{Date: "2025-03-13", Completed: 0, Total: 2},
		{Date: "2025-03-14", Completed: 1, Total: 3},
	}
	assert.Equal(t, expected, snap.WeeklyData)
}

func TestWeeklyDataUsesLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+10", 10*60*60)
	// 15:00 UTC is 01:00 the next day at UTC+10
	snap := Compute(nil, nil, fixedNow, loc)

	assert.Equal(t, "2025-03-15", snap.WeeklyData[6].Date)
	assert.Equal(t, "2025-03-09", snap.WeeklyData[0].Date)
}

func TestProjectDistribution(t *testing.T) {
	t.Parallel()

	p1 := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	p2 := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	p3 := uuid.MustParse("00000000-0000-0000-0000-000000000003")

	var tasks []*domain.Task
	add := func(project *uuid.UUID, n int) {
		for i := 0; i < n; i++ {
			task := newTask(domain.TaskStatusTodo, fixedNow)
			task.ProjectID = project
			tasks = append(tasks, task)
		}
	}
	add(&p2, 2)
	add(&p3, 3)
	add(&p1, 2)
	add(nil, 5)

	snap := Compute(tasks, nil, fixedNow, time.UTC)

	assert.Equal(t, []ProjectCount{
		{ProjectID: p3, Count: 3},
		{ProjectID: p1, Count: 2},
		{ProjectID: p2, Count: 2},
	}, snap.ProjectDistribution)
}

func TestTagStats(t *testing.T) {
	t.Parallel()

	t.Run("ranks by count then id and drops unused tags", func(t *testing.T) {
		a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
		b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
		c := uuid.MustParse("00000000-0000-0000-0000-00000000000c")
		d := uuid.MustParse("00000000-0000-0000-0000-00000000000d")

		usage := []TagUsage{
			{TagID: b, Name: "home", Count: 2},
			{TagID: d, Name: "unused", Count: 0},
			{TagID: c, Name: "urgent", Count: 5},
			{TagID: a, Name: "work", Count: 2},
		}

		snap := Compute(nil, usage, fixedNow, time.UTC)

		require.Len(t, snap.TagStats, 3)
		assert.Equal(t, c, snap.TagStats[0].TagID)
		assert.Equal(t, a, snap.TagStats[1].TagID)
		assert.Equal(t, b, snap.TagStats[2].TagID)
	})

	t.Run("keeps the top ten", func(t *testing.T) {
		usage := make([]TagUsage, 0, 15)
		for i := 1; i <= 15; i++ {
			usage = append(usage, TagUsage{TagID: uuid.New(), Count: i})
		}

		snap := Compute(nil, usage, fixedNow, time.UTC)

		require.Len(t, snap.TagStats, TopTagLimit)
		assert.Equal(t, 15, snap.TagStats[0].Count)
		assert.Equal(t, 6, snap.TagStats[TopTagLimit-1].Count)
	})
}

func TestDistributions(t *testing.T) {
	t.Parallel()

	high := newTask(domain.TaskStatusTodo, fixedNow)
	high.Priority = domain.TaskPriorityHigh
	low := newTask(domain.TaskStatusCompleted, fixedNow)
	low.Priority = domain.TaskPriorityLow
	none := newTask(domain.TaskStatusTodo, fixedNow)

	snap := Compute([]*domain.Task{high, low, none}, nil, fixedNow, time.UTC)

	assert.Equal(t, map[domain.TaskStatus]int{
		domain.TaskStatusTodo:      2,
		domain.TaskStatusCompleted: 1,
	}, snap.StatusDistribution)
	assert.Equal(t, map[domain.TaskPriority]int{
		domain.TaskPriorityHigh: 1,
		domain.TaskPriorityLow:  1,
		domain.TaskPriorityNone: 1,
	}, snap.PriorityDistribution)
}
