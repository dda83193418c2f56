// Package stats computes the read-only dashboard snapshot for an owner's
// tasks. Everything here is a pure function of its inputs; nothing is cached
// or persisted.
package stats

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdeck-api/internal/domain"
)

// WeekDays is the number of entries in Snapshot.WeeklyData.
const WeekDays = 7

// TopTagLimit caps Snapshot.TagStats.
const TopTagLimit = 10

// Summary holds the headline counters of the dashboard.
type Summary struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	InProgress     int     `json:"in_progress"`
	Todo           int     `json:"todo"`
	Overdue        int     `json:"overdue"`
	CompletionRate float64 `json:"completion_rate"`
}

// DayStat is one calendar day of the weekly chart. Total is the running
// backlog size (tasks created on or before the end of Date), not the number
// created on that day.
type DayStat struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// ProjectCount is the number of tasks assigned to a project.
type ProjectCount struct {
	ProjectID uuid.UUID `json:"project_id"`
	Count     int       `json:"count"`
}

// TagUsage is the number of an owner's live tasks carrying a tag.
type TagUsage struct {
	TagID uuid.UUID `json:"tag_id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Count int       `json:"count"`
}

// Snapshot is the full dashboard payload.
type Snapshot struct {
	Summary              Summary                     `json:"summary"`
	StatusDistribution   map[domain.TaskStatus]int   `json:"status_distribution"`
	PriorityDistribution map[domain.TaskPriority]int `json:"priority_distribution"`
	WeeklyData           []DayStat                   `json:"weekly_data"`
	ProjectDistribution  []ProjectCount              `json:"project_distribution"`
	TagStats             []TagUsage                  `json:"tag_stats"`
	GeneratedAt          time.Time                   `json:"generated_at"`
}
