package stats

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdeck-api/internal/domain"
)

// dateLayout formats DayStat.Date.
const dateLayout = "2006-01-02"

// Compute builds a dashboard snapshot from an owner's tasks and tag usage
// counts. Soft-deleted tasks are ignored even if the caller passes them in.
// Day boundaries for the weekly chart are taken in loc (UTC when nil).
func Compute(tasks []*domain.Task, usage []TagUsage, now time.Time, loc *time.Location) *Snapshot {
	if loc == nil {
		loc = time.UTC
	}

	live := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t != nil && !t.IsDeleted {
			live = append(live, t)
		}
	}

	return &Snapshot{
		Summary:              summarize(live, now),
		StatusDistribution:   statusDistribution(live),
		PriorityDistribution: priorityDistribution(live),
		WeeklyData:           weeklyData(live, now, loc),
		ProjectDistribution:  projectDistribution(live),
		TagStats:             topTags(usage, TopTagLimit),
		GeneratedAt:          now,
	}
}

func summarize(tasks []*domain.Task, now time.Time) Summary {
	var s Summary
	s.Total = len(tasks)
	for _, t := range tasks {
		switch t.Status {
		case domain.TaskStatusCompleted:
			s.Completed++
		case domain.TaskStatusInProgress:
			s.InProgress++
		case domain.TaskStatusTodo:
			s.Todo++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
	}
	s.CompletionRate = CompletionRate(s.Completed, s.Total)
	return s
}

// CompletionRate returns completed/total as a percentage rounded to one
// decimal place, or 0 when total is 0.
func CompletionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*1000) / 10
}

func statusDistribution(tasks []*domain.Task) map[domain.TaskStatus]int {
	dist := make(map[domain.TaskStatus]int)
	for _, t := range tasks {
		dist[t.Status]++
	}
	return dist
}

func priorityDistribution(tasks []*domain.Task) map[domain.TaskPriority]int {
	dist := make(map[domain.TaskPriority]int)
	for _, t := range tasks {
		dist[t.Priority]++
	}
	return dist
}

// weeklyData scans the task list once per day, oldest day first.
func weeklyData(tasks []*domain.Task, now time.Time, loc *time.Location) []DayStat {
	today := domain.StartOfDay(now, loc)
	days := make([]DayStat, 0, WeekDays)

	for offset := WeekDays - 1; offset >= 0; offset-- {
		start := today.AddDate(0, 0, -offset)
		end := start.AddDate(0, 0, 1)

		day := DayStat{Date: start.Format(dateLayout)}
		for _, t := range tasks {
			if t.CompletedAt != nil && !t.CompletedAt.Before(start) && t.CompletedAt.Before(end) {
				day.Completed++
			}
			if t.CreatedAt.Before(end) {
				day.Total++
			}
		}
		days = append(days, day)
	}
	return days
}

// projectDistribution orders projects by count descending, then by ID.
func projectDistribution(tasks []*domain.Task) []ProjectCount {
	counts := make(map[uuid.UUID]int)
	for _, t := range tasks {
		if t.ProjectID != nil {
			counts[*t.ProjectID]++
		}
	}

	dist := make([]ProjectCount, 0, len(counts))
	for id, n := range counts {
		dist = append(dist, ProjectCount{ProjectID: id, Count: n})
	}
	sort.Slice(dist, func(i, j int) bool {
		if dist[i].Count != dist[j].Count {
			return dist[i].Count > dist[j].Count
		}
		return dist[i].ProjectID.String() < dist[j].ProjectID.String()
	})
	return dist
}

// topTags ranks tags by count descending, breaking ties by tag ID ascending,
// and keeps at most limit entries. Unused tags are dropped.
func topTags(usage []TagUsage, limit int) []TagUsage {
	ranked := make([]TagUsage, 0, len(usage))
	for _, u := range usage {
		if u.Count > 0 {
			ranked = append(ranked, u)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].TagID.String() < ranked[j].TagID.String()
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
