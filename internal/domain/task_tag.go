package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrTagIDEmpty is returned when a tag association names the nil UUID.
var ErrTagIDEmpty = fmt.Errorf("%w: tag ID cannot be empty", ErrValidation)

// TaskTag links a task to a tag. Position records insertion order so tags
// read back in the order they were assigned.
type TaskTag struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	TagID     uuid.UUID `json:"tag_id"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTaskTags builds the full association set for a task from an ordered
// list of tag IDs. Repeated IDs keep their first position.
func NewTaskTags(taskID uuid.UUID, tagIDs []uuid.UUID, now time.Time) ([]TaskTag, error) {
	if taskID == uuid.Nil {
		return nil, ErrTaskIDEmpty
	}

	seen := make(map[uuid.UUID]bool, len(tagIDs))
	links := make([]TaskTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		if tagID == uuid.Nil {
			return nil, ErrTagIDEmpty
		}
		if seen[tagID] {
			continue
		}
		seen[tagID] = true
		links = append(links, TaskTag{
			ID:        uuid.New(),
			TaskID:    taskID,
			TagID:     tagID,
			Position:  len(links),
			CreatedAt: now,
		})
	}
	return links, nil
}
