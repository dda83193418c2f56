package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType names something that happened to one or more tasks.
type EventType string

// Task event types
const (
	TaskCreated      EventType = "task.created"
	TaskUpdated      EventType = "task.updated"
	TaskCompleted    EventType = "task.completed"
	TaskStarred      EventType = "task.starred"
	TaskDeleted      EventType = "task.deleted"
	TaskRestored     EventType = "task.restored"
	TaskPurged       EventType = "task.purged"
	TaskTagsReplaced EventType = "task.tags_replaced"
	TaskBatchUpdated EventType = "task.batch_updated"
)

// TaskEvent records a committed change to an owner's tasks.
type TaskEvent struct {
	// ID uniquely identifies this event.
	ID uuid.UUID `json:"id"`

	Type    EventType   `json:"type"`
	OwnerID uuid.UUID   `json:"owner_id"`
	TaskIDs []uuid.UUID `json:"task_ids"`

	// Payload carries type-specific detail, for example the new starred
	// state or the fields of a batch update.
	Payload json.RawMessage `json:"payload,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event's payload into v.
func (e *TaskEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskEvent creates an event with a fresh ID. A nil payload is omitted.
func NewTaskEvent(
	eventType EventType,
	ownerID uuid.UUID,
	taskIDs []uuid.UUID,
	payload interface{},
) (*TaskEvent, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}

	return &TaskEvent{
		ID:        uuid.New(),
		Type:      eventType,
		OwnerID:   ownerID,
		TaskIDs:   taskIDs,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler consumes task events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// EventEmitter dispatches task events to interested parties.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *TaskEvent) error
}
