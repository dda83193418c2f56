package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdeck-api/internal/domain"
	"github.com/phrazzld/taskdeck-api/internal/service/tasks"
)

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Title       string              `json:"title"       validate:"required,max=255"`
	Description *string             `json:"description"`
	Project     *uuid.UUID          `json:"project"`
	Parent      *uuid.UUID          `json:"parent"`
	Priority    domain.TaskPriority `json:"priority"    validate:"omitempty,oneof=none low medium high"`
	StartDate   *time.Time          `json:"start_date"`
	DueDate     *time.Time          `json:"due_date"`
	Order       int                 `json:"order"`
	IsStarred   bool                `json:"is_starred"`
	TagIDs      []uuid.UUID         `json:"tag_ids"`
}

// ToInput converts the request into service input.
func (r CreateTaskRequest) ToInput() tasks.NewTaskInput {
	return tasks.NewTaskInput{
		Title:       r.Title,
		Description: r.Description,
		ProjectID:   r.Project,
		ParentID:    r.Parent,
		Priority:    r.Priority,
		StartDate:   r.StartDate,
		DueDate:     r.DueDate,
		Order:       r.Order,
		IsStarred:   r.IsStarred,
	}
}

// UpdateTaskRequest is the body of PATCH /api/tasks/{id}. Keys that are
// absent leave the field alone; tag_ids replaces the tag set when present.
type UpdateTaskRequest struct {
	domain.TaskUpdate
	TagIDs domain.Optional[[]uuid.UUID] `json:"tag_ids"`
}

// SetTagsRequest is the body of PUT /api/tasks/{id}/tags.
type SetTagsRequest struct {
	TagIDs []uuid.UUID `json:"tag_ids" validate:"required"`
}

// BatchUpdateRequest is the body of POST /api/tasks/batch_update. Updates
// is decoded by domain.DecodeBatchUpdate so that unknown keys are rejected.
type BatchUpdateRequest struct {
	TaskIDs []uuid.UUID     `json:"task_ids"`
	Updates json.RawMessage `json:"updates"`
}

// TaskResponse is the JSON form of a task.
type TaskResponse struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	Description *string             `json:"description"`
	User        uuid.UUID           `json:"user"`
	Project     *uuid.UUID          `json:"project"`
	Parent      *uuid.UUID          `json:"parent"`
	Priority    domain.TaskPriority `json:"priority"`
	Status      domain.TaskStatus   `json:"status"`
	StartDate   *time.Time          `json:"start_date"`
	DueDate     *time.Time          `json:"due_date"`
	CompletedAt *time.Time          `json:"completed_at"`
	Order       int                 `json:"order"`
	IsStarred   bool                `json:"is_starred"`
	IsDeleted   bool                `json:"is_deleted"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// TaggedTaskResponse is a task with its tag IDs, returned by create and
// update.
type TaggedTaskResponse struct {
	TaskResponse
	TagIDs []uuid.UUID `json:"tag_ids"`
}

// TaskDetailResponse is a task with its tags and live subtasks.
type TaskDetailResponse struct {
	TaskResponse
	TagIDs        []uuid.UUID    `json:"tag_ids"`
	SubtasksCount int            `json:"subtasks_count"`
	Subtasks      []TaskResponse `json:"subtasks"`
}

// TagIDsResponse lists a task's tag IDs in assignment order.
type TagIDsResponse struct {
	TagIDs []uuid.UUID `json:"tag_ids"`
}

// BatchUpdateResponse reports a batch update.
type BatchUpdateResponse struct {
	UpdatedCount int            `json:"updated_count"`
	Tasks        []TaskResponse `json:"tasks"`
}

// ViewResponse is the content of a system view.
type ViewResponse struct {
	Results []TaskResponse `json:"results"`
	Count   int            `json:"count"`
}

// NewTaskResponse converts a domain task.
func NewTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		User:        t.UserID,
		Project:     t.ProjectID,
		Parent:      t.ParentID,
		Priority:    t.Priority,
		Status:      t.Status,
		StartDate:   t.StartDate,
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		Order:       t.Order,
		IsStarred:   t.IsStarred,
		IsDeleted:   t.IsDeleted,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTaskListResponse converts a slice of tasks, never returning nil.
func NewTaskListResponse(list []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(list))
	for _, t := range list {
		out = append(out, NewTaskResponse(t))
	}
	return out
}

// NewTaggedTaskResponse converts a task detail without its subtasks.
func NewTaggedTaskResponse(d *tasks.TaskDetail) TaggedTaskResponse {
	return TaggedTaskResponse{
		TaskResponse: NewTaskResponse(d.Task),
		TagIDs:       nonNilIDs(d.TagIDs),
	}
}

// NewTaskDetailResponse converts a task detail including subtasks.
func NewTaskDetailResponse(d *tasks.TaskDetail) TaskDetailResponse {
	return TaskDetailResponse{
		TaskResponse:  NewTaskResponse(d.Task),
		TagIDs:        nonNilIDs(d.TagIDs),
		SubtasksCount: len(d.Subtasks),
		Subtasks:      NewTaskListResponse(d.Subtasks),
	}
}

func nonNilIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
