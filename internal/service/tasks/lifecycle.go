package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdeck-api/internal/domain"
	"github.com/phrazzld/taskdeck-api/internal/events"
	"github.com/phrazzld/taskdeck-api/internal/platform/logger"
	"github.com/phrazzld/taskdeck-api/internal/store"
)

// transition locks the task row, applies change and writes the task back,
// all in one transaction.
func (s *taskServiceImpl) transition(
	ctx context.Context,
	operation string,
	ownerID, id uuid.UUID,
	change func(task *domain.Task, now time.Time),
) (*domain.Task, error) {
	now := s.now()

	var task *domain.Task
	err := s.runInTransaction(ctx, func(ctx context.Context, tasks store.TaskStore, _ store.TaskTagStore) error {
		var err error
		task, err = tasks.GetForUpdate(ctx, ownerID, id)
		if err != nil {
			return err
		}
		change(task, now)
		return tasks.Update(ctx, task)
	})
	if err != nil {
		return nil, s.fail(ctx, operation, "failed to "+operation+" task", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task transitioned",
		slog.String("operation", operation),
		slog.String("task_id", id.String()),
		slog.String("status", string(task.Status)),
		slog.Bool("is_starred", task.IsStarred),
		slog.Bool("is_deleted", task.IsDeleted))
	return task, nil
}

// Complete implements Service.Complete.
func (s *taskServiceImpl) Complete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	task, err := s.transition(ctx, "complete", ownerID, id, (*domain.Task).Complete)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events.TaskCompleted, ownerID, []uuid.UUID{id}, nil)
	return task, nil
}

// ToggleStar implements Service.ToggleStar.
func (s *taskServiceImpl) ToggleStar(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	task, err := s.transition(ctx, "toggle_star", ownerID, id, (*domain.Task).ToggleStar)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events.TaskStarred, ownerID, []uuid.UUID{id}, map[string]bool{"is_starred": task.IsStarred})
	return task, nil
}

// SoftDelete implements Service.SoftDelete.
func (s *taskServiceImpl) SoftDelete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.transition(ctx, "soft_delete", ownerID, id, (*domain.Task).SoftDelete); err != nil {
		return err
	}
	s.emit(ctx, events.TaskDeleted, ownerID, []uuid.UUID{id}, nil)
	return nil
}

// Restore implements Service.Restore.
func (s *taskServiceImpl) Restore(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	task, err := s.transition(ctx, "restore", ownerID, id, (*domain.Task).Restore)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events.TaskRestored, ownerID, []uuid.UUID{id}, nil)
	return task, nil
}

// PermanentDelete implements Service.PermanentDelete.
func (s *taskServiceImpl) PermanentDelete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.tasks.Delete(ctx, ownerID, id); err != nil {
		return s.fail(ctx, "permanent_delete", "failed to delete task", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task permanently deleted",
		slog.String("task_id", id.String()))
	s.emit(ctx, events.TaskPurged, ownerID, []uuid.UUID{id}, nil)
	return nil
}

// SetTags implements Service.SetTags.
func (s *taskServiceImpl) SetTags(
	ctx context.Context,
	ownerID, id uuid.UUID,
	tagIDs []uuid.UUID,
) ([]uuid.UUID, error) {
	now := s.now()

	var stored []uuid.UUID
	err := s.runInTransaction(ctx, func(ctx context.Context, tasks store.TaskStore, taskTags store.TaskTagStore) error {
		if _, err := tasks.GetForUpdate(ctx, ownerID, id); err != nil {
			return err
		}
		if err := taskTags.ReplaceForTask(ctx, id, tagIDs, now); err != nil {
			return err
		}
		var err error
		stored, err = taskTags.ListTagIDs(ctx, id)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "set_tags", "failed to replace tags", err)
	}

	s.emit(ctx, events.TaskTagsReplaced, ownerID, []uuid.UUID{id}, map[string]int{"tag_count": len(stored)})
	return stored, nil
}

// ListTags implements Service.ListTags.
func (s *taskServiceImpl) ListTags(ctx context.Context, ownerID, id uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.tasks.GetByID(ctx, ownerID, id); err != nil {
		return nil, s.fail(ctx, "list_tags", "failed to load task", err)
	}

	tagIDs, err := s.taskTags.ListTagIDs(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "list_tags", "failed to list tags", err)
	}
	return tagIDs, nil
}
