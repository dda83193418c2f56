package tasks

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdeck-api/internal/domain"
	"github.com/phrazzld/taskdeck-api/internal/events"
	"github.com/phrazzld/taskdeck-api/internal/platform/logger"
	"github.com/phrazzld/taskdeck-api/internal/store"
)

// BatchUpdate implements Service.BatchUpdate.
func (s *taskServiceImpl) BatchUpdate(
	ctx context.Context,
	ownerID uuid.UUID,
	ids []uuid.UUID,
	update domain.BatchUpdate,
) (*BatchResult, error) {
	const op = "batch_update"
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return nil, s.fail(ctx, op, "invalid batch",
			domain.NewValidationError("task_ids", "cannot be empty", domain.ErrBatchEmptyIDs))
	}
	if err := update.Validate(); err != nil {
		return nil, s.fail(ctx, op, "invalid batch", err)
	}

	ids = uniqueIDs(ids)
	now := s.now()

	var updated []uuid.UUID
	err := s.runInTransaction(ctx, func(ctx context.Context, tasks store.TaskStore, _ store.TaskTagStore) error {
		var err error
		updated, err = tasks.BatchUpdate(ctx, ownerID, ids, update, now)
		if err != nil {
			return err
		}
		if update.CompletesTasks() && len(updated) > 0 {
			return tasks.StampCompleted(ctx, ownerID, updated, now)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, op, "failed to update tasks", err)
	}

	result := &BatchResult{UpdatedCount: len(updated), Tasks: []*domain.Task{}}
	if len(updated) > 0 {
		result.Tasks, err = s.tasks.ListByIDs(ctx, ownerID, updated)
		if err != nil {
			return nil, s.fail(ctx, op, "failed to reload updated tasks", err)
		}
	}

	log.Info("batch update applied",
		slog.Int("requested", len(ids)),
		slog.Int("updated", result.UpdatedCount),
		slog.Any("fields", update.Fields()))
	if len(updated) > 0 {
		s.emit(ctx, events.TaskBatchUpdated, ownerID, updated, map[string][]string{"fields": update.Fields()})
	}

	return result, nil
}
