package tasks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdeck-api/internal/domain"
	"github.com/phrazzld/taskdeck-api/internal/domain/stats"
	"github.com/phrazzld/taskdeck-api/internal/store"
)

// SystemView implements Service.SystemView.
func (s *taskServiceImpl) SystemView(ctx context.Context, ownerID uuid.UUID, name string) (*ViewResult, error) {
	view, err := domain.ParseSystemView(name)
	if err != nil {
		return nil, s.fail(ctx, "system_view", "unknown view", err)
	}

	tasks, err := s.tasks.List(ctx, ownerID, view.Filter(s.now(), s.loc))
	if err != nil {
		return nil, s.fail(ctx, "system_view", "failed to evaluate view", err)
	}
	return &ViewResult{Results: tasks, Count: len(tasks)}, nil
}

// Statistics implements Service.Statistics. Tasks and tag usage are read
// in one repeatable-read transaction so the snapshot is consistent.
func (s *taskServiceImpl) Statistics(ctx context.Context, ownerID uuid.UUID) (*stats.Snapshot, error) {
	var (
		list  []*domain.Task
		usage []stats.TagUsage
	)
	err := s.runInTransactionWithOptions(ctx, snapshotTxOptions,
		func(ctx context.Context, tasks store.TaskStore, taskTags store.TaskTagStore) error {
			var err error
			if list, err = tasks.List(ctx, ownerID, domain.TaskFilter{IsDeleted: notDeleted()}); err != nil {
				return err
			}
			usage, err = taskTags.CountUsage(ctx, ownerID)
			return err
		})
	if err != nil {
		return nil, s.fail(ctx, "statistics", "failed to read dashboard data", err)
	}

	return stats.Compute(list, usage, s.now(), s.loc), nil
}
