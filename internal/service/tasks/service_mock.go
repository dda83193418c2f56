package tasks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdeck-api/internal/domain"
	"github.com/phrazzld/taskdeck-api/internal/domain/stats"
)

// MockService is a function-field implementation of Service for handler
// tests. Unset functions return zero values.
type MockService struct {
	CreateFunc          func(ctx context.Context, ownerID uuid.UUID, input NewTaskInput, tagIDs []uuid.UUID) (*TaskDetail, error)
	GetFunc             func(ctx context.Context, ownerID, id uuid.UUID) (*TaskDetail, error)
	ListFunc            func(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error)
	UpdateFunc          func(ctx context.Context, ownerID, id uuid.UUID, update domain.TaskUpdate, tags domain.Optional[[]uuid.UUID]) (*TaskDetail, error)
	CompleteFunc        func(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)
	ToggleStarFunc      func(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)
	SoftDeleteFunc      func(ctx context.Context, ownerID, id uuid.UUID) error
	RestoreFunc         func(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)
	PermanentDeleteFunc func(ctx context.Context, ownerID, id uuid.UUID) error
	SetTagsFunc         func(ctx context.Context, ownerID, id uuid.UUID, tagIDs []uuid.UUID) ([]uuid.UUID, error)
	ListTagsFunc        func(ctx context.Context, ownerID, id uuid.UUID) ([]uuid.UUID, error)
	BatchUpdateFunc     func(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID, update domain.BatchUpdate) (*BatchResult, error)
	SystemViewFunc      func(ctx context.Context, ownerID uuid.UUID, name string) (*ViewResult, error)
	StatisticsFunc      func(ctx context.Context, ownerID uuid.UUID) (*stats.Snapshot, error)
}

var _ Service = (*MockService)(nil)

func (m *MockService) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	input NewTaskInput,
	tagIDs []uuid.UUID,
) (*TaskDetail, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ownerID, input, tagIDs)
	}
	return nil, nil
}

func (m *MockService) Get(ctx context.Context, ownerID, id uuid.UUID) (*TaskDetail, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, ownerID, id)
	}
	return nil, nil
}

func (m *MockService) List(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID, filter)
	}
	return nil, nil
}

func (m *MockService) Update(
	ctx context.Context,
	ownerID, id uuid.UUID,
	update domain.TaskUpdate,
	tags domain.Optional[[]uuid.UUID],
) (*TaskDetail, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, ownerID, id, update, tags)
	}
	return nil, nil
}

func (m *MockService) Complete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, ownerID, id)
	}
	return nil, nil
}

func (m *MockService) ToggleStar(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	if m.ToggleStarFunc != nil {
		return m.ToggleStarFunc(ctx, ownerID, id)
	}
	return nil, nil
}

func (m *MockService) SoftDelete(ctx context.Context, ownerID, id uuid.UUID) error {
	if m.SoftDeleteFunc != nil {
		return m.SoftDeleteFunc(ctx, ownerID, id)
	}
	return nil
}

func (m *MockService) Restore(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	if m.RestoreFunc != nil {
		return m.RestoreFunc(ctx, ownerID, id)
	}
	return nil, nil
}

func (m *MockService) PermanentDelete(ctx context.Context, ownerID, id uuid.UUID) error {
	if m.PermanentDeleteFunc != nil {
		return m.PermanentDeleteFunc(ctx, ownerID, id)
	}
	return nil
}

func (m *MockService) SetTags(ctx context.Context, ownerID, id uuid.UUID, tagIDs []uuid.UUID) ([]uuid.UUID, error) {
	if m.SetTagsFunc != nil {
		return m.SetTagsFunc(ctx, ownerID, id, tagIDs)
	}
	return nil, nil
}

func (m *MockService) ListTags(ctx context.Context, ownerID, id uuid.UUID) ([]uuid.UUID, error) {
	if m.ListTagsFunc != nil {
		return m.ListTagsFunc(ctx, ownerID, id)
	}
	return nil, nil
}

func (m *MockService) BatchUpdate(
	ctx context.Context,
	ownerID uuid.UUID,
	ids []uuid.UUID,
	update domain.BatchUpdate,
) (*BatchResult, error) {
	if m.BatchUpdateFunc != nil {
		return m.BatchUpdateFunc(ctx, ownerID, ids, update)
	}
	return nil, nil
}

func (m *MockService) SystemView(ctx context.Context, ownerID uuid.UUID, name string) (*ViewResult, error) {
	if m.SystemViewFunc != nil {
		return m.SystemViewFunc(ctx, ownerID, name)
	}
	return nil, nil
}

func (m *MockService) Statistics(ctx context.Context, ownerID uuid.UUID) (*stats.Snapshot, error) {
	if m.StatisticsFunc != nil {
		return m.StatisticsFunc(ctx, ownerID)
	}
	return nil, nil
}
