package tasks_test

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdeck-api/internal/domain"
	"github.com/phrazzld/taskdeck-api/internal/domain/stats"
	"github.com/phrazzld/taskdeck-api/internal/events"
	"github.com/phrazzld/taskdeck-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockTaskStore mocks store.TaskStore. WithTx returns the same mock so
// expectations hold inside and outside transactions.
type MockTaskStore struct {
	mock.Mock
}

var _ store.TaskStore = (*MockTaskStore)(nil)

func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskStore) GetForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filter domain.TaskFilter,
) ([]*domain.Task, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskStore) ListByIDs(
	ctx context.Context,
	ownerID uuid.UUID,
	ids []uuid.UUID,
) ([]*domain.Task, error) {
	args := m.Called(ctx, ownerID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockTaskStore) BatchUpdate(
	ctx context.Context,
	ownerID uuid.UUID,
	ids []uuid.UUID,
	update domain.BatchUpdate,
	now time.Time,
) ([]uuid.UUID, error) {
	args := m.Called(ctx, ownerID, ids, update, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockTaskStore) StampCompleted(
	ctx context.Context,
	ownerID uuid.UUID,
	ids []uuid.UUID,
	now time.Time,
) error {
	args := m.Called(ctx, ownerID, ids, now)
	return args.Error(0)
}

func (m *MockTaskStore) WithTx(_ *sql.Tx) store.TaskStore {
	return m
}

// MockTaskTagStore mocks store.TaskTagStore.
type MockTaskTagStore struct {
	mock.Mock
}

var _ store.TaskTagStore = (*MockTaskTagStore)(nil)

func (m *MockTaskTagStore) ReplaceForTask(
	ctx context.Context,
	taskID uuid.UUID,
	tagIDs []uuid.UUID,
	now time.Time,
) error {
	args := m.Called(ctx, taskID, tagIDs, now)
	return args.Error(0)
}

func (m *MockTaskTagStore) ListTagIDs(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockTaskTagStore) CountUsage(ctx context.Context, ownerID uuid.UUID) ([]stats.TagUsage, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stats.TagUsage), args.Error(1)
}

func (m *MockTaskTagStore) WithTx(_ *sql.Tx) store.TaskTagStore {
	return m
}

// recordingEmitter keeps every emitted event.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.TaskEvent
	err    error
}

func (e *recordingEmitter) EmitEvent(_ context.Context, event *events.TaskEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.err
}

func (e *recordingEmitter) types() []events.EventType {
	e.mu.Lock()
	defer e.mu.Unlock()
	types := make([]events.EventType, 0, len(e.events))
	for _, event := range e.events {
		types = append(types, event.Type)
	}
	return types
}
