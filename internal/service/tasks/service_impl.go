package tasks

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdeck-api/internal/domain"
	"github.com/phrazzld/taskdeck-api/internal/events"
	"github.com/phrazzld/taskdeck-api/internal/platform/logger"
	"github.com/phrazzld/taskdeck-api/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*taskServiceImpl)(nil)

// Option customises a Service built by NewService.
type Option func(*taskServiceImpl)

// WithClock replaces the time source. Returned times are converted to UTC.
func WithClock(now func() time.Time) Option {
	return func(s *taskServiceImpl) {
		s.now = func() time.Time { return now().UTC() }
	}
}

// WithLocation sets the time zone that defines calendar days for the today
// view and the weekly statistics. The default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *taskServiceImpl) {
		if loc != nil {
			s.loc = loc
		}
	}
}

type taskServiceImpl struct {
	db       *sql.DB
	tasks    store.TaskStore
	taskTags store.TaskTagStore
	emitter  events.EventEmitter
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// NewService creates the task Service. db is used only to open
// transactions; every query goes through the stores. A nil emitter drops
// events.
func NewService(
	db *sql.DB,
	taskStore store.TaskStore,
	taskTagStore store.TaskTagStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
	opts ...Option,
) Service {
	if db == nil {
		panic("db cannot be nil")
	}
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}
	if taskTagStore == nil {
		panic("taskTagStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if emitter == nil {
		emitter = events.NewInMemoryEventEmitter(logger)
	}

	s := &taskServiceImpl{
		db:       db,
		tasks:    taskStore,
		taskTags: taskTagStore,
		emitter:  emitter,
		loc:      time.UTC,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.With(slog.String("component", "task_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// txFn receives stores bound to the current transaction.
type txFn func(ctx context.Context, tasks store.TaskStore, taskTags store.TaskTagStore) error

func (s *taskServiceImpl) runInTransaction(ctx context.Context, fn txFn) error {
	return s.runInTransactionWithOptions(ctx, nil, fn)
}

// snapshotTxOptions gives every read in the transaction the same snapshot.
var snapshotTxOptions = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

func (s *taskServiceImpl) runInTransactionWithOptions(ctx context.Context, opts *sql.TxOptions, fn txFn) error {
	return store.RunInTransactionWithOptions(ctx, s.db, opts, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.tasks.WithTx(tx), s.taskTags.WithTx(tx))
	})
}

// fail logs err and wraps it for the caller. Expected outcomes such as
// validation errors and missing tasks are logged at debug level.
func (s *taskServiceImpl) fail(ctx context.Context, operation, message string, err error) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return err
	}

	if errors.Is(err, domain.ErrValidation) || store.IsNotFoundError(err) ||
		errors.Is(err, store.ErrInvalidEntity) {
		log.Debug("task operation rejected",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
	} else {
		log.Error("task operation failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
	}
	return NewServiceError(operation, message, err)
}

// emit publishes an event for a committed change. Failures are logged only.
func (s *taskServiceImpl) emit(
	ctx context.Context,
	eventType events.EventType,
	ownerID uuid.UUID,
	taskIDs []uuid.UUID,
	payload interface{},
) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewTaskEvent(eventType, ownerID, taskIDs, payload)
	if err != nil {
		log.Error("failed to build task event",
			slog.String("event_type", string(eventType)),
			slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit task event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", string(eventType)),
			slog.String("error", err.Error()))
	}
}

// checkParent verifies that parentID names one of the owner's tasks.
func checkParent(ctx context.Context, tasks store.TaskStore, ownerID, parentID uuid.UUID) error {
	if _, err := tasks.GetByID(ctx, ownerID, parentID); err != nil {
		if store.IsNotFoundError(err) {
			return domain.NewValidationError("parent", "does not exist", domain.ErrInvalidID)
		}
		return err
	}
	return nil
}

// uniqueIDs drops repeated IDs, keeping first occurrences in order.
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func notDeleted() *bool {
	deleted := false
	return &deleted
}

// Create implements Service.Create.
func (s *taskServiceImpl) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	input NewTaskInput,
	tagIDs []uuid.UUID,
) (*TaskDetail, error) {
	const op = "create"
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(ownerID, input.Title)
	if err != nil {
		return nil, s.fail(ctx, op, "invalid task", err)
	}

	now := s.now()
	task.Description = input.Description
	task.ProjectID = input.ProjectID
	task.ParentID = input.ParentID
	if input.Priority != "" {
		task.Priority = input.Priority
	}
	task.StartDate = input.StartDate
	task.DueDate = input.DueDate
	task.Order = input.Order
	task.IsStarred = input.IsStarred
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := task.Validate(); err != nil {
		return nil, s.fail(ctx, op, "invalid task", err)
	}

	tagIDs = uniqueIDs(tagIDs)
	err = s.runInTransaction(ctx, func(ctx context.Context, tasks store.TaskStore, taskTags store.TaskTagStore) error {
		if task.ParentID != nil {
			if err := checkParent(ctx, tasks, ownerID, *task.ParentID); err != nil {
				return err
			}
		}
		if err := tasks.Create(ctx, task); err != nil {
			return err
		}
		if len(tagIDs) == 0 {
			return nil
		}
		return taskTags.ReplaceForTask(ctx, task.ID, tagIDs, now)
	})
	if err != nil {
		return nil, s.fail(ctx, op, "failed to create task", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.Int("tag_count", len(tagIDs)))
	s.emit(ctx, events.TaskCreated, ownerID, []uuid.UUID{task.ID}, nil)

	return &TaskDetail{Task: task, TagIDs: tagIDs}, nil
}

// Get implements Service.Get.
func (s *taskServiceImpl) Get(ctx context.Context, ownerID, id uuid.UUID) (*TaskDetail, error) {
	const op = "get"

	task, err := s.tasks.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, s.fail(ctx, op, "failed to load task", err)
	}

	tagIDs, err := s.taskTags.ListTagIDs(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, op, "failed to load tags", err)
	}

	subtasks, err := s.tasks.List(ctx, ownerID, domain.TaskFilter{ParentID: &id, IsDeleted: notDeleted()})
	if err != nil {
		return nil, s.fail(ctx, op, "failed to load subtasks", err)
	}

	return &TaskDetail{Task: task, TagIDs: tagIDs, Subtasks: subtasks}, nil
}

// List implements Service.List.
func (s *taskServiceImpl) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filter domain.TaskFilter,
) ([]*domain.Task, error) {
	const op = "list"

	if err := filter.Validate(); err != nil {
		return nil, s.fail(ctx, op, "invalid filter", err)
	}
	if filter.IsDeleted == nil {
		filter.IsDeleted = notDeleted()
	}

	tasks, err := s.tasks.List(ctx, ownerID, filter)
	if err != nil {
		return nil, s.fail(ctx, op, "failed to list tasks", err)
	}
	return tasks, nil
}

// Update implements Service.Update.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	ownerID, id uuid.UUID,
	update domain.TaskUpdate,
	tags domain.Optional[[]uuid.UUID],
) (*TaskDetail, error) {
	const op = "update"
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.now()
	var (
		task   *domain.Task
		tagIDs []uuid.UUID
	)
	err := s.runInTransaction(ctx, func(ctx context.Context, tasks store.TaskStore, taskTags store.TaskTagStore) error {
		var err error
		task, err = tasks.GetForUpdate(ctx, ownerID, id)
		if err != nil {
			return err
		}

		if update.ParentID.Set && update.ParentID.Value != nil && *update.ParentID.Value != id {
			if err := checkParent(ctx, tasks, ownerID, *update.ParentID.Value); err != nil {
				return err
			}
		}

		if err := task.ApplyUpdate(update, now); err != nil {
			return err
		}
		if err := tasks.Update(ctx, task); err != nil {
			return err
		}

		if tags.Set {
			var replacement []uuid.UUID
			if tags.Value != nil {
				replacement = uniqueIDs(*tags.Value)
			}
			if err := taskTags.ReplaceForTask(ctx, id, replacement, now); err != nil {
				return err
			}
		}

		tagIDs, err = taskTags.ListTagIDs(ctx, id)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, op, "failed to update task", err)
	}

	log.Debug("task updated",
		slog.String("task_id", id.String()),
		slog.Bool("tags_replaced", tags.Set))
	s.emit(ctx, events.TaskUpdated, ownerID, []uuid.UUID{id}, map[string]bool{"tags_replaced": tags.Set})

	return &TaskDetail{Task: task, TagIDs: tagIDs}, nil
}
