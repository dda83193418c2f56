package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdeck-api/internal/domain"
	"github.com/phrazzld/taskdeck-api/internal/platform/logger"
	"github.com/phrazzld/taskdeck-api/internal/store"
)

// taskColumns is the canonical column order for scanTask.
const taskColumns = `id, user_id, project_id, parent_id, title, description, priority, status,
	start_date, due_date, completed_at, sort_order, is_starred, is_deleted, created_at, updated_at`

// defaultTaskOrder is the list order when no ordering is requested.
const defaultTaskOrder = "sort_order ASC, created_at DESC, id ASC"

// priorityRankExpr sorts priority by urgency rather than alphabetically.
const priorityRankExpr = `CASE priority WHEN 'none' THEN 0 WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 END`

var orderingColumns = map[string]string{
	"created_at": "created_at",
	"due_date":   "due_date",
	"order":      "sort_order",
	"priority":   priorityRankExpr,
}

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.UserID,
		nullUUID(task.ProjectID),
		nullUUID(task.ParentID),
		task.Title,
		nullString(task.Description),
		string(task.Priority),
		string(task.Status),
		nullTime(task.StartDate),
		nullTime(task.DueDate),
		nullTime(task.CompletedAt),
		task.Order,
		task.IsStarred,
		task.IsDeleted,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()))
		return MapError(err)
	}

	log.Debug("task created", slog.String("task_id", task.ID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	return s.getOne(ctx, ownerID, id, false)
}

// GetForUpdate implements store.TaskStore.GetForUpdate.
func (s *PostgresTaskStore) GetForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	return s.getOne(ctx, ownerID, id, true)
}

func (s *PostgresTaskStore) getOne(ctx context.Context, ownerID, id uuid.UUID, lock bool) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	if lock {
		query += ` FOR UPDATE`
	}

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found",
				slog.String("task_id", id.String()),
				slog.String("user_id", ownerID.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()),
			slog.Bool("for_update", lock))
		return nil, MapError(err)
	}
	return task, nil
}

// List implements store.TaskStore.List.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filter domain.TaskFilter,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where := &whereBuilder{}
	where.add("user_id = " + where.arg(ownerID))
	applyTaskFilter(where, filter)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + where.sql() +
		` ORDER BY ` + orderByClause(filter.Ordering)

	tasks, err := s.query(ctx, query, where.args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, err
	}
	return tasks, nil
}

// ListByIDs implements store.TaskStore.ListByIDs.
func (s *PostgresTaskStore) ListByIDs(
	ctx context.Context,
	ownerID uuid.UUID,
	ids []uuid.UUID,
) ([]*domain.Task, error) {
	if len(ids) == 0 {
		return []*domain.Task{}, nil
	}

	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND id = ANY($2::uuid[])
		ORDER BY ` + defaultTaskOrder

	tasks, err := s.query(ctx, query, ownerID, uuidStrings(ids))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks by id",
			slog.String("error", err.Error()),
			slog.Int("requested", len(ids)))
		return nil, err
	}
	return tasks, nil
}

// Update implements store.TaskStore.Update.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET project_id = $1, parent_id = $2, title = $3, description = $4,
			priority = $5, status = $6, start_date = $7, due_date = $8,
			completed_at = $9, sort_order = $10, is_starred = $11, is_deleted = $12,
			updated_at = $13
		WHERE id = $14 AND user_id = $15
	`
	result, err := s.db.ExecContext(ctx, query,
		nullUUID(task.ProjectID),
		nullUUID(task.ParentID),
		task.Title,
		nullString(task.Description),
		string(task.Priority),
		string(task.Status),
		nullTime(task.StartDate),
		nullTime(task.DueDate),
		nullTime(task.CompletedAt),
		task.Order,
		task.IsStarred,
		task.IsDeleted,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task not found for update", slog.String("task_id", task.ID.String()))
		return err
	}
	return nil
}

// Delete implements store.TaskStore.Delete.
func (s *PostgresTaskStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task not found for delete", slog.String("task_id", id.String()))
		return err
	}

	log.Info("task permanently deleted",
		slog.String("task_id", id.String()),
		slog.String("user_id", ownerID.String()))
	return nil
}

// BatchUpdate implements store.TaskStore.BatchUpdate.
func (s *PostgresTaskStore) BatchUpdate(
	ctx context.Context,
	ownerID uuid.UUID,
	ids []uuid.UUID,
	update domain.BatchUpdate,
	now time.Time,
) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return nil, domain.ErrBatchEmptyIDs
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}

	b := &whereBuilder{}
	var sets []string
	if update.Status != nil {
		sets = append(sets, "status = "+b.arg(string(*update.Status)))
	}
	if update.Priority != nil {
		sets = append(sets, "priority = "+b.arg(string(*update.Priority)))
	}
	if update.ProjectID.Set {
		sets = append(sets, "project_id = "+b.arg(nullUUID(update.ProjectID.Value)))
	}
	if update.IsStarred != nil {
		sets = append(sets, "is_starred = "+b.arg(*update.IsStarred))
	}
	if update.IsDeleted != nil {
		sets = append(sets, "is_deleted = "+b.arg(*update.IsDeleted))
	}
	sets = append(sets, "updated_at = "+b.arg(now))

	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") +
		` WHERE user_id = ` + b.arg(ownerID) +
		` AND id = ANY(` + b.arg(uuidStrings(ids)) + `::uuid[]) RETURNING id`

	rows, err := s.db.QueryContext(ctx, query, b.args...)
	if err != nil {
		log.Error("failed to batch update tasks",
			slog.String("error", err.Error()),
			slog.Int("requested", len(ids)))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	updated := make([]uuid.UUID, 0, len(ids))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan updated task id: %w", err)
		}
		updated = append(updated, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Info("batch updated tasks",
		slog.String("user_id", ownerID.String()),
		slog.Int("requested", len(ids)),
		slog.Int("updated", len(updated)))
	return updated, nil
}

// StampCompleted implements store.TaskStore.StampCompleted.
func (s *PostgresTaskStore) StampCompleted(
	ctx context.Context,
	ownerID uuid.UUID,
	ids []uuid.UUID,
	now time.Time,
) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET completed_at = $1 WHERE user_id = $2 AND id = ANY($3::uuid[])`,
		now, ownerID, uuidStrings(ids))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to stamp completion time",
			slog.String("error", err.Error()),
			slog.Int("count", len(ids)))
		return MapError(err)
	}
	return nil
}

func (s *PostgresTaskStore) query(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tasks, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		projectID   uuid.NullUUID
		parentID    uuid.NullUUID
		description sql.NullString
		priority    string
		status      string
		startDate   sql.NullTime
		dueDate     sql.NullTime
		completedAt sql.NullTime
	)

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&projectID,
		&parentID,
		&task.Title,
		&description,
		&priority,
		&status,
		&startDate,
		&dueDate,
		&completedAt,
		&task.Order,
		&task.IsStarred,
		&task.IsDeleted,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.ProjectID = uuidPtr(projectID)
	task.ParentID = uuidPtr(parentID)
	task.Description = stringPtr(description)
	task.Priority = domain.TaskPriority(priority)
	task.Status = domain.TaskStatus(status)
	task.StartDate = timePtr(startDate)
	task.DueDate = timePtr(dueDate)
	task.CompletedAt = timePtr(completedAt)
	return &task, nil
}

// applyTaskFilter translates a domain.TaskFilter into WHERE conditions with
// the same semantics as TaskFilter.Matches.
func applyTaskFilter(b *whereBuilder, f domain.TaskFilter) {
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			statuses[i] = string(st)
		}
		b.add("status = ANY(" + b.arg(statuses) + "::text[])")
	}
	if f.Priority != nil {
		b.add("priority = " + b.arg(string(*f.Priority)))
	}
	if f.NoProject {
		b.add("project_id IS NULL")
	}
	if f.ProjectID != nil {
		b.add("project_id = " + b.arg(*f.ProjectID))
	}
	if f.ParentID != nil {
		b.add("parent_id = " + b.arg(*f.ParentID))
	}
	if f.IsStarred != nil {
		b.add("is_starred = " + b.arg(*f.IsStarred))
	}
	if f.IsDeleted != nil {
		b.add("is_deleted = " + b.arg(*f.IsDeleted))
	}
	if f.DueFrom != nil {
		b.add("due_date >= " + b.arg(*f.DueFrom))
	}
	if f.DueBefore != nil {
		b.add("due_date < " + b.arg(*f.DueBefore))
	}
	if f.Search != "" {
		p := b.arg("%" + escapeLike(f.Search) + "%")
		b.add("(title ILIKE " + p + " OR description ILIKE " + p + ")")
	}
}

// orderByClause builds ORDER BY from a validated ordering key, falling back
// to the default order for ties and for an empty key.
func orderByClause(ordering string) string {
	if ordering == "" {
		return defaultTaskOrder
	}
	dir := "ASC"
	if strings.HasPrefix(ordering, "-") {
		dir = "DESC"
		ordering = strings.TrimPrefix(ordering, "-")
	}
	col, ok := orderingColumns[ordering]
	if !ok {
		return defaultTaskOrder
	}
	return col + " " + dir + ", " + defaultTaskOrder
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// whereBuilder collects positional arguments and AND-ed conditions.
type whereBuilder struct {
	clauses []string
	args    []any
}

// arg appends v and returns its placeholder.
func (b *whereBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *whereBuilder) add(clause string) {
	b.clauses = append(b.clauses, clause)
}

func (b *whereBuilder) sql() string {
	if len(b.clauses) == 0 {
		return "TRUE"
	}
	return strings.Join(b.clauses, " AND ")
}
