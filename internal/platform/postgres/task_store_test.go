package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskdeck-api/internal/domain"
	"github.com/phrazzld/taskdeck-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// arrayConverter lets []string arguments through to sqlmock the way the pgx
// driver accepts them for uuid[] and text[] parameters.
type arrayConverter struct{}

func (arrayConverter) ConvertValue(v any) (driver.Value, error) {
	if s, ok := v.([]string); ok {
		return s, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(arrayConverter{}))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var taskRowColumns = []string{
	"id", "user_id", "project_id", "parent_id", "title", "description", "priority", "status",
	"start_date", "due_date", "completed_at", "sort_order", "is_starred", "is_deleted",
	"created_at", "updated_at",
}

var storeNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func sampleTask(owner uuid.UUID) *domain.Task {
	return &domain.Task{
		ID:        uuid.New(),
		UserID:    owner,
		Title:     "Renew passport",
		Priority:  domain.TaskPriorityMedium,
		Status:    domain.TaskStatusTodo,
		CreatedAt: storeNow,
		UpdatedAt: storeNow,
	}
}

func taskRow(task *domain.Task) []driver.Value {
	var project, parent, desc, due, completed driver.Value
	if task.ProjectID != nil {
		project = task.ProjectID.String()
	}
	if task.ParentID != nil {
		parent = task.ParentID.String()
	}
	if task.Description != nil {
		desc = *task.Description
	}
	if task.DueDate != nil {
		due = *task.DueDate
	}
	if task.CompletedAt != nil {
		completed = *task.CompletedAt
	}
	return []driver.Value{
		task.ID.String(), task.UserID.String(), project, parent, task.Title, desc,
		string(task.Priority), string(task.Status), nil, due, completed,
		int64(task.Order), task.IsStarred, task.IsDeleted, task.CreatedAt, task.UpdatedAt,
	}
}

func TestPostgresTaskStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("inserts the task", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)
		task := sampleTask(uuid.New())
		project := uuid.New()
		task.ProjectID = &project

		mock.ExpectExec(`INSERT INTO tasks`).
			WithArgs(
				task.ID, task.UserID, project.String(), nil, task.Title, nil,
				"medium", "todo", nil, nil, nil, 0, false, false, storeNow, storeNow,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), task))
	})

	t.Run("maps a dangling project to invalid entity", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)

		mock.ExpectExec(`INSERT INTO tasks`).
			WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "tasks_project_id_fkey"})

		err := s.Create(context.Background(), sampleTask(uuid.New()))
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.Contains(t, err.Error(), "tasks_project_id_fkey")
	})

	t.Run("rejects an invalid task before touching the database", func(t *testing.T) {
		db, _ := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)
		task := sampleTask(uuid.New())
		task.Title = ""

		assert.ErrorIs(t, s.Create(context.Background(), task), domain.ErrTaskTitleEmpty)
	})
}

func TestPostgresTaskStore_GetByID(t *testing.T) {
	t.Parallel()

	t.Run("scans every column", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)
		owner := uuid.New()
		want := sampleTask(owner)
		desc := "bring photos"
		due := storeNow.Add(48 * time.Hour)
		parent := uuid.New()
		want.Description = &desc
		want.DueDate = &due
		want.ParentID = &parent
		want.Order = 3
		want.IsStarred = true

		mock.ExpectQuery(`SELECT .+ FROM tasks WHERE id = \$1 AND user_id = \$2$`).
			WithArgs(want.ID, owner).
			WillReturnRows(sqlmock.NewRows(taskRowColumns).AddRow(taskRow(want)...))

		got, err := s.GetByID(context.Background(), owner, want.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("missing or foreign task is not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)

		mock.ExpectQuery(`SELECT .+ FROM tasks`).
			WillReturnRows(sqlmock.NewRows(taskRowColumns))

		_, err := s.GetByID(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("for update locks the row", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)
		owner := uuid.New()
		task := sampleTask(owner)

		mock.ExpectQuery(`SELECT .+ FROM tasks WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
			WithArgs(task.ID, owner).
			WillReturnRows(sqlmock.NewRows(taskRowColumns).AddRow(taskRow(task)...))

		got, err := s.GetForUpdate(context.Background(), owner, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.ID, got.ID)
	})
}

func TestPostgresTaskStore_List(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)
	owner := uuid.New()
	deleted := false
	task := sampleTask(owner)

	filter := domain.TaskFilter{
		Statuses:  []domain.TaskStatus{domain.TaskStatusTodo, domain.TaskStatusInProgress},
		NoProject: true,
		IsDeleted: &deleted,
		Search:    "50%",
		Ordering:  "-due_date",
	}

	mock.ExpectQuery(
		`WHERE user_id = \$1 AND status = ANY\(\$2::text\[\]\) AND project_id IS NULL `+
			`AND is_deleted = \$3 AND \(title ILIKE \$4 OR description ILIKE \$4\) `+
			`ORDER BY due_date DESC, sort_order ASC, created_at DESC, id ASC`).
		WithArgs(owner, []string{"todo", "in_progress"}, false, `%50\%%`).
		WillReturnRows(sqlmock.NewRows(taskRowColumns).AddRow(taskRow(task)...))

	tasks, err := s.List(context.Background(), owner, filter)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)
}

func TestPostgresTaskStore_ListByIDs(t *testing.T) {
	t.Parallel()

	t.Run("empty input skips the query", func(t *testing.T) {
		db, _ := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)

		tasks, err := s.ListByIDs(context.Background(), uuid.New(), nil)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("passes ids as a uuid array", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)
		owner := uuid.New()
		task := sampleTask(owner)

		mock.ExpectQuery(`WHERE user_id = \$1 AND id = ANY\(\$2::uuid\[\]\)`).
			WithArgs(owner, []string{task.ID.String()}).
			WillReturnRows(sqlmock.NewRows(taskRowColumns).AddRow(taskRow(task)...))

		tasks, err := s.ListByIDs(context.Background(), owner, []uuid.UUID{task.ID})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
	})
}

func TestPostgresTaskStore_Update(t *testing.T) {
	t.Parallel()

	t.Run("writes completed_at as given", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)
		task := sampleTask(uuid.New())
		task.Complete(storeNow)

		mock.ExpectExec(`UPDATE tasks\s+SET project_id = \$1`).
			WithArgs(
				nil, nil, task.Title, nil, "medium", "completed", nil, nil, storeNow,
				0, false, false, storeNow, task.ID, task.UserID,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Update(context.Background(), task))
	})

	t.Run("no matching row is not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)

		mock.ExpectExec(`UPDATE tasks`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.Update(context.Background(), sampleTask(uuid.New()))
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestPostgresTaskStore_Delete(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)
	owner, id := uuid.New(), uuid.New()

	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1 AND user_id = \$2`).
		WithArgs(id, owner).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM tasks`).
		WithArgs(id, owner).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Delete(context.Background(), owner, id))
	assert.ErrorIs(t, s.Delete(context.Background(), owner, id), store.ErrTaskNotFound)
}

func TestPostgresTaskStore_BatchUpdate(t *testing.T) {
	t.Parallel()

	t.Run("sets only the named fields", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)
		owner := uuid.New()
		a, b := uuid.New(), uuid.New()
		done := domain.TaskStatusCompleted
		starred := true

		mock.ExpectQuery(
			`UPDATE tasks SET status = \$1, is_starred = \$2, updated_at = \$3 `+
				`WHERE user_id = \$4 AND id = ANY\(\$5::uuid\[\]\) RETURNING id`).
			WithArgs("completed", true, storeNow, owner, []string{a.String(), b.String()}).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(a.String()))

		updated, err := s.BatchUpdate(context.Background(), owner, []uuid.UUID{a, b},
			domain.BatchUpdate{Status: &done, IsStarred: &starred}, storeNow)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{a}, updated)
	})

	t.Run("clears the project", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)
		owner, id := uuid.New(), uuid.New()

		mock.ExpectQuery(`UPDATE tasks SET project_id = \$1, updated_at = \$2`).
			WithArgs(nil, storeNow, owner, []string{id.String()}).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id.String()))

		_, err := s.BatchUpdate(context.Background(), owner, []uuid.UUID{id},
			domain.BatchUpdate{ProjectID: domain.Null[uuid.UUID]()}, storeNow)
		require.NoError(t, err)
	})

	t.Run("rejects empty input without a query", func(t *testing.T) {
		db, _ := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)
		starred := true

		_, err := s.BatchUpdate(context.Background(), uuid.New(), nil,
			domain.BatchUpdate{IsStarred: &starred}, storeNow)
		assert.ErrorIs(t, err, domain.ErrBatchEmptyIDs)

		_, err = s.BatchUpdate(context.Background(), uuid.New(), []uuid.UUID{uuid.New()},
			domain.BatchUpdate{}, storeNow)
		assert.ErrorIs(t, err, domain.ErrBatchNoFields)
	})
}

func TestPostgresTaskStore_StampCompleted(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)
	owner, id := uuid.New(), uuid.New()

	mock.ExpectExec(`UPDATE tasks SET completed_at = \$1 WHERE user_id = \$2 AND id = ANY\(\$3::uuid\[\]\)`).
		WithArgs(storeNow, owner, []string{id.String()}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.StampCompleted(context.Background(), owner, []uuid.UUID{id}, storeNow))
	require.NoError(t, s.StampCompleted(context.Background(), owner, nil, storeNow))
}

func TestOrderByClause(t *testing.T) {
	t.Parallel()

	assert.Equal(t, defaultTaskOrder, orderByClause(""))
	assert.Equal(t, "sort_order ASC, "+defaultTaskOrder, orderByClause("order"))
	assert.Equal(t, "created_at DESC, "+defaultTaskOrder, orderByClause("-created_at"))
	assert.Equal(t, priorityRankExpr+" DESC, "+defaultTaskOrder, orderByClause("-priority"))
	assert.Equal(t, defaultTaskOrder, orderByClause("title"))
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `100\% done\_now \\o/`, escapeLike(`100% done_now \o/`))
	assert.Equal(t, "plain", escapeLike("plain"))
}
