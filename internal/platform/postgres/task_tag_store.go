package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdeck-api/internal/domain"
	"github.com/phrazzld/taskdeck-api/internal/domain/stats"
	"github.com/phrazzld/taskdeck-api/internal/platform/logger"
	"github.com/phrazzld/taskdeck-api/internal/store"
)

// PostgresTaskTagStore implements the store.TaskTagStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskTagStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskTagStore creates a new PostgreSQL implementation of the TaskTagStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskTagStore(db store.DBTX, logger *slog.Logger) *PostgresTaskTagStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskTagStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_tag_store")),
	}
}

// Ensure PostgresTaskTagStore implements store.TaskTagStore interface
var _ store.TaskTagStore = (*PostgresTaskTagStore)(nil)

// WithTx implements store.TaskTagStore.WithTx.
func (s *PostgresTaskTagStore) WithTx(tx *sql.Tx) store.TaskTagStore {
	return &PostgresTaskTagStore{
		db:     tx,
		logger: s.logger,
	}
}

// insertTaskTagQuery only inserts when the tag belongs to the task's owner,
// so a foreign tag ID looks the same as a missing one.
const insertTaskTagQuery = `
	INSERT INTO task_tags (id, task_id, tag_id, position, created_at)
	SELECT $1, k.id, g.id, $4, $5
	FROM tasks k
	JOIN tags g ON g.user_id = k.user_id
	WHERE k.id = $2 AND g.id = $3
`

// ReplaceForTask implements store.TaskTagStore.ReplaceForTask.
func (s *PostgresTaskTagStore) ReplaceForTask(
	ctx context.Context,
	taskID uuid.UUID,
	tagIDs []uuid.UUID,
	now time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	links, err := domain.NewTaskTags(taskID, tagIDs, now)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = $1`, taskID); err != nil {
		log.Error("failed to clear task tags",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return MapError(err)
	}

	for _, link := range links {
		result, err := s.db.ExecContext(ctx, insertTaskTagQuery,
			link.ID, link.TaskID, link.TagID, link.Position, link.CreatedAt)
		if err != nil {
			log.Error("failed to insert task tag",
				slog.String("error", err.Error()),
				slog.String("task_id", taskID.String()),
				slog.String("tag_id", link.TagID.String()))
			return MapError(err)
		}
		notFound := fmt.Errorf("%w: tag %s not found", store.ErrInvalidEntity, link.TagID)
		if err := CheckRowsAffected(result, notFound); err != nil {
			log.Warn("tag not available to task owner",
				slog.String("task_id", taskID.String()),
				slog.String("tag_id", link.TagID.String()))
			return err
		}
	}

	log.Debug("task tags replaced",
		slog.String("task_id", taskID.String()),
		slog.Int("count", len(links)))
	return nil
}

// ListTagIDs implements store.TaskTagStore.ListTagIDs.
func (s *PostgresTaskTagStore) ListTagIDs(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag_id FROM task_tags WHERE task_id = $1 ORDER BY position ASC, created_at ASC, id ASC`,
		taskID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list task tags",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tag id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return ids, nil
}

// CountUsage implements store.TaskTagStore.CountUsage.
func (s *PostgresTaskTagStore) CountUsage(ctx context.Context, ownerID uuid.UUID) ([]stats.TagUsage, error) {
	query := `
		SELECT g.id, g.name, g.color, COUNT(k.id)
		FROM tags g
		JOIN task_tags tt ON tt.tag_id = g.id
		JOIN tasks k ON k.id = tt.task_id AND k.user_id = g.user_id AND k.is_deleted = FALSE
		WHERE g.user_id = $1
		GROUP BY g.id, g.name, g.color
	`
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count tag usage",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	usage := []stats.TagUsage{}
	for rows.Next() {
		var u stats.TagUsage
		if err := rows.Scan(&u.TagID, &u.Name, &u.Color, &u.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tag usage: %w", err)
		}
		usage = append(usage, u)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return usage, nil
}
