package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskdeck-api/internal/api/shared"
	"github.com/phrazzld/taskdeck-api/internal/domain"
	"github.com/phrazzld/taskdeck-api/internal/platform/logger"
	"github.com/phrazzld/taskdeck-api/internal/redact"
	"github.com/phrazzld/taskdeck-api/internal/service/tasks"
)

// TaskHandler serves the /api/tasks endpoints.
type TaskHandler struct {
	taskService tasks.Service
	logger      *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(taskService tasks.Service, logger *slog.Logger) *TaskHandler {
	if taskService == nil {
		panic("taskService cannot be nil for TaskHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// Routes mounts the task endpoints on r. Fixed paths are registered before
// {id} so that "statistics" and "views" are never parsed as task IDs.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Get("/", h.ListTasks)
	r.Post("/", h.CreateTask)
	r.Post("/batch_update", h.BatchUpdate)
	r.Get("/statistics", h.Statistics)
	r.Get("/views/{name}", h.SystemView)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetTask)
		r.Patch("/", h.UpdateTask)
		r.Delete("/", h.DeleteTask)
		r.Post("/complete", h.CompleteTask)
		r.Post("/toggle_star", h.ToggleStar)
		r.Post("/restore", h.RestoreTask)
		r.Delete("/permanent", h.PermanentDeleteTask)
		r.Put("/tags", h.SetTags)
		r.Get("/tags", h.ListTags)
	})
}

// decodeAndValidate reads a JSON body into req and runs struct validation,
// writing a 400 on failure.
func (h *TaskHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if err := shared.DecodeJSON(w, r, req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// ListTasks handles GET /api/tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	filter, err := parseTaskFilter(r.URL.Query())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	list, err := h.taskService.List(r.Context(), userID, filter)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskListResponse(list))
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	detail, err := h.taskService.Create(r.Context(), userID, req.ToInput(), req.TagIDs)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("task created", slog.String("task_id", detail.Task.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, NewTaggedTaskResponse(detail))
}

// GetTask handles GET /api/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	detail, err := h.taskService.Get(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskDetailResponse(detail))
}

// UpdateTask handles PATCH /api/tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	detail, err := h.taskService.Update(r.Context(), userID, taskID, req.TaskUpdate, req.TagIDs)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaggedTaskResponse(detail))
}

// DeleteTask handles DELETE /api/tasks/{id}, moving the task to the trash.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	if err := h.taskService.SoftDelete(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PermanentDeleteTask handles DELETE /api/tasks/{id}/permanent.
func (h *TaskHandler) PermanentDeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	if err := h.taskService.PermanentDelete(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CompleteTask handles POST /api/tasks/{id}/complete.
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	h.respondWithTransition(w, r, h.taskService.Complete)
}

// ToggleStar handles POST /api/tasks/{id}/toggle_star.
func (h *TaskHandler) ToggleStar(w http.ResponseWriter, r *http.Request) {
	h.respondWithTransition(w, r, h.taskService.ToggleStar)
}

// RestoreTask handles POST /api/tasks/{id}/restore.
func (h *TaskHandler) RestoreTask(w http.ResponseWriter, r *http.Request) {
	h.respondWithTransition(w, r, h.taskService.Restore)
}

type transitionFunc func(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

func (h *TaskHandler) respondWithTransition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	task, err := fn(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// SetTags handles PUT /api/tasks/{id}/tags.
func (h *TaskHandler) SetTags(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	var req SetTagsRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	tagIDs, err := h.taskService.SetTags(r.Context(), userID, taskID, req.TagIDs)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TagIDsResponse{TagIDs: nonNilIDs(tagIDs)})
}

// ListTags handles GET /api/tasks/{id}/tags.
func (h *TaskHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	tagIDs, err := h.taskService.ListTags(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TagIDsResponse{TagIDs: nonNilIDs(tagIDs)})
}

// BatchUpdate handles POST /api/tasks/batch_update.
func (h *TaskHandler) BatchUpdate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	var req BatchUpdateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	// An empty id list is reported before the updates are looked at.
	var update domain.BatchUpdate
	if len(req.TaskIDs) > 0 {
		var err error
		if update, err = domain.DecodeBatchUpdate(req.Updates); err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	}

	result, err := h.taskService.BatchUpdate(r.Context(), userID, req.TaskIDs, update)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BatchUpdateResponse{
		UpdatedCount: result.UpdatedCount,
		Tasks:        NewTaskListResponse(result.Tasks),
	})
}

// SystemView handles GET /api/tasks/views/{name}.
func (h *TaskHandler) SystemView(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	result, err := h.taskService.SystemView(r.Context(), userID, chi.URLParam(r, "name"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ViewResponse{
		Results: NewTaskListResponse(result.Results),
		Count:   result.Count,
	})
}

// Statistics handles GET /api/tasks/statistics.
func (h *TaskHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	snapshot, err := h.taskService.Statistics(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshot)
}
