package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskdeck-api/internal/api/shared"
	"github.com/phrazzld/taskdeck-api/internal/domain"
	"github.com/phrazzld/taskdeck-api/internal/platform/logger"
)

// noProjectParam selects tasks without a project in the project query
// parameter.
const noProjectParam = "none"

// getUserIDFromContext returns the owner placed on the context by the
// authentication middleware.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	return shared.GetUserID(r.Context())
}

// getPathUUID parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// handleUserID extracts the owner or writes a 401.
func handleUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

// handleUserIDAndPathUUID extracts the owner and a UUID path parameter,
// writing an error response if either is missing.
func handleUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Warn("invalid "+paramName,
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, pathID, true
}

// parseTaskFilter builds a TaskFilter from list query parameters. status
// accepts a comma-separated list or repeated keys; project accepts "none".
func parseTaskFilter(query url.Values) (domain.TaskFilter, error) {
	var filter domain.TaskFilter

	for _, raw := range query["status"] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				filter.Statuses = append(filter.Statuses, domain.TaskStatus(s))
			}
		}
	}

	if raw := query.Get("priority"); raw != "" {
		p := domain.TaskPriority(raw)
		filter.Priority = &p
	}

	switch raw := query.Get("project"); raw {
	case "":
	case noProjectParam:
		filter.NoProject = true
	default:
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, domain.NewValidationError("project", "has invalid format", domain.ErrInvalidID)
		}
		filter.ProjectID = &id
	}

	var err error
	if filter.IsStarred, err = parseBoolParam(query, "is_starred"); err != nil {
		return filter, err
	}
	if filter.IsDeleted, err = parseBoolParam(query, "is_deleted"); err != nil {
		return filter, err
	}

	filter.Search = strings.TrimSpace(query.Get("search"))
	filter.Ordering = query.Get("ordering")

	return filter, filter.Validate()
}

func parseBoolParam(query url.Values, name string) (*bool, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, domain.NewValidationError(name, "must be true or false", domain.ErrInvalidFormat)
	}
	return &v, nil
}
