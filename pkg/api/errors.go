package api

import (
	"errors"
	"net/http"

	"github.com/trackforge/tracker/pkg/auth"
	"github.com/trackforge/tracker/pkg/developers"
	"github.com/trackforge/tracker/pkg/httputil"
	"github.com/trackforge/tracker/pkg/projects"
	"github.com/trackforge/tracker/pkg/tasks"
)

// writeServiceError maps domain errors onto HTTP responses. Anything
// unrecognized is a 500 with a generic message so internals never leak.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		httputil.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, auth.ErrEmailTaken):
		httputil.WriteError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, auth.ErrUserNotFound):
		httputil.WriteError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, developers.ErrDeveloperNotFound):
		httputil.WriteError(w, http.StatusNotFound, "Developer not found")
	case errors.Is(err, developers.ErrEmailTaken):
		httputil.WriteError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, projects.ErrProjectNotFound):
		httputil.WriteError(w, http.StatusNotFound, "Project not found")
	case errors.Is(err, tasks.ErrTaskNotFound):
		httputil.WriteError(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, tasks.ErrInvalidSortField):
		httputil.WriteError(w, http.StatusBadRequest, "Invalid sort field")
	case errors.Is(err, httputil.ErrInvalidBody):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		s.deps.Log.WithError(err).Error("request failed")
		httputil.WriteError(w, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
