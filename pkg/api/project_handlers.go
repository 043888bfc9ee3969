package api

import (
	"net/http"
	"time"

	"github.com/trackforge/tracker/pkg/httputil"
	"github.com/trackforge/tracker/pkg/projects"
)

type projectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	Status      string     `json:"status"`
}

func (req projectRequest) toInput() (projects.Input, bool) {
	status := projects.Status(req.Status)
	if req.Name == "" || !status.Valid() {
		return projects.Input{}, false
	}
	return projects.Input{
		Name:        req.Name,
		Description: req.Description,
		Deadline:    req.Deadline,
		Status:      status,
	}, true
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	input, ok := req.toInput()
	if !ok {
		httputil.WriteError(w, http.StatusBadRequest, "Project name and a valid status are required")
		return
	}
	created, err := s.deps.Projects.Create(r.Context(), input)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, created)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Projects.List(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, list)
}

func (s *Server) handleProjectsWithoutTasks(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Projects.WithoutTasks(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, list)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	project, err := s.deps.Projects.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, project)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req projectRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	input, ok := req.toInput()
	if !ok {
		httputil.WriteError(w, http.StatusBadRequest, "Project name and a valid status are required")
		return
	}
	updated, err := s.deps.Projects.Update(r.Context(), id, input)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.deps.Projects.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Project deleted successfully")
}
