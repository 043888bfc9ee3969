package api

import (
	"net/http"
	"time"

	"github.com/trackforge/tracker/pkg/httputil"
	"github.com/trackforge/tracker/pkg/tasks"
)

type taskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	ProjectID   int64      `json:"project_id"`
	AssigneeID  *int64     `json:"assignee_id"`
}

func (req taskRequest) toInput() (tasks.Input, bool) {
	status := tasks.Status(req.Status)
	if req.Title == "" || !status.Valid() || req.ProjectID == 0 {
		return tasks.Input{}, false
	}
	return tasks.Input{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		DueDate:     req.DueDate,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
	}, true
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	input, ok := req.toInput()
	if !ok {
		httputil.WriteError(w, http.StatusBadRequest, "Task title, a valid status and a project id are required")
		return
	}
	created, err := s.deps.Tasks.Create(r.Context(), input)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, created)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	sortBy := tasks.SortField(r.URL.Query().Get("sortBy"))
	list, err := s.deps.Tasks.List(r.Context(), sortBy)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, list)
}

func (s *Server) handleOverdueTasks(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Tasks.Overdue(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, list)
}

func (s *Server) handleTaskStatusCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.deps.Tasks.CountsByStatus(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, counts)
}

func (s *Server) handleTasksByProject(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := s.deps.Tasks.ByProject(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, list)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	task, err := s.deps.Tasks.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req taskRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	input, ok := req.toInput()
	if !ok {
		httputil.WriteError(w, http.StatusBadRequest, "Task title, a valid status and a project id are required")
		return
	}
	updated, err := s.deps.Tasks.Update(r.Context(), id, input)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.deps.Tasks.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Task deleted successfully")
}
