package api

import (
	"net/http"
	"strconv"

	"github.com/trackforge/tracker/pkg/developers"
	"github.com/trackforge/tracker/pkg/httputil"
)

type developerRequest struct {
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Skills []string `json:"skills"`
}

func (req developerRequest) toInput() (developers.Input, bool) {
	if req.Name == "" || req.Email == "" || len(req.Skills) == 0 {
		return developers.Input{}, false
	}
	return developers.Input{
		Name:   req.Name,
		Email:  req.Email,
		Skills: req.Skills,
	}, true
}

func (s *Server) handleCreateDeveloper(w http.ResponseWriter, r *http.Request) {
	var req developerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	input, ok := req.toInput()
	if !ok {
		httputil.WriteError(w, http.StatusBadRequest, "Developer name, email and at least one skill are required")
		return
	}
	created, err := s.deps.Developers.Create(r.Context(), input)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, created)
}

func (s *Server) handleListDevelopers(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", developers.DefaultPageSize)
	result, err := s.deps.Developers.Page(r.Context(), page, size)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, result)
}

func (s *Server) handleGetDeveloper(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	developer, err := s.deps.Developers.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, developer)
}

func (s *Server) handleUpdateDeveloper(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req developerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	input, ok := req.toInput()
	if !ok {
		httputil.WriteError(w, http.StatusBadRequest, "Developer name, email and at least one skill are required")
		return
	}
	updated, err := s.deps.Developers.Update(r.Context(), id, input)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteDeveloper(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.deps.Developers.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Developer deleted successfully")
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
