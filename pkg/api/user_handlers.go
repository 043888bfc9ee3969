package api

import (
	"net/http"

	"github.com/trackforge/tracker/pkg/auth"
	"github.com/trackforge/tracker/pkg/contextkeys"
	"github.com/trackforge/tracker/pkg/httputil"
	"github.com/trackforge/tracker/pkg/users"
)

type updateUserRequest struct {
	Name   string   `json:"name"`
	Role   string   `json:"role"`
	Skills []string `json:"skills"`
}

// currentUser loads the account behind the authenticated subject. The
// policy layer guarantees a subject is present on these routes.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	subject := contextkeys.Subject(r.Context())
	if subject == "" {
		httputil.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	user, err := s.deps.UserStore.FindByEmail(r.Context(), subject)
	if err != nil {
		s.writeServiceError(w, err)
		return nil, false
	}
	return user, true
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, user)
}

func (s *Server) handleUpdateSelf(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Self-service updates cannot change the role.
	updated, err := s.deps.Users.Update(r.Context(), user.ID, users.UpdateInput{
		Name:   req.Name,
		Skills: req.Skills,
		Role:   user.Role,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteSelf(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	if err := s.deps.Users.Delete(r.Context(), user.ID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "User account deleted successfully")
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Users.List(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, list)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.deps.Users.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "User deleted successfully")
}

func (s *Server) handleTasksByUser(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := s.deps.Tasks.ByAssignee(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, list)
}
