package api

import (
	"net/http"

	"github.com/trackforge/tracker/pkg/auth"
	"github.com/trackforge/tracker/pkg/httputil"
)

type registerRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     string   `json:"role"`
	Skills   []string `json:"skills"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	role := auth.Role(req.Role)
	if req.Role == "" {
		role = auth.RoleContractor
	}
	if !role.Valid() {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid role")
		return
	}
	if req.Email == "" || req.Password == "" {
		httputil.WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	if _, err := s.deps.Auth.Register(r.Context(), req.Name, req.Email, req.Password, req.Skills, role); err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "User registered successfully")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := s.deps.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.TokensIssuedTotal.Inc()
	}
	httputil.WriteSuccess(w, http.StatusOK, loginResponse{Token: token})
}
