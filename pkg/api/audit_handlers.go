package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/trackforge/tracker/pkg/httputil"
)

const defaultAuditLimit = 100

func auditLimit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 1000 {
			return n
		}
	}
	return defaultAuditLimit
}

func (s *Server) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	records, err := s.deps.Audit.All(r.Context(), auditLimit(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, records)
}

func (s *Server) handleAuditLogsByEntity(w http.ResponseWriter, r *http.Request) {
	entityType := mux.Vars(r)["entityType"]
	records, err := s.deps.Audit.ByEntityType(r.Context(), entityType, auditLimit(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, records)
}

func (s *Server) handleAuditLogsByActor(w http.ResponseWriter, r *http.Request) {
	actor := mux.Vars(r)["actor"]
	records, err := s.deps.Audit.ByActor(r.Context(), actor, auditLimit(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, records)
}
