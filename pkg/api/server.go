package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/trackforge/tracker/pkg/audit"
	"github.com/trackforge/tracker/pkg/auth"
	"github.com/trackforge/tracker/pkg/developers"
	"github.com/trackforge/tracker/pkg/httputil"
	"github.com/trackforge/tracker/pkg/middleware"
	"github.com/trackforge/tracker/pkg/observability"
	"github.com/trackforge/tracker/pkg/projects"
	"github.com/trackforge/tracker/pkg/sso"
	"github.com/trackforge/tracker/pkg/tasks"
	"github.com/trackforge/tracker/pkg/users"
)

// AuthService performs credential registration and login.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, name, email, password string, skills []string, role auth.Role) (*auth.User, error)
}

// AuditReader serves the audit trail read API. audit.DBLogger satisfies it.
type AuditReader interface {
	All(ctx context.Context, limit int) ([]audit.Record, error)
	ByEntityType(ctx context.Context, entityType string, limit int) ([]audit.Record, error)
	ByActor(ctx context.Context, actor string, limit int) ([]audit.Record, error)
}

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Log     *observability.Logger
	Metrics *observability.Metrics

	Auth       AuthService
	UserStore  auth.IdentityStore
	Users      *users.Service
	Developers *developers.Service
	Projects   *projects.Service
	Tasks      *tasks.Service
	Audit      AuditReader
	Recorder   *audit.Recorder

	// OIDC and Bridge are nil when federated login is disabled.
	OIDC   *sso.OIDCProvider
	Bridge *sso.Bridge

	// RateLimiter is nil when login throttling is disabled.
	RateLimiter *middleware.LoginRateLimiter

	TokenValidator middleware.TokenValidator
	Resolver       middleware.PrincipalResolver

	// TracingEnabled wraps the handler chain in OpenTelemetry HTTP spans.
	TracingEnabled bool
}

// Server is the HTTP API.
type Server struct {
	deps    Deps
	router  *mux.Router
	handler http.Handler
}

// NewServer builds the router and middleware chain.
func NewServer(deps Deps) *Server {
	s := &Server{deps: deps, router: mux.NewRouter()}
	s.routes()

	policy := middleware.NewPolicy(
		middleware.DefaultPublicPaths(),
		middleware.DefaultRules(),
		deps.Recorder,
		deps.Log,
		deps.Metrics,
	)
	policy.RegisterOwnership("task-assignee", deps.Tasks.IsAssignee)

	authn := middleware.NewRequestAuthenticator(deps.TokenValidator, deps.Resolver, deps.Log, deps.Metrics)

	// Innermost to outermost: policy -> authenticator -> rate limit ->
	// request log/metrics -> panic recovery -> request id.
	var handler http.Handler = policy.Middleware(s.router)
	handler = authn.Middleware(handler)
	if deps.RateLimiter != nil {
		handler = deps.RateLimiter.Middleware(handler)
	}
	if deps.Metrics != nil {
		handler = deps.Metrics.Middleware(handler)
	}
	handler = observability.PanicMiddleware(deps.Log)(handler)
	handler = httputil.RequestID(handler)
	if deps.TracingEnabled {
		handler = otelhttp.NewHandler(handler, "tracker")
	}
	s.handler = handler
	return s
}

// Handler returns the complete middleware-wrapped handler.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() {
	r := s.router

	r.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	if s.deps.OIDC != nil {
		r.HandleFunc("/oauth2/login", s.handleOAuth2Login).Methods(http.MethodGet)
		r.HandleFunc("/oauth2/callback", s.handleOAuth2Callback).Methods(http.MethodGet)
	}

	r.HandleFunc("/user/me", s.handleCurrentUser).Methods(http.MethodGet)
	r.HandleFunc("/user/update", s.handleUpdateSelf).Methods(http.MethodPut)
	r.HandleFunc("/user/delete", s.handleDeleteSelf).Methods(http.MethodDelete)
	r.HandleFunc("/user/all", s.handleListUsers).Methods(http.MethodGet)
	r.HandleFunc("/user/{id:[0-9]+}", s.handleDeleteUser).Methods(http.MethodDelete)
	r.HandleFunc("/user/{id:[0-9]+}/task", s.handleTasksByUser).Methods(http.MethodGet)

	r.HandleFunc("/api/developers", s.handleCreateDeveloper).Methods(http.MethodPost)
	r.HandleFunc("/api/developers", s.handleListDevelopers).Methods(http.MethodGet)
	r.HandleFunc("/api/developers/{id:[0-9]+}", s.handleGetDeveloper).Methods(http.MethodGet)
	r.HandleFunc("/api/developers/{id:[0-9]+}", s.handleUpdateDeveloper).Methods(http.MethodPut)
	r.HandleFunc("/api/developers/{id:[0-9]+}", s.handleDeleteDeveloper).Methods(http.MethodDelete)

	r.HandleFunc("/api/projects", s.handleCreateProject).Methods(http.MethodPost)
	r.HandleFunc("/api/projects", s.handleListProjects).Methods(http.MethodGet)
	r.HandleFunc("/api/projects/without-tasks", s.handleProjectsWithoutTasks).Methods(http.MethodGet)
	r.HandleFunc("/api/projects/{id:[0-9]+}", s.handleGetProject).Methods(http.MethodGet)
	r.HandleFunc("/api/projects/{id:[0-9]+}", s.handleUpdateProject).Methods(http.MethodPut)
	r.HandleFunc("/api/projects/{id:[0-9]+}", s.handleDeleteProject).Methods(http.MethodDelete)

	r.HandleFunc("/api/tasks", s.handleCreateTask).Methods(http.MethodPost)
	r.HandleFunc("/api/tasks", s.handleListTasks).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks/overdue", s.handleOverdueTasks).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks/status-counts", s.handleTaskStatusCounts).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks/by-project/{id:[0-9]+}", s.handleTasksByProject).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks/{id:[0-9]+}", s.handleGetTask).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks/{id:[0-9]+}", s.handleUpdateTask).Methods(http.MethodPut)
	r.HandleFunc("/api/tasks/{id:[0-9]+}", s.handleDeleteTask).Methods(http.MethodDelete)

	r.HandleFunc("/api/logs", s.handleAuditLogs).Methods(http.MethodGet)
	r.HandleFunc("/api/logs/entity/{entityType}", s.handleAuditLogsByEntity).Methods(http.MethodGet)
	r.HandleFunc("/api/logs/actor/{actor}", s.handleAuditLogsByActor).Methods(http.MethodGet)
}
