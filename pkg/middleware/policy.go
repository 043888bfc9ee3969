package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/trackforge/tracker/pkg/auth"
	"github.com/trackforge/tracker/pkg/contextkeys"
	"github.com/trackforge/tracker/pkg/httputil"
	"github.com/trackforge/tracker/pkg/observability"
)

// DeniedRecorder receives authorization rejections for the audit trail.
type DeniedRecorder interface {
	AccessDenied(ctx context.Context, method, path string)
}

// OwnershipFunc reports whether the subject owns the entity identified by
// the request path.
type OwnershipFunc func(ctx context.Context, entityID int64, subject string) (bool, error)

// Rule grants access to one method and path pattern. Roles are allowed
// unconditionally; OwnerRoles additionally require the Ownership
// predicate to approve the subject for the {id} in the path.
type Rule struct {
	Method     string
	Pattern    string
	Roles      []auth.Role
	OwnerRoles []auth.Role
	Ownership  string
}

// Policy enforces the route authorization table. Public prefixes bypass
// authentication entirely; every other route requires a principal, and
// the first matching rule decides which roles may pass. Routes with no
// rule only require authentication.
type Policy struct {
	public     []string
	rules      []Rule
	predicates map[string]OwnershipFunc
	recorder   DeniedRecorder
	log        *observability.Logger
	metrics    *observability.Metrics
}

// NewPolicy creates a policy from the public allow-list and rule table.
func NewPolicy(public []string, rules []Rule, recorder DeniedRecorder, log *observability.Logger, metrics *observability.Metrics) *Policy {
	return &Policy{
		public:     public,
		rules:      rules,
		predicates: make(map[string]OwnershipFunc),
		recorder:   recorder,
		log:        log,
		metrics:    metrics,
	}
}

// RegisterOwnership binds a named ownership predicate referenced by rules.
func (p *Policy) RegisterOwnership(name string, fn OwnershipFunc) {
	p.predicates[name] = fn
}

// DefaultPublicPaths is the allow-list of unauthenticated prefixes.
func DefaultPublicPaths() []string {
	return []string{
		"/auth/register",
		"/auth/login",
		"/oauth2/",
		"/login.html",
		"/health",
		"/metrics",
		"/swagger-ui/",
		"/api-docs",
	}
}

// DefaultRules is the route authorization table.
func DefaultRules() []Rule {
	admin := []auth.Role{auth.RoleAdmin}
	managers := []auth.Role{auth.RoleAdmin, auth.RoleManager}
	everyone := []auth.Role{auth.RoleAdmin, auth.RoleManager, auth.RoleDeveloper, auth.RoleContractor}
	return []Rule{
		{Method: http.MethodPost, Pattern: "/api/projects", Roles: managers},
		{Method: http.MethodGet, Pattern: "/api/projects", Roles: everyone},
		{Method: http.MethodGet, Pattern: "/api/projects/{id}", Roles: []auth.Role{auth.RoleAdmin, auth.RoleManager, auth.RoleDeveloper}},
		{Method: http.MethodPut, Pattern: "/api/projects/{id}", Roles: managers},
		{Method: http.MethodDelete, Pattern: "/api/projects/{id}", Roles: managers},
		{Method: http.MethodGet, Pattern: "/user/all", Roles: admin},
		{Method: http.MethodDelete, Pattern: "/user/{id}", Roles: admin},
		{Method: http.MethodPut, Pattern: "/api/tasks/{id}", OwnerRoles: []auth.Role{auth.RoleDeveloper}, Ownership: "task-assignee"},
		{Method: http.MethodPost, Pattern: "/api/tasks", Roles: managers},
		{Method: http.MethodGet, Pattern: "/api/tasks", Roles: managers},
		{Method: http.MethodDelete, Pattern: "/api/tasks/{id}", Roles: managers},
	}
}

// Middleware returns the http middleware function.
func (p *Policy) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p.isPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		principal, _ := contextkeys.Principal(r.Context()).(*auth.Principal)
		if principal == nil {
			p.deny(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		rule, entityID, matched := p.match(r.Method, r.URL.Path)
		if !matched {
			// Authenticated is enough for unlisted routes.
			next.ServeHTTP(w, r)
			return
		}

		if hasRole(rule.Roles, principal.Role) {
			next.ServeHTTP(w, r)
			return
		}

		if hasRole(rule.OwnerRoles, principal.Role) && rule.Ownership != "" {
			fn, ok := p.predicates[rule.Ownership]
			if !ok {
				p.log.WithField("predicate", rule.Ownership).Error("unregistered ownership predicate")
				httputil.WriteError(w, http.StatusInternalServerError, "An unexpected error occurred")
				return
			}
			owns, err := fn(r.Context(), entityID, principal.Subject)
			if err != nil {
				p.log.WithError(err).Error("ownership check failed")
				httputil.WriteError(w, http.StatusInternalServerError, "An unexpected error occurred")
				return
			}
			if owns {
				next.ServeHTTP(w, r)
				return
			}
		}

		p.deny(w, r, http.StatusForbidden, "Access denied")
	})
}

func (p *Policy) deny(w http.ResponseWriter, r *http.Request, status int, message string) {
	p.recorder.AccessDenied(r.Context(), r.Method, r.URL.Path)
	if p.metrics != nil {
		p.metrics.AccessDeniedTotal.WithLabelValues(r.URL.Path).Inc()
	}
	httputil.WriteError(w, status, message)
}

func (p *Policy) isPublic(path string) bool {
	for _, prefix := range p.public {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// match finds the first rule for the method and path. The {id} segment,
// when present and numeric, is returned for ownership checks.
func (p *Policy) match(method, path string) (Rule, int64, bool) {
	for _, rule := range p.rules {
		if rule.Method != method {
			continue
		}
		if id, ok := matchPattern(rule.Pattern, path); ok {
			return rule, id, true
		}
	}
	return Rule{}, 0, false
}

// matchPattern matches any path segment against {id} so a rule still
// applies when the segment is not numeric; ownership checks then see id 0,
// which no entity carries, and deny.
func matchPattern(pattern, path string) (int64, bool) {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")
	if len(patternParts) != len(pathParts) {
		return 0, false
	}
	var id int64
	for i, part := range patternParts {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			if part == "{id}" {
				if parsed, err := strconv.ParseInt(pathParts[i], 10, 64); err == nil {
					id = parsed
				}
			}
			continue
		}
		if part != pathParts[i] {
			return 0, false
		}
	}
	return id, true
}

func hasRole(roles []auth.Role, role auth.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
