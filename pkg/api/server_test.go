package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackforge/tracker/pkg/audit"
	"github.com/trackforge/tracker/pkg/auth"
	"github.com/trackforge/tracker/pkg/developers"
	"github.com/trackforge/tracker/pkg/httputil"
	"github.com/trackforge/tracker/pkg/observability"
	"github.com/trackforge/tracker/pkg/projects"
	"github.com/trackforge/tracker/pkg/tasks"
	"github.com/trackforge/tracker/pkg/users"
)

// memoryAuditReader serves the audit read API from the in-memory sink.
type memoryAuditReader struct {
	sink *audit.MemoryLogger
}

func (m *memoryAuditReader) All(_ context.Context, limit int) ([]audit.Record, error) {
	records := m.sink.Records()
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (m *memoryAuditReader) ByEntityType(_ context.Context, entityType string, limit int) ([]audit.Record, error) {
	var out []audit.Record
	for _, r := range m.sink.Records() {
		if r.EntityType == entityType && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryAuditReader) ByActor(_ context.Context, actor string, limit int) ([]audit.Record, error) {
	var out []audit.Record
	for _, r := range m.sink.Records() {
		if r.Actor == actor && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

type apiFixture struct {
	server *Server
	codec  *auth.TokenCodec
	store  *users.MemoryStore
	sink   *audit.MemoryLogger
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	log := observability.NewLogger(observability.ErrorLevel, io.Discard)
	userStore := users.NewMemoryStore()
	sink := audit.NewMemoryLogger()
	recorder := audit.NewRecorder(sink, log, nil)

	codec, err := auth.NewTokenCodec([]byte("test-secret"), auth.DefaultTokenTTL)
	require.NoError(t, err)
	resolver, err := auth.NewResolver(userStore)
	require.NoError(t, err)

	authSvc := auth.NewAuditedService(auth.NewService(userStore, codec, resolver), recorder)
	userSvc := users.NewService(userStore, resolver, recorder)

	projectStore := projects.NewMemoryStore()
	projectSvc := projects.NewService(projectStore, recorder)

	taskStore := tasks.NewMemoryStore()
	taskSvc := tasks.NewService(taskStore, projectStore, userStore, recorder)

	developerStore := developers.NewMemoryStore()
	developerSvc := developers.NewService(developerStore, recorder)

	server := NewServer(Deps{
		Log:            log,
		Auth:           authSvc,
		UserStore:      userStore,
		Users:          userSvc,
		Developers:     developerSvc,
		Projects:       projectSvc,
		Tasks:          taskSvc,
		Audit:          &memoryAuditReader{sink: sink},
		Recorder:       recorder,
		TokenValidator: codec,
		Resolver:       resolver,
	})

	return &apiFixture{server: server, codec: codec, store: userStore, sink: sink}
}

func (f *apiFixture) seedUser(t *testing.T, email, password string, role auth.Role) *auth.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	u, err := f.store.Create(context.Background(), &auth.User{
		Name: "Seed", Email: email, PasswordHash: hash, Role: role,
	})
	require.NoError(t, err)
	return u
}

func (f *apiFixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data loginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.Token)
	return envelope.Data.Token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegisterAndLogin(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/auth/register", "",
		`{"name":"Alice","email":"alice@example.com","password":"s3cret","role":"MANAGER","skills":["go"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	token := f.login(t, "alice@example.com", "s3cret")

	rec = f.do(t, http.MethodGet, "/user/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice@example.com")
	assert.NotContains(t, rec.Body.String(), "s3cret")

	// Successful login was audited.
	var sawSuccess bool
	for _, r := range f.sink.Records() {
		if r.ActionType == audit.ActionLoginSuccess && r.Actor == "alice@example.com" {
			sawSuccess = true
		}
	}
	assert.True(t, sawSuccess)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "alice@example.com", "pw", auth.RoleDeveloper)

	rec := f.do(t, http.MethodPost, "/auth/register", "",
		`{"name":"Other","email":"alice@example.com","password":"pw2","role":"DEVELOPER"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginFailureIsAuditedAndUniform(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "alice@example.com", "s3cret", auth.RoleManager)

	// Unknown account and wrong password return identical responses.
	recUnknown := f.do(t, http.MethodPost, "/auth/login", "", `{"email":"ghost@example.com","password":"x"}`)
	recWrong := f.do(t, http.MethodPost, "/auth/login", "", `{"email":"alice@example.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, recUnknown.Code)
	assert.Equal(t, http.StatusUnauthorized, recWrong.Code)
	assert.Equal(t, decodeError(t, recUnknown).Message, decodeError(t, recWrong).Message)

	var failures []string
	for _, r := range f.sink.Records() {
		if r.ActionType == audit.ActionLoginFailed {
			failures = append(failures, r.Actor)
		}
	}
	assert.Equal(t, []string{"ghost@example.com", "alice@example.com"}, failures)
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/projects", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", decodeError(t, rec).Message)
}

func TestExpiredToken(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "alice@example.com", "pw", auth.RoleManager)

	// Same secret as the fixture, minted an hour in the past so the token
	// is already outside its validity window.
	expiredCodec, err := auth.NewTokenCodec([]byte("test-secret"), auth.DefaultTokenTTL,
		auth.WithTimeSource(func() time.Time { return time.Now().Add(-time.Hour) }))
	require.NoError(t, err)
	token, err := expiredCodec.Issue("alice@example.com")
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/projects", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token expired", decodeError(t, rec).Message)
}

func TestInvalidToken(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/projects", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", decodeError(t, rec).Message)
}

func TestTokenForDeletedAccount(t *testing.T) {
	f := newAPIFixture(t)

	token, err := f.codec.Issue("deleted@example.com")
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/projects", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", decodeError(t, rec).Message)
}

func TestForbiddenRouteIsAudited(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "dev@example.com", "pw", auth.RoleDeveloper)
	token := f.login(t, "dev@example.com", "pw")
	f.sink.Reset()

	rec := f.do(t, http.MethodPost, "/api/projects", token, `{"name":"X","status":"PLANNED"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied", decodeError(t, rec).Message)

	records := f.sink.Records()
	require.Len(t, records, 1)
	assert.Equal(t, audit.ActionAccessDenied, records[0].ActionType)
	assert.Equal(t, "dev@example.com", records[0].Actor)
	assert.Equal(t, "/api/projects", records[0].Payload["path"])
}

func TestProjectCRUDThroughAPI(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "mgr@example.com", "pw", auth.RoleManager)
	token := f.login(t, "mgr@example.com", "pw")

	rec := f.do(t, http.MethodPost, "/api/projects", token,
		`{"name":"Rollout","description":"Q4","status":"PLANNED"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var envelope struct {
		Data projects.Project `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	id := envelope.Data.ID
	require.NotZero(t, id)

	rec = f.do(t, http.MethodGet, "/api/projects", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rollout")

	rec = f.do(t, http.MethodDelete, "/api/projects/404", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/projects/1", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeveloperDirectoryThroughAPI(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "dev@example.com", "pw", auth.RoleDeveloper)
	token := f.login(t, "dev@example.com", "pw")

	for _, body := range []string{
		`{"name":"Dana","email":"dana@example.com","skills":["go"]}`,
		`{"name":"Eli","email":"eli@example.com","skills":["sql"]}`,
		`{"name":"Fin","email":"fin@example.com","skills":["go","sql"]}`,
	} {
		rec := f.do(t, http.MethodPost, "/api/developers", token, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := f.do(t, http.MethodPost, "/api/developers", token,
		`{"name":"Dupe","email":"dana@example.com","skills":["go"]}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/developers?page=1&size=2", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data developers.PageResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.CurrentPage)
	assert.Equal(t, int64(3), envelope.Data.TotalItems)
	assert.Equal(t, 2, envelope.Data.TotalPages)
	require.Len(t, envelope.Data.Developers, 1)
	assert.Equal(t, "Fin", envelope.Data.Developers[0].Name)

	rec = f.do(t, http.MethodGet, "/api/developers/404", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/developers", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTaskOwnershipThroughAPI(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "mgr@example.com", "pw", auth.RoleManager)
	assignee := f.seedUser(t, "dev@example.com", "pw", auth.RoleDeveloper)
	f.seedUser(t, "other@example.com", "pw", auth.RoleDeveloper)

	mgrToken := f.login(t, "mgr@example.com", "pw")

	rec := f.do(t, http.MethodPost, "/api/projects", mgrToken, `{"name":"P","status":"PLANNED"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/tasks", mgrToken,
		`{"title":"T","status":"PENDING","project_id":1,"assignee_id":`+jsonInt(assignee.ID)+`}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	update := `{"title":"T","status":"IN_PROGRESS","project_id":1,"assignee_id":` + jsonInt(assignee.ID) + `}`

	// The assignee may update their own task.
	devToken := f.login(t, "dev@example.com", "pw")
	rec = f.do(t, http.MethodPut, "/api/tasks/1", devToken, update)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Another developer may not.
	otherToken := f.login(t, "other@example.com", "pw")
	rec = f.do(t, http.MethodPut, "/api/tasks/1", otherToken, update)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Managers are not granted task updates either.
	rec = f.do(t, http.MethodPut, "/api/tasks/1", mgrToken, update)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuditReadAPI(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "mgr@example.com", "pw", auth.RoleManager)
	token := f.login(t, "mgr@example.com", "pw")

	rec := f.do(t, http.MethodPost, "/api/projects", token, `{"name":"P","status":"PLANNED"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/logs/entity/Project", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "CREATE")

	rec = f.do(t, http.MethodGet, "/api/logs/actor/mgr@example.com", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mgr@example.com")
}

func TestAdminUserManagement(t *testing.T) {
	f := newAPIFixture(t)
	f.seedUser(t, "admin@example.com", "pw", auth.RoleAdmin)
	victim := f.seedUser(t, "victim@example.com", "pw", auth.RoleContractor)
	token := f.login(t, "admin@example.com", "pw")

	rec := f.do(t, http.MethodGet, "/user/all", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "victim@example.com")

	rec = f.do(t, http.MethodDelete, "/user/"+jsonInt(victim.ID), token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/user/all", token, "")
	assert.NotContains(t, rec.Body.String(), "victim@example.com")
}

func jsonInt(id int64) string {
	return strconv.FormatInt(id, 10)
}
