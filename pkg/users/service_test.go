package users

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackforge/tracker/pkg/audit"
	"github.com/trackforge/tracker/pkg/auth"
	"github.com/trackforge/tracker/pkg/contextkeys"
	"github.com/trackforge/tracker/pkg/observability"
)

func newTestService(t *testing.T) (*Service, *MemoryStore, *audit.MemoryLogger) {
	t.Helper()
	store := NewMemoryStore()
	resolver, err := auth.NewResolver(store)
	require.NoError(t, err)
	sink := audit.NewMemoryLogger()
	log := observability.NewLogger(observability.ErrorLevel, io.Discard)
	recorder := audit.NewRecorder(sink, log, nil)
	return NewService(store, resolver, recorder), store, sink
}

func seedUser(t *testing.T, store *MemoryStore, email string, role auth.Role) *auth.User {
	t.Helper()
	u, err := store.Create(context.Background(), &auth.User{
		Name: "Seed", Email: email, PasswordHash: "hash", Role: role,
	})
	require.NoError(t, err)
	return u
}

func TestServiceGetRecordsAudit(t *testing.T) {
	svc, store, sink := newTestService(t)
	seeded := seedUser(t, store, "alice@example.com", auth.RoleManager)

	ctx := contextkeys.WithSubject(context.Background(), "admin@example.com")
	got, err := svc.Get(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	records := sink.Records()
	require.Len(t, records, 1)
	assert.Equal(t, audit.ActionGet, records[0].ActionType)
	assert.Equal(t, "User", records[0].EntityType)
	assert.Equal(t, "admin@example.com", records[0].Actor)
}

func TestServiceUpdateInvalidatesResolver(t *testing.T) {
	svc, store, sink := newTestService(t)
	seeded := seedUser(t, store, "dev@example.com", auth.RoleDeveloper)

	resolver, err := auth.NewResolver(store)
	require.NoError(t, err)
	svc.resolver = resolver

	// Prime the cache with the old role.
	p, err := resolver.Resolve(context.Background(), "dev@example.com")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleDeveloper, p.Role)

	updated, err := svc.Update(context.Background(), seeded.ID, UpdateInput{
		Name: "Promoted", Skills: []string{"go"}, Role: auth.RoleManager,
	})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleManager, updated.Role)

	// Role change is visible immediately, not after cache expiry.
	p, err = resolver.Resolve(context.Background(), "dev@example.com")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleManager, p.Role)

	records := sink.Records()
	require.Len(t, records, 1)
	assert.Equal(t, audit.ActionUpdate, records[0].ActionType)
}

func TestServiceUpdateRejectsBadRole(t *testing.T) {
	svc, store, _ := newTestService(t)
	seeded := seedUser(t, store, "x@example.com", auth.RoleDeveloper)

	_, err := svc.Update(context.Background(), seeded.ID, UpdateInput{Name: "x", Role: auth.Role("NOPE")})
	assert.Error(t, err)
}

func TestServiceDelete(t *testing.T) {
	svc, store, sink := newTestService(t)
	seeded := seedUser(t, store, "gone@example.com", auth.RoleContractor)

	require.NoError(t, svc.Delete(context.Background(), seeded.ID))

	_, err := store.FindByID(context.Background(), seeded.ID)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	records := sink.Records()
	require.Len(t, records, 1)
	assert.Equal(t, audit.ActionDelete, records[0].ActionType)
	assert.Equal(t, audit.SystemActor, records[0].Actor)
}

func TestServiceDeleteMissing(t *testing.T) {
	svc, _, sink := newTestService(t)

	err := svc.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
	assert.Empty(t, sink.Records(), "failed operations must not be audited")
}
