package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAuditor struct {
	succeeded []string
	failed    []string
}

func (a *recordingAuditor) LoginSucceeded(_ context.Context, email string) {
	a.succeeded = append(a.succeeded, email)
}

func (a *recordingAuditor) LoginFailed(_ context.Context, email string) {
	a.failed = append(a.failed, email)
}

func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	codec := newTestCodec(t)
	resolver, err := NewResolver(store)
	require.NoError(t, err)
	return NewService(store, codec, resolver), store
}

func TestServiceRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Register(context.Background(), "Alice", "Alice@Example.com", "s3cret", []string{"go"}, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	token, err := svc.Login(context.Background(), "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestServiceRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret", nil, RoleDeveloper)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Other", "alice@example.com", "different", nil, RoleDeveloper)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestServiceRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name     string
		email    string
		password string
		role     Role
	}{
		{name: "missing email", email: "", password: "pw", role: RoleDeveloper},
		{name: "missing password", email: "a@b.com", password: "", role: RoleDeveloper},
		{name: "bad role", email: "a@b.com", password: "pw", role: Role("WIZARD")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), "x", tt.email, tt.password, nil, tt.role)
			assert.Error(t, err)
		})
	}
}

func TestServiceLoginInvalidCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret", nil, RoleDeveloper)
	require.NoError(t, err)

	// Unknown account and wrong password report the same error.
	_, err = svc.Login(context.Background(), "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuditedServiceLogin(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "s3cret", nil, RoleDeveloper)
	require.NoError(t, err)

	auditor := &recordingAuditor{}
	audited := NewAuditedService(svc, auditor)

	token, err := audited.Login(context.Background(), "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, []string{"alice@example.com"}, auditor.succeeded)

	_, err = audited.Login(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, []string{"alice@example.com"}, auditor.failed)
}
