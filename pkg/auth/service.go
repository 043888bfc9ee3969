package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// LoginAuditor receives the outcome of every credential login attempt.
// Implementations must not fail the login on their own errors.
type LoginAuditor interface {
	LoginSucceeded(ctx context.Context, email string)
	LoginFailed(ctx context.Context, email string)
}

// Service implements credential registration and login.
type Service struct {
	store    IdentityStore
	codec    *TokenCodec
	resolver *Resolver
}

// NewService creates the authentication service.
func NewService(store IdentityStore, codec *TokenCodec, resolver *Resolver) *Service {
	return &Service{store: store, codec: codec, resolver: resolver}
}

// Register creates a new account with a bcrypt-hashed password. Returns
// ErrEmailTaken when the email is already registered.
func (s *Service) Register(ctx context.Context, name, email, password string, skills []string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email is required")
	}
	if password == "" {
		return nil, errors.New("password is required")
	}
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Skills:       skills,
		Role:         role,
	}
	created, err := s.store.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Login verifies credentials and issues a signed token for the account.
// Unknown emails and wrong passwords both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("login lookup: %w", err)
	}

	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return "", err
	}

	token, err := s.codec.Issue(user.Email)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// AuditedService decorates Service.Login with audit records. The original
// error is returned unchanged so callers see the same failure either way.
type AuditedService struct {
	*Service
	auditor LoginAuditor
}

// NewAuditedService wraps svc so every login attempt is recorded.
func NewAuditedService(svc *Service, auditor LoginAuditor) *AuditedService {
	return &AuditedService{Service: svc, auditor: auditor}
}

// Login verifies credentials and records the attempt outcome.
func (s *AuditedService) Login(ctx context.Context, email, password string) (string, error) {
	token, err := s.Service.Login(ctx, email, password)
	if err != nil {
		s.auditor.LoginFailed(ctx, email)
		return "", err
	}
	s.auditor.LoginSucceeded(ctx, email)
	return token, nil
}
