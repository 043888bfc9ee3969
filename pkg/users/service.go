package users

import (
	"context"
	"fmt"

	"github.com/trackforge/tracker/pkg/audit"
	"github.com/trackforge/tracker/pkg/auth"
)

// AuditRecorder receives entity mutation events.
type AuditRecorder interface {
	Record(ctx context.Context, action audit.ActionType, entityType string, args ...any)
}

// Service manages user accounts. Mutations invalidate the principal
// resolver so role changes take effect on the next request, and are
// recorded in the audit trail after they succeed.
type Service struct {
	store    auth.IdentityStore
	resolver *auth.Resolver
	recorder AuditRecorder
}

// NewService creates the user service.
func NewService(store auth.IdentityStore, resolver *auth.Resolver, recorder AuditRecorder) *Service {
	return &Service{store: store, resolver: resolver, recorder: recorder}
}

// Get returns one user by id.
func (s *Service) Get(ctx context.Context, id int64) (*auth.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, audit.ActionGet, "User", id, user)
	return user, nil
}

// List returns every user.
func (s *Service) List(ctx context.Context) ([]*auth.User, error) {
	return s.store.List(ctx)
}

// UpdateInput carries the mutable fields of a user.
type UpdateInput struct {
	Name   string
	Skills []string
	Role   auth.Role
}

// Update modifies a user's name, skills and role. Email is immutable: it
// is the token subject, and changing it would orphan issued tokens.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*auth.User, error) {
	if !in.Role.Valid() {
		return nil, fmt.Errorf("invalid role %q", in.Role)
	}

	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = in.Name
	existing.Skills = in.Skills
	existing.Role = in.Role

	updated, err := s.store.Update(ctx, existing)
	if err != nil {
		return nil, err
	}

	s.resolver.Invalidate(updated.Email)
	s.recorder.Record(ctx, audit.ActionUpdate, "User", id, updated)
	return updated, nil
}

// Delete removes a user.
func (s *Service) Delete(ctx context.Context, id int64) error {
	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.resolver.Invalidate(existing.Email)
	s.recorder.Record(ctx, audit.ActionDelete, "User", id, existing)
	return nil
}
