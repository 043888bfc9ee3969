package auth

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrPrincipalNotFound indicates the token subject has no backing account.
// The transport layer reports this as 401, indistinguishable from any other
// authentication failure, so it never leaks account existence.
var ErrPrincipalNotFound = errors.New("principal not found")

const defaultResolverCacheSize = 1024

// Resolver converts a token subject into an authorization Principal by
// loading the account from the IdentityStore and mapping its role to a
// capability. A small LRU cache sits in front of the store; mutating
// user operations must call Invalidate.
type Resolver struct {
	store IdentityStore
	cache *lru.Cache[string, *Principal]
}

// NewResolver creates a resolver backed by store.
func NewResolver(store IdentityStore) (*Resolver, error) {
	cache, err := lru.New[string, *Principal](defaultResolverCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create resolver cache: %w", err)
	}
	return &Resolver{store: store, cache: cache}, nil
}

// Resolve maps a subject to its Principal. Returns ErrPrincipalNotFound when
// no account exists for the subject.
func (r *Resolver) Resolve(ctx context.Context, subject string) (*Principal, error) {
	if p, ok := r.cache.Get(subject); ok {
		return p, nil
	}

	user, err := r.store.FindByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("resolve principal: %w", err)
	}

	p := NewPrincipal(user.Email, user.Role)
	r.cache.Add(subject, p)
	return p, nil
}

// Invalidate drops a subject from the cache. Called after any mutation of
// the underlying account.
func (r *Resolver) Invalidate(subject string) {
	r.cache.Remove(subject)
}
