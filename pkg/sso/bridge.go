package sso

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/trackforge/tracker/pkg/auth"
)

// TokenIssuer mints an application token for a subject. auth.TokenCodec
// satisfies it.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// Bridge turns a verified federated identity into a local account and an
// application token. First federated login auto-provisions the account.
type Bridge struct {
	store  auth.IdentityStore
	issuer TokenIssuer
	log    *logrus.Entry
}

// NewBridge creates the federated login bridge.
func NewBridge(store auth.IdentityStore, issuer TokenIssuer) *Bridge {
	return &Bridge{
		store:  store,
		issuer: issuer,
		log:    logrus.WithField("component", "sso-bridge"),
	}
}

// Login resolves the identity to a local account, creating one on first
// login, and issues an application token for it.
func (b *Bridge) Login(ctx context.Context, identity *Identity) (string, *auth.User, error) {
	user, err := b.ensureAccount(ctx, identity)
	if err != nil {
		return "", nil, err
	}

	token, err := b.issuer.Issue(user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

// ensureAccount finds or provisions the local account for the identity.
// Concurrent first logins race on the insert; the loser of the unique
// email constraint fetches the winner's row, so exactly one account ever
// exists per email.
func (b *Bridge) ensureAccount(ctx context.Context, identity *Identity) (*auth.User, error) {
	user, err := b.store.FindByEmail(ctx, identity.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, auth.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup federated account: %w", err)
	}

	name := identity.Name
	if name == "" {
		name = identity.Email
	}
	created, err := b.store.Create(ctx, &auth.User{
		Name:         name,
		Email:        identity.Email,
		PasswordHash: auth.FederatedPasswordMarker,
		Role:         auth.RoleContractor,
	})
	if err == nil {
		b.log.WithField("email", identity.Email).Info("provisioned federated account")
		return created, nil
	}
	if !errors.Is(err, auth.ErrEmailTaken) {
		return nil, fmt.Errorf("provision federated account: %w", err)
	}

	// Lost the provisioning race; the account now exists.
	user, err = b.store.FindByEmail(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("fetch federated account after conflict: %w", err)
	}
	return user, nil
}
