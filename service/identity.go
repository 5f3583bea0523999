// ABOUTME: Identity delegation for the PIP service facade
// ABOUTME: IdentityProvider interface plus an oauth2 TokenSource adapter
package service

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
)

// CredentialJWT is the credential key under which identity providers expose
// the PIP session token.
const CredentialJWT = "jwt"

// Identity is a snapshot of an identity provider's cached credentials.
type Identity struct {
	Name        string
	Credentials map[string]string
}

// JWT returns the cached session token, or "" when the provider holds none.
func (i Identity) JWT() string {
	return i.Credentials[CredentialJWT]
}

// IdentityProvider supplies cached credentials for the PIP service and
// receives updates when a new token is acquired. Identity must not trigger
// re-authentication; it exposes whatever the provider already holds.
type IdentityProvider interface {
	Identity(ctx context.Context) (Identity, error)
	Update(ctx context.Context, token string, credentials map[string]string) error
}

// TokenSourceProvider adapts an oauth2.TokenSource to the IdentityProvider
// interface. Updates replace the source with a static one holding the new
// token.
type TokenSourceProvider struct {
	mu     sync.Mutex
	source oauth2.TokenSource
}

// NewTokenSourceProvider wraps an oauth2 token source.
func NewTokenSourceProvider(source oauth2.TokenSource) *TokenSourceProvider {
	return &TokenSourceProvider{source: source}
}

// Identity exposes the source's current access token as the jwt credential.
func (p *TokenSourceProvider) Identity(ctx context.Context) (Identity, error) {
	p.mu.Lock()
	source := p.source
	p.mu.Unlock()
	if source == nil {
		return Identity{}, nil
	}
	token, err := source.Token()
	if err != nil {
		return Identity{}, fmt.Errorf("failed to read token source: %w", err)
	}
	return Identity{Credentials: map[string]string{CredentialJWT: token.AccessToken}}, nil
}

// Update swaps in a static source carrying the freshly acquired token.
func (p *TokenSourceProvider) Update(ctx context.Context, token string, credentials map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.source = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return nil
}

var _ IdentityProvider = (*TokenSourceProvider)(nil)
