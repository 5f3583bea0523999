// ABOUTME: Facade over the PIP provider with cached token resolution
// ABOUTME: Injects the session token into every call and exposes a raw escape hatch
package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/liquid-state/pip-go/acceptable"
	"github.com/liquid-state/pip-go/form"
	"github.com/liquid-state/pip-go/pip"
)

// Options configures a Service. Token resolution precedence is: previously
// resolved token, then the static Token, then the Identity delegate's cached
// credential. A static token always beats the delegate.
type Options struct {
	// Token is a statically supplied session token.
	Token string

	// Identity is an optional identity delegate holding cached credentials.
	Identity IdentityProvider

	// HTTPClient is used by Raw. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Service exposes the PIP API as a single cohesive surface bound to one
// user session. The resolved token is cached for the service's lifetime;
// construct a new Service to force re-resolution.
type Service struct {
	pip  pip.Provider
	opts Options
	http *http.Client

	mu    sync.Mutex
	token string // written once, on first successful resolution
}

// New creates a Service over a provider.
func New(provider pip.Provider, opts Options) *Service {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Service{pip: provider, opts: opts, http: httpClient}
}

// AuthenticateViaCode exchanges a one-time code for a session token, caches
// it, and propagates it to the identity delegate when one is configured.
func (s *Service) AuthenticateViaCode(ctx context.Context, code string) (string, error) {
	token, err := s.pip.ValidateCode(ctx, code)
	if err != nil {
		return "", err
	}
	if err := s.updateIdentity(ctx, token); err != nil {
		return "", err
	}
	return token, nil
}

// ConsumeCode registers a one-time code against a known app user.
func (s *Service) ConsumeCode(ctx context.Context, code, userID string) error {
	token, err := s.resolveToken(ctx)
	if err != nil {
		return err
	}
	return s.pip.ConsumeCode(ctx, code, userID, token)
}

// Register creates a user record from the current token alone.
func (s *Service) Register(ctx context.Context) error {
	token, err := s.resolveToken(ctx)
	if err != nil {
		return err
	}
	return s.pip.Register(ctx, token)
}

// GetUser resolves the app-scoped user record for a subject identifier.
func (s *Service) GetUser(ctx context.Context, sub string) (pip.User, error) {
	token, err := s.resolveToken(ctx)
	if err != nil {
		return pip.User{}, err
	}
	page, err := s.pip.GetUser(ctx, sub, token)
	if err != nil {
		return pip.User{}, err
	}
	if len(page.Results) == 0 {
		return pip.User{}, fmt.Errorf("user %q: %w", sub, pip.ErrNotFound)
	}
	return page.Results[0], nil
}

// GetUserData fetches the latest object of a data type for the current user.
// includeUnowned widens the lookup to global objects, which is how shared
// default content is delivered.
func (s *Service) GetUserData(ctx context.Context, dataType string, includeUnowned bool) (pip.Object, error) {
	token, err := s.resolveToken(ctx)
	if err != nil {
		return pip.Object{}, err
	}
	objectType, err := s.pip.GetObjectType(ctx, dataType, token)
	if err != nil {
		return pip.Object{}, err
	}
	return s.pip.GetLatestObjectForType(ctx, objectType, token, includeUnowned)
}

// PutUserData appends a new version of the user's data under a type.
func (s *Service) PutUserData(ctx context.Context, dataType string, data any, status string) (pip.Object, error) {
	token, err := s.resolveToken(ctx)
	if err != nil {
		return pip.Object{}, err
	}
	objectType, err := s.pip.GetObjectType(ctx, dataType, token)
	if err != nil {
		return pip.Object{}, err
	}
	return s.pip.UpdateObject(ctx, objectType, data, status, token)
}

// EditUserData replaces an existing object in place.
func (s *Service) EditUserData(ctx context.Context, existing pip.Object, data any, status string) (pip.Object, error) {
	token, err := s.resolveToken(ctx)
	if err != nil {
		return pip.Object{}, err
	}
	return s.pip.EditObject(ctx, existing, data, status, token)
}

// DeleteUserData removes an existing object.
func (s *Service) DeleteUserData(ctx context.Context, existing pip.Object) (pip.Object, error) {
	token, err := s.resolveToken(ctx)
	if err != nil {
		return pip.Object{}, err
	}
	return s.pip.DeleteObject(ctx, existing, token)
}

// Form binds a form composer to the given form type id and the current token.
func (s *Service) Form(ctx context.Context, id string) (*form.Form, error) {
	token, err := s.resolveToken(ctx)
	if err != nil {
		return nil, err
	}
	return form.New(id, s.pip, token), nil
}

// Acceptable binds an acceptance resolver to the given document id and the
// current token.
func (s *Service) Acceptable(ctx context.Context, id string) (*acceptable.Acceptable, error) {
	token, err := s.resolveToken(ctx)
	if err != nil {
		return nil, err
	}
	return acceptable.New(id, s.pip, token), nil
}

// Raw performs an arbitrary request against the backend, injecting the
// Authorization header when it is missing. Token resolution failure is
// deliberately swallowed here; the request proceeds unauthenticated.
func (s *Service) Raw(ctx context.Context, req *http.Request) (*http.Response, error) {
	if token, err := s.resolveToken(ctx); err == nil && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.http.Do(req.WithContext(ctx))
}

// updateIdentity records a freshly acquired token, both locally and with the
// identity delegate.
func (s *Service) updateIdentity(ctx context.Context, token string) error {
	if s.opts.Identity != nil {
		credentials := map[string]string{CredentialJWT: token}
		if err := s.opts.Identity.Update(ctx, token, credentials); err != nil {
			return fmt.Errorf("failed to update identity provider: %w", err)
		}
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// resolveToken applies the precedence order. A delegate-supplied credential
// is returned without being cached locally; the delegate owns its caching.
func (s *Service) resolveToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" {
		return s.token, nil
	}
	if s.opts.Token != "" {
		s.token = s.opts.Token
		return s.token, nil
	}
	if s.opts.Identity != nil {
		identity, err := s.opts.Identity.Identity(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to read identity delegate: %w", err)
		}
		if jwt := identity.JWT(); jwt != "" {
			return jwt, nil
		}
	}
	return "", pip.ErrNoAuth
}
