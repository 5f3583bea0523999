// ABOUTME: User-facing acceptance resolver for versioned consent documents
// ABOUTME: Memoizes the fetched acceptable and checks acceptance against the latest version
package acceptable

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/liquid-state/pip-go/pip"
)

// API is the slice of the provider surface the user-facing resolver needs.
// pip.Provider satisfies it.
type API interface {
	GetAcceptable(ctx context.Context, id string, languages []string, token string) (pip.AppUserAcceptable, error)
	SendAcceptance(ctx context.Context, versionID uuid.UUID, contentID *uuid.UUID, token string) error
}

// Acceptable resolves one consent document for one user session. The remote
// record is fetched once and memoized for the life of the resolver.
type Acceptable struct {
	id    string
	api   API
	token string

	mu     sync.Mutex
	cached *pip.AppUserAcceptable
}

// New binds a resolver to a document id and session token.
func New(id string, api API, token string) *Acceptable {
	return &Acceptable{id: id, api: api, token: token}
}

// Get fetches the user-facing acceptable record, localized server-side to the
// ranked language list. The first call's languages win; later calls return
// the memoized record.
func (a *Acceptable) Get(ctx context.Context, languages ...string) (pip.AppUserAcceptable, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cached == nil {
		fetched, err := a.api.GetAcceptable(ctx, a.id, languages, a.token)
		if err != nil {
			return pip.AppUserAcceptable{}, err
		}
		a.cached = &fetched
	}
	return *a.cached, nil
}

// IsAccepted reports whether the user's most recent acceptance covers the
// document's latest version. A missing acceptance record means false.
func (a *Acceptable) IsAccepted(ctx context.Context) (bool, error) {
	acceptable, err := a.Get(ctx)
	if err != nil {
		return false, err
	}
	if acceptable.LatestVersion == nil || acceptable.LatestAcceptance == nil {
		return false, nil
	}
	return acceptable.LatestVersion.Number == acceptable.LatestAcceptance.Version.Number, nil
}

// Accept records acceptance of the document's latest version. Acceptance is
// append-only; callers wanting idempotency should check IsAccepted first.
func (a *Acceptable) Accept(ctx context.Context) error {
	acceptable, err := a.Get(ctx)
	if err != nil {
		return err
	}
	if acceptable.LatestVersion == nil {
		return fmt.Errorf("acceptable %q has no version to accept", a.id)
	}
	return a.api.SendAcceptance(ctx, acceptable.LatestVersion.UUID, nil, a.token)
}
