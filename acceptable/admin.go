// ABOUTME: Admin-side acceptance resolver with ranked language fallback
// ABOUTME: Selects the ready version, picks localized content, and walks acceptance history
package acceptable

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/liquid-state/pip-go/pip"
)

// AdminAPI is the slice of the admin client surface the admin resolver
// needs. *pip.AdminClient satisfies it.
type AdminAPI interface {
	GetAcceptableItem(ctx context.Context, id string) (pip.AcceptableItem, error)
	GetAcceptable(ctx context.Context, id string, onlyReady bool) (*pip.AcceptableVersion, error)
	CurrentUserHasAccepted(ctx context.Context, version pip.AcceptableVersion) (bool, error)
	SendAcceptance(ctx context.Context, versionID uuid.UUID, contentID *uuid.UUID) error
}

// Admin resolves one consent document through the admin API. The item and
// the selected version are each fetched once and memoized.
type Admin struct {
	id  string
	api AdminAPI

	mu            sync.Mutex
	item          *pip.AcceptableItem
	version       *pip.AcceptableVersion
	versionLoaded bool
}

// NewAdmin binds an admin resolver to a document id.
func NewAdmin(id string, api AdminAPI) *Admin {
	return &Admin{id: id, api: api}
}

// Item fetches the acceptable document record, memoized.
func (a *Admin) Item(ctx context.Context) (pip.AcceptableItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.item == nil {
		item, err := a.api.GetAcceptableItem(ctx, a.id)
		if err != nil {
			return pip.AcceptableItem{}, err
		}
		a.item = &item
	}
	return *a.item, nil
}

// Version resolves the newest ready version, memoized. nil means the
// document has no ready version yet; that is not an error.
func (a *Admin) Version(ctx context.Context) (*pip.AcceptableVersion, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.versionLoaded {
		version, err := a.api.GetAcceptable(ctx, a.id, true)
		if err != nil {
			return nil, err
		}
		a.version = version
		a.versionLoaded = true
	}
	return a.version, nil
}

// Content applies ranked language fallback: the caller's ordered preferences
// followed by the document's default content language. The first content
// variant matching a candidate wins; an exhausted candidate list reports
// pip.ErrNoMatch, which indicates misconfigured default content server-side.
func (a *Admin) Content(ctx context.Context, languages []string) (pip.AcceptableContent, error) {
	item, err := a.Item(ctx)
	if err != nil {
		return pip.AcceptableContent{}, err
	}
	version, err := a.Version(ctx)
	if err != nil {
		return pip.AcceptableContent{}, err
	}
	if version == nil {
		return pip.AcceptableContent{}, fmt.Errorf("acceptable %q has no ready version", a.id)
	}

	candidates := make([]string, 0, len(languages)+1)
	candidates = append(candidates, languages...)
	candidates = append(candidates, item.DefaultContentLanguageCode)
	for _, language := range candidates {
		for _, content := range version.Content {
			if content.LanguageCode == language {
				return content, nil
			}
		}
	}
	return pip.AcceptableContent{}, fmt.Errorf("acceptable %q: %w", a.id, pip.ErrNoMatch)
}

// IsAccepted reports whether the current user has an acceptance record for
// the resolved version anywhere in their (possibly multi-page) history. A
// document with no ready version has nothing to accept, so false.
func (a *Admin) IsAccepted(ctx context.Context) (bool, error) {
	version, err := a.Version(ctx)
	if err != nil {
		return false, err
	}
	if version == nil {
		return false, nil
	}
	return a.api.CurrentUserHasAccepted(ctx, *version)
}

// Accept records acceptance of the resolved version with the content variant
// that was presented to the user.
func (a *Admin) Accept(ctx context.Context, content pip.AcceptableContent) error {
	version, err := a.Version(ctx)
	if err != nil {
		return err
	}
	if version == nil {
		return fmt.Errorf("acceptable %q has no ready version to accept", a.id)
	}
	return a.api.SendAcceptance(ctx, version.UUID, &content.UUID)
}
