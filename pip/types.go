// ABOUTME: Wire types for the PIP backend API
// ABOUTME: Object-type hierarchy, versioned objects, acceptables, and pagination envelopes
package pip

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ObjectType is a node in the backend's document type hierarchy. Children and
// Parents are normalized to bare type keys after retrieval; the raw API
// returns full locators.
type ObjectType struct {
	URL      string    `json:"url"`
	UUID     uuid.UUID `json:"uuid"`
	Slug     string    `json:"slug"`
	Name     string    `json:"name"`
	Children []string  `json:"children"`
	Parents  []string  `json:"parents"`
	// Objects is the collection locator for instances of this type.
	Objects string `json:"objects"`
}

// Object is a versioned JSON instance of an ObjectType. AppUser is nil for
// global (unowned) objects. Version increases monotonically per type+owner.
type Object struct {
	URL     string          `json:"url"`
	UUID    uuid.UUID       `json:"uuid"`
	Version int             `json:"version"`
	AppUser *string         `json:"app_user"`
	JSON    json.RawMessage `json:"json"`
	Status  string          `json:"status,omitempty"`
}

// Decode unmarshals the object's JSON payload into v.
func (o Object) Decode(v any) error {
	return json.Unmarshal(o.JSON, v)
}

// User is an app-scoped user record.
type User struct {
	URL       string    `json:"url"`
	UUID      uuid.UUID `json:"uuid"`
	AppUserID string    `json:"app_user_id"`
	UserType  string    `json:"user_type,omitempty"`
}

// AcceptableContent is one localized rendering of a document version. Either
// Content (free text) or Data (structured document) is populated.
type AcceptableContent struct {
	UUID         uuid.UUID       `json:"uuid"`
	LanguageCode string          `json:"language_code"`
	DisplayName  string          `json:"display_name"`
	Content      string          `json:"content,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`
}

// VersionStatusReady marks a version as ready for acceptance. Anything else
// (draft etc) must not be offered to end users in admin flows.
const VersionStatusReady = "ready"

// AcceptableVersion is one version of a legal/consent document as returned by
// the admin versions listing. The listing carries the content collection as a
// locator; Content is populated by a follow-up fetch.
type AcceptableVersion struct {
	URL        string    `json:"url"`
	UUID       uuid.UUID `json:"uuid"`
	Number     int       `json:"number"`
	Status     string    `json:"status"`
	ContentURL string    `json:"content"`

	// Content holds the resolved content variants. Not part of the listing
	// payload itself.
	Content []AcceptableContent `json:"-"`
}

// AcceptableItem is the admin-side view of the acceptable document itself,
// independent of any particular version.
type AcceptableItem struct {
	URL                        string    `json:"url"`
	UUID                       uuid.UUID `json:"uuid"`
	Name                       string    `json:"name"`
	DefaultContentLanguageCode string    `json:"default_content_language_code"`
}

// LocalizedVersion is the user-facing shape of a document version: the server
// has already filtered the content variants down to the requested languages.
type LocalizedVersion struct {
	URL     string              `json:"url"`
	UUID    uuid.UUID           `json:"uuid"`
	Number  int                 `json:"number"`
	Content []AcceptableContent `json:"content,omitempty"`
}

// Acceptance is a user's record of accepting a specific document version.
type Acceptance struct {
	UUID    uuid.UUID          `json:"uuid"`
	Version LocalizedVersion   `json:"version"`
	Content *AcceptableContent `json:"content,omitempty"`
	Created time.Time          `json:"created,omitempty"`
}

// AppUserAcceptable is the user-facing view of an acceptable document: the
// currently relevant version plus the caller's most recent acceptance, if any.
type AppUserAcceptable struct {
	URL                        string            `json:"url"`
	UUID                       uuid.UUID         `json:"uuid"`
	Name                       string            `json:"name"`
	DefaultContentLanguageCode string            `json:"default_content_language_code,omitempty"`
	LatestVersion              *LocalizedVersion `json:"latest_version"`
	LatestAcceptance           *Acceptance       `json:"latest_acceptance,omitempty"`
}

// AcceptanceRef is an entry in the paginated acceptance-history listing. The
// version is carried as a locator, not an embedded record.
type AcceptanceRef struct {
	UUID    uuid.UUID `json:"uuid"`
	AppUser string    `json:"app_user,omitempty"`
	Version string    `json:"version"`
	Content string    `json:"content,omitempty"`
	Created time.Time `json:"created,omitempty"`
}

// Page is the backend's pagination envelope. A populated Next locator means
// more results are available.
type Page[T any] struct {
	Count    int    `json:"count,omitempty"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
	Results  []T    `json:"results"`
}
