// ABOUTME: Error taxonomy for PIP API calls
// ABOUTME: Sentinel errors plus ResponseError carrying the failed HTTP exchange
package pip

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is reported when the backend returns a 404 for a resource
	// lookup. Use errors.Is to detect it on any wrapped API error.
	ErrNotFound = errors.New("pip: not found")

	// ErrNoAuth is reported when an operation requires a token and none could
	// be resolved.
	ErrNoAuth = errors.New("pip: no valid authentication mechanism")

	// ErrNoMatch is reported when language fallback is exhausted. This only
	// happens when the document's default-language content is missing or
	// misconfigured server-side.
	ErrNoMatch = errors.New("pip: no content matches the languages supplied; default content is presumably not configured")

	// ErrContentLoad is reported when a version was selected but its content
	// collection could not be fetched. A version without loadable content
	// cannot be presented.
	ErrContentLoad = errors.New("pip: unable to load acceptable content")

	// ErrNoEndpoint is reported when an endpoint name has no entry in the
	// configured path table and no locator could resolve it.
	ErrNoEndpoint = errors.New("pip: unknown endpoint")
)

// ResponseError is returned for any non-2xx backend response. It retains the
// original status and body for inspection by callers.
type ResponseError struct {
	StatusCode int
	Status     string
	URL        string
	Body       []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("pip: invalid response %s from %s", e.Status, e.URL)
}

// Is maps 404 responses onto ErrNotFound so callers can test with errors.Is
// without digging into status codes.
func (e *ResponseError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}
