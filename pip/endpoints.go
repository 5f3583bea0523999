// ABOUTME: Endpoint path tables and URL resolution for the PIP API
// ABOUTME: Supports a fixed API root or an injected application locator service
package pip

import (
	"fmt"
	"strings"
)

// ServiceName is the key this client uses when resolving endpoints through an
// application locator service.
const ServiceName = "pip"

// DefaultAPIRoot is used by the admin client when no API root is configured.
const DefaultAPIRoot = "https://pip.example.com"

// Endpoint names understood by the user-facing and admin clients.
const (
	EndpointValidateCode        = "validateCode"
	EndpointRegisterCode        = "registerCode"
	EndpointRegisterWithoutCode = "registerWithoutCode"
	EndpointObjectTypes         = "objectTypes"
	EndpointAcceptables         = "acceptables"
	EndpointAcceptances         = "acceptances"
	EndpointAppUser             = "appUser"
	EndpointUsers               = "users"
	EndpointApp                 = "app"
	EndpointCode                = "code"
)

// defaultEndpointPaths maps endpoint names onto paths below the API root for
// the user-facing client.
var defaultEndpointPaths = map[string]string{
	EndpointRegisterWithoutCode: "/api/v1/users/",
	EndpointValidateCode:        "/api/v1/codes/exchange/",
	EndpointRegisterCode:        "/api/v1/codes/register/",
	EndpointObjectTypes:         "/api/v1/object_types/",
	EndpointAcceptables:         "/api/v1/acceptables/",
	EndpointAcceptances:         "/api/v1/acceptances/",
	EndpointAppUser:             "/api/admin/v1/users/",
}

// defaultAdminEndpointPaths is the admin variant of the path table.
var defaultAdminEndpointPaths = map[string]string{
	EndpointValidateCode: "/api/v1/codes/exchange/",
	EndpointRegisterCode: "/api/v1/codes/register/",
	EndpointObjectTypes:  "/api/v1/object_types/",
	EndpointAcceptables:  "/api/v1/acceptables/",
	EndpointAcceptances:  "/api/v1/acceptances/",
	EndpointUsers:        "/api/admin/v1/users/",
	EndpointApp:          "/api/admin/v1/apps/",
	EndpointCode:         "/api/admin/v1/codes/",
}

// Locator resolves fully-qualified endpoint URLs for a named service, as
// provided by an application locator service.
type Locator interface {
	GetURL(service, endpoint string) (string, error)
}

// resolver turns endpoint names into URLs. Exactly one of locator or apiRoot
// is consulted; the path table is copied at construction and never mutated.
type resolver struct {
	apiRoot string
	locator Locator
	paths   map[string]string
}

func newResolver(apiRoot string, locator Locator, paths map[string]string) resolver {
	copied := make(map[string]string, len(paths))
	for name, path := range paths {
		copied[name] = path
	}
	return resolver{
		apiRoot: strings.TrimSuffix(apiRoot, "/"),
		locator: locator,
		paths:   copied,
	}
}

// URL resolves an endpoint name. The locator takes precedence when present.
func (r resolver) URL(name string) (string, error) {
	if r.locator != nil {
		url, err := r.locator.GetURL(ServiceName, name)
		if err != nil {
			return "", fmt.Errorf("locator failed for endpoint %q: %w", name, err)
		}
		return url, nil
	}
	path, ok := r.paths[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoEndpoint, name)
	}
	return r.apiRoot + path, nil
}

// keyFromURL reduces an object-type locator to its bare key, the trailing
// path segment before any final slash.
func keyFromURL(url string) string {
	trimmed := strings.TrimSuffix(url, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// normalizeTypeKeys rewrites a type's child and parent locators to bare keys.
func normalizeTypeKeys(t *ObjectType) {
	for i, child := range t.Children {
		t.Children[i] = keyFromURL(child)
	}
	for i, parent := range t.Parents {
		t.Parents[i] = keyFromURL(parent)
	}
}
