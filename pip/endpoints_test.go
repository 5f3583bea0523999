// ABOUTME: Tests for endpoint URL resolution and locator normalization
// ABOUTME: Covers trailing slash handling, locator precedence, and key extraction
package pip

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocator struct {
	urls map[string]string
}

func (l fakeLocator) GetURL(service, endpoint string) (string, error) {
	url, ok := l.urls[service+"/"+endpoint]
	if !ok {
		return "", fmt.Errorf("no url for %s/%s", service, endpoint)
	}
	return url, nil
}

func TestResolverAPIRoot(t *testing.T) {
	r := newResolver("https://pip.test/", nil, defaultEndpointPaths)

	url, err := r.URL(EndpointValidateCode)
	require.NoError(t, err)

	// Trailing slash on the root must not double up.
	assert.Equal(t, "https://pip.test/api/v1/codes/exchange/", url)
}

func TestResolverUnknownEndpoint(t *testing.T) {
	r := newResolver("https://pip.test", nil, defaultEndpointPaths)

	_, err := r.URL("nonsense")
	assert.ErrorIs(t, err, ErrNoEndpoint)
}

func TestResolverLocatorPrecedence(t *testing.T) {
	locator := fakeLocator{urls: map[string]string{
		"pip/acceptances": "https://located.test/acceptances/",
	}}
	r := newResolver("https://ignored.test", locator, defaultEndpointPaths)

	url, err := r.URL(EndpointAcceptances)
	require.NoError(t, err)
	assert.Equal(t, "https://located.test/acceptances/", url)

	_, err = r.URL(EndpointObjectTypes)
	assert.Error(t, err, "locator misses must not fall back to the path table")
}

func TestObjectsURL(t *testing.T) {
	collection := "https://pip.test/api/v1/object_types/demo/objects/"

	tests := []struct {
		name    string
		version string
		want    string
	}{
		{"all versions", "", collection},
		{"latest", "latest", collection + "latest/"},
		{"exact version", "3", collection + "?version=3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, objectsURL(collection, tt.version))
		})
	}
}

func TestKeyFromURL(t *testing.T) {
	assert.Equal(t, "profile", keyFromURL("https://pip.test/api/v1/object_types/profile/"))
	assert.Equal(t, "profile", keyFromURL("https://pip.test/api/v1/object_types/profile"))
	assert.Equal(t, "profile", keyFromURL("profile"))
}

func TestNormalizeTypeKeys(t *testing.T) {
	objectType := ObjectType{
		Children: []string{
			"https://pip.test/api/v1/object_types/form-i18n/",
			"https://pip.test/api/v1/object_types/form-data/",
		},
		Parents: []string{"https://pip.test/api/v1/object_types/root/"},
	}
	normalizeTypeKeys(&objectType)

	assert.Equal(t, []string{"form-i18n", "form-data"}, objectType.Children)
	assert.Equal(t, []string{"root"}, objectType.Parents)
}
