// ABOUTME: Tests for the admin PIP client against a fake HTTP backend
// ABOUTME: Covers auth schemes, version selection, content loading, and the history walk
package pip

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdmin(t *testing.T, identity AdminIdentity, handler http.Handler) (*AdminClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	admin, err := NewAdmin(identity, AdminOptions{APIRoot: srv.URL})
	require.NoError(t, err)
	return admin, srv
}

func TestNewAdminRequiresIdentity(t *testing.T) {
	_, err := NewAdmin(AdminIdentity{}, AdminOptions{})
	assert.ErrorIs(t, err, ErrNoAuth)
}

func TestAdminAuthSchemes(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("{}"))
	})

	admin, _ := newTestAdmin(t, AdminIdentity{APIKey: "k123"}, handler)
	_, err := admin.GetApp(context.Background(), "apptoken")
	require.NoError(t, err)
	assert.Equal(t, "Token k123", gotAuth)

	admin, _ = newTestAdmin(t, AdminIdentity{Token: "jwt456", APIKey: "k123"}, handler)
	_, err = admin.GetApp(context.Background(), "apptoken")
	require.NoError(t, err)
	assert.Equal(t, "Bearer jwt456", gotAuth, "bearer token wins over API key")
}

func acceptableBackend(t *testing.T, versions []map[string]any, contentStatus int, content []map[string]any) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/acceptables/terms/versions/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"results": versions})
	})
	mux.HandleFunc("/content/", func(w http.ResponseWriter, r *http.Request) {
		if contentStatus != http.StatusOK {
			w.WriteHeader(contentStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(content)
	})
	return mux
}

func TestGetAcceptableOnlyReady(t *testing.T) {
	readyID := uuid.NewString()
	var srvURL string
	versions := []map[string]any{
		{"url": "v3", "uuid": uuid.NewString(), "number": 3, "status": "draft"},
		{"url": "v2", "uuid": readyID, "number": 2, "status": "ready"},
		{"url": "v1", "uuid": uuid.NewString(), "number": 1, "status": "ready"},
	}
	content := []map[string]any{
		{"uuid": uuid.NewString(), "language_code": "en", "display_name": "Terms", "content": "..."},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/acceptables/terms/versions/", func(w http.ResponseWriter, r *http.Request) {
		// Content locators must point back at this server.
		for _, v := range versions {
			v["content"] = srvURL + "/content/"
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": versions})
	})
	mux.HandleFunc("/content/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(content)
	})

	admin, srv := newTestAdmin(t, AdminIdentity{APIKey: "k"}, mux)
	srvURL = srv.URL
	ctx := context.Background()

	version, err := admin.GetAcceptable(ctx, "terms", true)
	require.NoError(t, err)
	require.NotNil(t, version)
	assert.Equal(t, 2, version.Number, "newest ready version wins, draft is skipped")
	assert.Equal(t, VersionStatusReady, version.Status)
	require.Len(t, version.Content, 1)
	assert.Equal(t, "en", version.Content[0].LanguageCode)

	version, err = admin.GetAcceptable(ctx, "terms", false)
	require.NoError(t, err)
	require.NotNil(t, version)
	assert.Equal(t, 3, version.Number, "without the filter the newest version wins")
}

func TestGetAcceptableNoVersionSentinel(t *testing.T) {
	handler := acceptableBackend(t, []map[string]any{
		{"url": "v1", "uuid": uuid.NewString(), "number": 1, "status": "draft"},
	}, http.StatusOK, nil)
	admin, _ := newTestAdmin(t, AdminIdentity{APIKey: "k"}, handler)

	version, err := admin.GetAcceptable(context.Background(), "terms", true)
	require.NoError(t, err, "a document with no ready version is not an error")
	assert.Nil(t, version)
}

func TestGetAcceptableContentLoadFailure(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/acceptables/terms/versions/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []map[string]any{
			{"url": "v1", "uuid": uuid.NewString(), "number": 1, "status": "ready", "content": srvURL + "/content/"},
		}})
	})
	mux.HandleFunc("/content/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	admin, srv := newTestAdmin(t, AdminIdentity{APIKey: "k"}, mux)
	srvURL = srv.URL

	_, err := admin.GetAcceptable(context.Background(), "terms", true)
	assert.ErrorIs(t, err, ErrContentLoad)
}

func TestCurrentUserHasAcceptedMatchesVersionLocator(t *testing.T) {
	version := AcceptableVersion{URL: "https://pip.test/versions/9/", UUID: uuid.New(), Number: 9}

	pages := [][]map[string]any{
		{{"version": "https://pip.test/versions/7/"}},
		{{"version": "https://pip.test/versions/9/"}},
	}
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/acceptances/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			_ = json.NewEncoder(w).Encode(map[string]any{"results": pages[1]})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": pages[0],
			"next":    srvURL + "/api/v1/acceptances/?page=2",
		})
	})

	admin, srv := newTestAdmin(t, AdminIdentity{APIKey: "k"}, mux)
	srvURL = srv.URL

	accepted, err := admin.CurrentUserHasAccepted(context.Background(), version)
	require.NoError(t, err)
	assert.True(t, accepted)

	other := AcceptableVersion{URL: "https://pip.test/versions/11/"}
	accepted, err = admin.CurrentUserHasAccepted(context.Background(), other)
	require.NoError(t, err)
	assert.False(t, accepted)
}

func TestCreateCodeForAppUser(t *testing.T) {
	var gotBody map[string]string
	admin, _ := newTestAdmin(t, AdminIdentity{APIKey: "k"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))

	code, err := admin.CreateCodeForAppUser(context.Background(), "user-9")
	require.NoError(t, err)

	assert.Len(t, code, 6)
	assert.Equal(t, code, gotBody["code"])
	assert.Equal(t, "user-9", gotBody["app_user"])
	assert.Regexp(t, "^[0-9A-F]{6}$", code)
}

func TestGetLatestObjectsForUsersFilters(t *testing.T) {
	var gotQuery map[string][]string
	var gotPath string
	admin, _ := newTestAdmin(t, AdminIdentity{APIKey: "k"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte("[]"))
	}))
	ctx := context.Background()

	_, err := admin.GetLatestObjectsForUsers(ctx, "notes", []string{"user-1"})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/object_types/notes/objects/latest/", gotPath)
	assert.Equal(t, []string{"user-1"}, gotQuery["app_user"])

	// Multiple users travel as a JSON list, intact even for ids that need
	// escaping.
	users := []string{`us"er`, `back\slash`, "plain"}
	_, err = admin.GetLatestObjectsForUsers(ctx, "notes", users)
	require.NoError(t, err)
	require.Len(t, gotQuery["app_users"], 1)
	var decoded []string
	require.NoError(t, json.Unmarshal([]byte(gotQuery["app_users"][0]), &decoded))
	assert.Equal(t, users, decoded)
}

func TestAdminDescribeVersionsForType(t *testing.T) {
	var gotURL string
	admin, _ := newTestAdmin(t, AdminIdentity{APIKey: "k"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		_, _ = w.Write([]byte("[]"))
	}))

	_, err := admin.DescribeVersionsForType(context.Background(), "notes", "user-1", []string{"notes-data"})
	require.NoError(t, err)
	assert.Equal(t,
		"/api/v1/object_types/notes/describe_versions/?app_user=user-1&app_user_object_types=notes-data",
		gotURL)
}

func TestAdminListObjectTypesNormalizes(t *testing.T) {
	admin, _ := newTestAdmin(t, AdminIdentity{APIKey: "k"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{{
			"url":      "https://pip.test/api/v1/object_types/survey/",
			"uuid":     uuid.NewString(),
			"slug":     "survey",
			"name":     "Survey",
			"children": []string{"https://pip.test/api/v1/object_types/survey-data/"},
			"parents":  []string{},
			"objects":  "https://pip.test/api/v1/object_types/survey/objects/",
		}})
	}))

	types, err := admin.ListObjectTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, []string{"survey-data"}, types[0].Children)
}
