// ABOUTME: Admin PIP client authenticated by API key or bearer token
// ABOUTME: App/user management, object-type administration, and acceptance resolution
package pip

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdminIdentity selects the admin authentication scheme. A bearer token takes
// precedence over an API key.
type AdminIdentity struct {
	Token  string
	APIKey string
}

// AdminOptions configures an AdminClient. The zero value targets
// DefaultAPIRoot with the default admin endpoint table.
type AdminOptions struct {
	APIRoot    string
	Endpoints  map[string]string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// AdminClient talks to the admin PIP API on behalf of an operator identity.
type AdminClient struct {
	identity AdminIdentity
	urls     resolver
	http     *http.Client
	log      *zap.Logger
}

// NewAdmin creates an AdminClient for the given identity.
func NewAdmin(identity AdminIdentity, opts AdminOptions) (*AdminClient, error) {
	if identity.Token == "" && identity.APIKey == "" {
		return nil, fmt.Errorf("create admin client: %w", ErrNoAuth)
	}
	apiRoot := opts.APIRoot
	if apiRoot == "" {
		apiRoot = DefaultAPIRoot
	}
	paths := opts.Endpoints
	if paths == nil {
		paths = defaultAdminEndpointPaths
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminClient{
		identity: identity,
		urls:     newResolver(apiRoot, nil, paths),
		http:     httpClient,
		log:      logger,
	}, nil
}

// GetApp fetches app metadata by app token.
func (a *AdminClient) GetApp(ctx context.Context, appToken string) (map[string]any, error) {
	base, err := a.urls.URL(EndpointApp)
	if err != nil {
		return nil, err
	}
	var app map[string]any
	if err := a.do(ctx, http.MethodGet, base+appToken+"/", nil, &app); err != nil {
		return nil, err
	}
	return app, nil
}

// GetAppUser looks up user records by app-scoped user id.
func (a *AdminClient) GetAppUser(ctx context.Context, appUserID string) (Page[User], error) {
	base, err := a.urls.URL(EndpointUsers)
	if err != nil {
		return Page[User]{}, err
	}
	var page Page[User]
	if err := a.do(ctx, http.MethodGet, base+"?app_user_id="+url.QueryEscape(appUserID), nil, &page); err != nil {
		return Page[User]{}, err
	}
	return page, nil
}

// CreateAppUser registers a user record under an app. userType and code are
// optional and sent as empty strings when absent.
func (a *AdminClient) CreateAppUser(ctx context.Context, appUUID uuid.UUID, appUserID, userType, code string) (User, error) {
	endpoint, err := a.urls.URL(EndpointUsers)
	if err != nil {
		return User{}, err
	}
	body := map[string]string{
		"app":         appUUID.String(),
		"app_user_id": appUserID,
		"user_type":   userType,
		"code":        code,
	}
	var user User
	if err := a.do(ctx, http.MethodPost, endpoint, body, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// CreateCodeForAppUser issues a fresh random registration code for a user and
// returns it.
func (a *AdminClient) CreateCodeForAppUser(ctx context.Context, userID string) (string, error) {
	endpoint, err := a.urls.URL(EndpointCode)
	if err != nil {
		return "", err
	}
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	body := map[string]string{
		"app_user": userID,
		"code":     code,
	}
	if err := a.do(ctx, http.MethodPost, endpoint, body, nil); err != nil {
		return "", err
	}
	return code, nil
}

// ListObjectTypes fetches every type definition, with child and parent
// locators normalized to bare keys.
func (a *AdminClient) ListObjectTypes(ctx context.Context) ([]ObjectType, error) {
	endpoint, err := a.urls.URL(EndpointObjectTypes)
	if err != nil {
		return nil, err
	}
	var types []ObjectType
	if err := a.do(ctx, http.MethodGet, endpoint, nil, &types); err != nil {
		return nil, err
	}
	for i := range types {
		normalizeTypeKeys(&types[i])
	}
	return types, nil
}

// GetObjectType fetches a single type definition by key.
func (a *AdminClient) GetObjectType(ctx context.Context, key string) (ObjectType, error) {
	base, err := a.urls.URL(EndpointObjectTypes)
	if err != nil {
		return ObjectType{}, err
	}
	var t ObjectType
	if err := a.do(ctx, http.MethodGet, base+key+"/", nil, &t); err != nil {
		return ObjectType{}, err
	}
	normalizeTypeKeys(&t)
	return t, nil
}

// CreateObjectType defines a new type under an app.
func (a *AdminClient) CreateObjectType(ctx context.Context, name, app string, parents, children []string) (ObjectType, error) {
	endpoint, err := a.urls.URL(EndpointObjectTypes)
	if err != nil {
		return ObjectType{}, err
	}
	if parents == nil {
		parents = []string{}
	}
	if children == nil {
		children = []string{}
	}
	body := map[string]any{
		"name":     name,
		"app":      app,
		"parents":  parents,
		"children": children,
	}
	var t ObjectType
	if err := a.do(ctx, http.MethodPost, endpoint, body, &t); err != nil {
		return ObjectType{}, err
	}
	return t, nil
}

// GetObjectsForType lists instances of a type by key, optionally filtered to
// a version selector and an owning app user.
func (a *AdminClient) GetObjectsForType(ctx context.Context, typeKey, version, appUser string) ([]Object, error) {
	u, err := a.objectsURL(typeKey, version, appUser)
	if err != nil {
		return nil, err
	}
	var objects []Object
	if err := a.do(ctx, http.MethodGet, u, nil, &objects); err != nil {
		return nil, err
	}
	return objects, nil
}

// GetLatestObjectsForUsers resolves latest objects of a type for a set of app
// users. A single user becomes a query parameter; multiple users are passed
// as a JSON-encoded list.
func (a *AdminClient) GetLatestObjectsForUsers(ctx context.Context, typeKey string, appUsers []string) ([]Object, error) {
	var u string
	var err error
	switch len(appUsers) {
	case 1:
		u, err = a.objectsURL(typeKey, "latest", appUsers[0])
	default:
		u, err = a.objectsURL(typeKey, "latest", "")
		if err == nil && len(appUsers) > 1 {
			encoded, merr := json.Marshal(appUsers)
			if merr != nil {
				return nil, fmt.Errorf("failed to encode app user filter: %w", merr)
			}
			u += "?app_users=" + url.QueryEscape(string(encoded))
		}
	}
	if err != nil {
		return nil, err
	}
	var objects []Object
	if err := a.do(ctx, http.MethodGet, u, nil, &objects); err != nil {
		return nil, err
	}
	return objects, nil
}

// DescribeVersionsForType fetches version metadata for a type, optionally
// scoped to an app user and a subset of their object types.
func (a *AdminClient) DescribeVersionsForType(ctx context.Context, typeKey, appUser string, appUserObjectTypes []string) ([]Object, error) {
	base, err := a.urls.URL(EndpointObjectTypes)
	if err != nil {
		return nil, err
	}
	u := base + typeKey + "/describe_versions/"
	if appUser != "" {
		u += "?app_user=" + url.QueryEscape(appUser)
		if len(appUserObjectTypes) > 0 {
			u += "&app_user_object_types=" + url.QueryEscape(strings.Join(appUserObjectTypes, ","))
		}
	}
	var objects []Object
	if err := a.do(ctx, http.MethodGet, u, nil, &objects); err != nil {
		return nil, err
	}
	return objects, nil
}

// CreateObject writes a new object instance under a type, owned by appUser or
// global when appUser is empty.
func (a *AdminClient) CreateObject(ctx context.Context, typeKey string, payload any, appUser string) (Object, error) {
	u, err := a.objectsURL(typeKey, "", "")
	if err != nil {
		return Object{}, err
	}
	var owner *string
	if appUser != "" {
		owner = &appUser
	}
	body := map[string]any{
		"app_user": owner,
		"json":     payload,
	}
	var obj Object
	if err := a.do(ctx, http.MethodPost, u, body, &obj); err != nil {
		return Object{}, err
	}
	return obj, nil
}

// GetAcceptableItem fetches the acceptable document record itself, which
// carries the default content language used by ranked fallback.
func (a *AdminClient) GetAcceptableItem(ctx context.Context, id string) (AcceptableItem, error) {
	base, err := a.urls.URL(EndpointAcceptables)
	if err != nil {
		return AcceptableItem{}, err
	}
	var item AcceptableItem
	if err := a.do(ctx, http.MethodGet, base+id+"/", nil, &item); err != nil {
		return AcceptableItem{}, err
	}
	return item, nil
}

// GetAcceptable selects the relevant version of a document from its
// newest-first versions listing. With onlyReady the first version whose
// status is "ready" wins; otherwise the first entry does. A nil version with
// a nil error means the document has no applicable version yet, which is not
// a failure. The selected version's content collection is resolved with a
// second fetch; that fetch failing is fatal because a version without
// loadable content cannot be presented.
func (a *AdminClient) GetAcceptable(ctx context.Context, id string, onlyReady bool) (*AcceptableVersion, error) {
	base, err := a.urls.URL(EndpointAcceptables)
	if err != nil {
		return nil, err
	}
	var page Page[AcceptableVersion]
	if err := a.do(ctx, http.MethodGet, base+id+"/versions/", nil, &page); err != nil {
		return nil, err
	}
	var version *AcceptableVersion
	for i := range page.Results {
		if onlyReady && page.Results[i].Status != VersionStatusReady {
			continue
		}
		version = &page.Results[i]
		break
	}
	if version == nil {
		return nil, nil
	}
	if err := a.do(ctx, http.MethodGet, version.ContentURL, nil, &version.Content); err != nil {
		return nil, fmt.Errorf("%w for version %d of %q: %v", ErrContentLoad, version.Number, id, err)
	}
	return version, nil
}

// CurrentUserHasAccepted walks the paginated acceptance history looking for a
// record referencing the version. Records are matched on the version's own
// locator; some historical payloads carried the acceptable item's locator in
// this field instead, which will never match here.
func (a *AdminClient) CurrentUserHasAccepted(ctx context.Context, version AcceptableVersion) (bool, error) {
	next, err := a.urls.URL(EndpointAcceptances)
	if err != nil {
		return false, err
	}
	for next != "" {
		var page Page[AcceptanceRef]
		if err := a.do(ctx, http.MethodGet, next, nil, &page); err != nil {
			return false, err
		}
		for _, record := range page.Results {
			if record.Version == version.URL {
				return true, nil
			}
		}
		next = page.Next
	}
	return false, nil
}

// SendAcceptance appends an acceptance record for a version and the content
// variant that was presented. No idempotency guard is applied.
func (a *AdminClient) SendAcceptance(ctx context.Context, versionID uuid.UUID, contentID *uuid.UUID) error {
	endpoint, err := a.urls.URL(EndpointAcceptances)
	if err != nil {
		return err
	}
	body := map[string]string{"version": versionID.String()}
	if contentID != nil {
		body["content"] = contentID.String()
	}
	return a.do(ctx, http.MethodPost, endpoint, body, nil)
}

func (a *AdminClient) objectsURL(typeKey, version, appUser string) (string, error) {
	base, err := a.urls.URL(EndpointObjectTypes)
	if err != nil {
		return "", err
	}
	u := objectsURL(base+typeKey+"/objects/", version)
	if appUser != "" && version == "latest" {
		u += "?app_user=" + url.QueryEscape(appUser)
	}
	return u, nil
}

func (a *AdminClient) do(ctx context.Context, method, reqURL string, body, out any) error {
	return doRequest(ctx, a.http, a.log, method, reqURL, a.auth(), body, out)
}

func (a *AdminClient) auth() string {
	if a.identity.Token != "" {
		return "Bearer " + a.identity.Token
	}
	return "Token " + a.identity.APIKey
}

// generateCode produces a short uppercase hex registration code.
func generateCode() (string, error) {
	raw := make([]byte, 3)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(raw)), nil
}
