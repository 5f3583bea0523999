// ABOUTME: User-facing PIP client implementing the Provider interface
// ABOUTME: Code exchange, object-type CRUD, acceptables, and acceptance history
package pip

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Provider is the capability interface exposed by the user-facing client.
// Any backend implementation (live HTTP, admin variant, test double) can
// stand in for it.
type Provider interface {
	ValidateCode(ctx context.Context, code string) (string, error)
	ConsumeCode(ctx context.Context, code, appUserID, token string) error
	Register(ctx context.Context, token string) error
	GetObjectType(ctx context.Context, key, token string) (ObjectType, error)
	GetObjectsForType(ctx context.Context, t ObjectType, token, version string) ([]Object, error)
	GetLatestObjectForType(ctx context.Context, t ObjectType, token string, includeUnowned bool) (Object, error)
	DescribeVersionsForType(ctx context.Context, typeKey, token, appUser string, appUserObjectTypes []string) ([]Object, error)
	UpdateObject(ctx context.Context, t ObjectType, payload any, status, token string) (Object, error)
	EditObject(ctx context.Context, existing Object, payload any, status, token string) (Object, error)
	DeleteObject(ctx context.Context, existing Object, token string) (Object, error)
	GetUser(ctx context.Context, sub, token string) (Page[User], error)
	GetAcceptable(ctx context.Context, id string, languages []string, token string) (AppUserAcceptable, error)
	SendAcceptance(ctx context.Context, versionID uuid.UUID, contentID *uuid.UUID, token string) error
	UserHasAccepted(ctx context.Context, versionURL, token string) (bool, error)
}

// Options configures a Client. One of APIRoot or Locator is required.
type Options struct {
	// APIRoot is the base URL of the PIP deployment. A trailing slash is
	// normalized away.
	APIRoot string

	// Locator resolves endpoint URLs instead of APIRoot when set.
	Locator Locator

	// Endpoints overrides the default endpoint path table. Ignored when a
	// Locator is configured.
	Endpoints map[string]string

	// HTTPClient defaults to http.DefaultClient. Timeouts, retries and TLS
	// policy belong to it, not to this package.
	HTTPClient *http.Client

	// Logger receives debug-level request logging. Defaults to a no-op.
	Logger *zap.Logger
}

// Client talks to the user-facing PIP API. It holds no per-user state; a
// token is supplied per call.
type Client struct {
	urls resolver
	http *http.Client
	log  *zap.Logger
}

var _ Provider = (*Client)(nil)

// New creates a Client from options.
func New(opts Options) (*Client, error) {
	if opts.APIRoot == "" && opts.Locator == nil {
		return nil, errors.New("pip: an APIRoot or a Locator is required to create a client")
	}
	paths := opts.Endpoints
	if paths == nil {
		paths = defaultEndpointPaths
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		urls: newResolver(opts.APIRoot, opts.Locator, paths),
		http: httpClient,
		log:  logger,
	}, nil
}

// ValidateCode exchanges a one-time code for a session token.
func (c *Client) ValidateCode(ctx context.Context, code string) (string, error) {
	endpoint, err := c.urls.URL(EndpointValidateCode)
	if err != nil {
		return "", err
	}
	var out struct {
		JWT string `json:"jwt"`
	}
	if err := c.do(ctx, http.MethodPost, endpoint, "", map[string]string{"code": code}, &out); err != nil {
		return "", err
	}
	return out.JWT, nil
}

// ConsumeCode registers a one-time code against a known app user.
func (c *Client) ConsumeCode(ctx context.Context, code, appUserID, token string) error {
	endpoint, err := c.urls.URL(EndpointRegisterCode)
	if err != nil {
		return err
	}
	body := map[string]string{
		"app_user_id": appUserID,
		"code":        code,
	}
	return c.do(ctx, http.MethodPost, endpoint, token, body, nil)
}

// Register creates a user record from a token alone, without a code.
func (c *Client) Register(ctx context.Context, token string) error {
	endpoint, err := c.urls.URL(EndpointRegisterWithoutCode)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, endpoint, "", map[string]string{"jwt": token}, nil)
}

// GetObjectType fetches a type definition by key. Child and parent locators
// are normalized to bare keys.
func (c *Client) GetObjectType(ctx context.Context, key, token string) (ObjectType, error) {
	base, err := c.urls.URL(EndpointObjectTypes)
	if err != nil {
		return ObjectType{}, err
	}
	var t ObjectType
	if err := c.do(ctx, http.MethodGet, base+key+"/", token, nil, &t); err != nil {
		return ObjectType{}, err
	}
	normalizeTypeKeys(&t)
	return t, nil
}

// GetObjectsForType lists instances of a type. version "" returns all
// versions, "latest" the server-resolved current one, and an integer string
// an exact match. The latest endpoint serves a single object, not a list.
func (c *Client) GetObjectsForType(ctx context.Context, t ObjectType, token, version string) ([]Object, error) {
	u := objectsURL(t.Objects, version)
	if version == "latest" {
		var obj Object
		if err := c.do(ctx, http.MethodGet, u, token, nil, &obj); err != nil {
			return nil, err
		}
		return []Object{obj}, nil
	}
	var objects []Object
	if err := c.do(ctx, http.MethodGet, u, token, nil, &objects); err != nil {
		return nil, err
	}
	return objects, nil
}

// GetLatestObjectForType resolves the most recent instance of a type.
// includeUnowned widens the lookup to objects with no owning user, which is
// how shared default content is stored.
func (c *Client) GetLatestObjectForType(ctx context.Context, t ObjectType, token string, includeUnowned bool) (Object, error) {
	u := objectsURL(t.Objects, "latest")
	if includeUnowned {
		u += "?include_null_app_user=1"
	}
	var obj Object
	if err := c.do(ctx, http.MethodGet, u, token, nil, &obj); err != nil {
		return Object{}, err
	}
	return obj, nil
}

// DescribeVersionsForType fetches version metadata for a type, optionally
// scoped to an app user and a subset of their object types.
func (c *Client) DescribeVersionsForType(ctx context.Context, typeKey, token, appUser string, appUserObjectTypes []string) ([]Object, error) {
	base, err := c.urls.URL(EndpointObjectTypes)
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
	if err := c.do(ctx, http.MethodGet, u, token, nil, &objects); err != nil {
		return nil, err
	}
	return objects, nil
}

// UpdateObject appends a new version under the type's objects collection.
func (c *Client) UpdateObject(ctx context.Context, t ObjectType, payload any, status, token string) (Object, error) {
	if token == "" {
		return Object{}, fmt.Errorf("update object %q: %w", t.Slug, ErrNoAuth)
	}
	var obj Object
	if err := c.do(ctx, http.MethodPost, t.Objects, token, writeBody(payload, status), &obj); err != nil {
		return Object{}, err
	}
	return obj, nil
}

// EditObject replaces an object in place at its own locator instead of
// appending a new version.
func (c *Client) EditObject(ctx context.Context, existing Object, payload any, status, token string) (Object, error) {
	if token == "" {
		return Object{}, fmt.Errorf("edit object %s: %w", existing.UUID, ErrNoAuth)
	}
	var obj Object
	if err := c.do(ctx, http.MethodPut, existing.URL, token, writeBody(payload, status), &obj); err != nil {
		return Object{}, err
	}
	return obj, nil
}

// DeleteObject removes an object instance.
func (c *Client) DeleteObject(ctx context.Context, existing Object, token string) (Object, error) {
	if token == "" {
		return Object{}, fmt.Errorf("delete object %s: %w", existing.UUID, ErrNoAuth)
	}
	var obj Object
	if err := c.do(ctx, http.MethodDelete, existing.URL, token, nil, &obj); err != nil {
		// DELETE responses may legitimately carry no body.
		if errors.Is(err, io.EOF) {
			return existing, nil
		}
		return Object{}, err
	}
	return obj, nil
}

// GetUser looks up app-scoped user records by subject identifier.
func (c *Client) GetUser(ctx context.Context, sub, token string) (Page[User], error) {
	base, err := c.urls.URL(EndpointAppUser)
	if err != nil {
		return Page[User]{}, err
	}
	var page Page[User]
	if err := c.do(ctx, http.MethodGet, base+"?app_user_id="+url.QueryEscape(sub), token, nil, &page); err != nil {
		return Page[User]{}, err
	}
	return page, nil
}

// GetAcceptable fetches the user-facing view of an acceptable document. The
// ranked language preference list is passed through as a query parameter; the
// server filters and localizes the version record.
func (c *Client) GetAcceptable(ctx context.Context, id string, languages []string, token string) (AppUserAcceptable, error) {
	base, err := c.urls.URL(EndpointAcceptables)
	if err != nil {
		return AppUserAcceptable{}, err
	}
	u := base + id + "/"
	if len(languages) > 0 {
		u += "?language=" + url.QueryEscape(strings.Join(languages, ","))
	}
	var acceptable AppUserAcceptable
	if err := c.do(ctx, http.MethodGet, u, token, nil, &acceptable); err != nil {
		return AppUserAcceptable{}, err
	}
	return acceptable, nil
}

// SendAcceptance appends an acceptance record for a document version, and
// for the specific content variant when one was presented. Acceptance is
// append-only; idempotency is the caller's concern via an isAccepted check.
func (c *Client) SendAcceptance(ctx context.Context, versionID uuid.UUID, contentID *uuid.UUID, token string) error {
	endpoint, err := c.urls.URL(EndpointAcceptances)
	if err != nil {
		return err
	}
	body := map[string]string{"version": versionID.String()}
	if contentID != nil {
		body["content"] = contentID.String()
	}
	return c.do(ctx, http.MethodPost, endpoint, token, body, nil)
}

// UserHasAccepted walks the caller's paginated acceptance history looking for
// a record referencing the given version locator. The walk is an explicit
// loop; depth equals page count and the backend eventually omits "next".
func (c *Client) UserHasAccepted(ctx context.Context, versionURL, token string) (bool, error) {
	next, err := c.urls.URL(EndpointAcceptances)
	if err != nil {
		return false, err
	}
	for next != "" {
		var page Page[AcceptanceRef]
		if err := c.do(ctx, http.MethodGet, next, token, nil, &page); err != nil {
			return false, err
		}
		for _, record := range page.Results {
			if record.Version == versionURL {
				return true, nil
			}
		}
		next = page.Next
	}
	return false, nil
}

// objectsURL appends the version selector to an objects collection locator.
func objectsURL(collection, version string) string {
	switch version {
	case "":
		return collection
	case "latest":
		return collection + "latest/"
	default:
		return collection + "?version=" + url.QueryEscape(version)
	}
}

// writeBody builds the payload envelope for object writes.
func writeBody(payload any, status string) map[string]any {
	body := map[string]any{"json": payload}
	if status != "" {
		body["status"] = status
	}
	return body
}

// do performs one HTTP exchange. A non-2xx status yields a *ResponseError
// retaining the body; a nil out skips decoding.
func (c *Client) do(ctx context.Context, method, reqURL, token string, body, out any) error {
	return doRequest(ctx, c.http, c.log, method, reqURL, bearerAuth(token), body, out)
}

// bearerAuth formats the Authorization header value for a token, or "" for
// unauthenticated requests.
func bearerAuth(token string) string {
	if token == "" {
		return ""
	}
	return "Bearer " + token
}

// doRequest is the request plumbing shared by the user and admin clients.
func doRequest(ctx context.Context, client *http.Client, log *zap.Logger, method, reqURL, auth string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	requestID := ulid.Make().String()
	req.Header.Set("X-Request-Id", requestID)

	log.Debug("pip request",
		zap.String("method", method),
		zap.String("url", reqURL),
		zap.String("request_id", requestID))

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", reqURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		log.Debug("pip error response",
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", requestID))
		return &ResponseError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        reqURL,
			Body:       respBody,
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", reqURL, err)
	}
	return nil
}
