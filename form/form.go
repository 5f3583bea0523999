// ABOUTME: Form composer assembling schema, translations, and prior data
// ABOUTME: Fans out over an object type's children and tolerates legacy payload shapes
package form

import (
	"context"
	"fmt"
	"strings"

	"github.com/liquid-state/pip-go/pip"
	"golang.org/x/sync/errgroup"
)

// Slug markers locating a form type's sibling children.
const (
	i18nMarker = "i18n"
	dataMarker = "data"
)

// API is the slice of the provider surface the composer needs. pip.Provider
// satisfies it.
type API interface {
	GetObjectType(ctx context.Context, key, token string) (pip.ObjectType, error)
	GetLatestObjectForType(ctx context.Context, t pip.ObjectType, token string, includeUnowned bool) (pip.Object, error)
	UpdateObject(ctx context.Context, t pip.ObjectType, payload any, status, token string) (pip.Object, error)
}

// Response is a renderable form definition: JSON schema, UI hints,
// translations, and any previously submitted data.
type Response struct {
	Title        string         `json:"title,omitempty"`
	Schema       map[string]any `json:"schema"`
	UISchema     map[string]any `json:"uiSchema"`
	Translations map[string]any `json:"translations"`
	Data         any            `json:"data"`
	ExtraData    map[string]any `json:"extraData"`
}

// Form composes one form's definition for one user session.
type Form struct {
	id    string
	api   API
	token string
}

// New binds a composer to a form type id and session token.
func New(id string, api API, token string) *Form {
	return &Form{id: id, api: api, token: token}
}

// Render assembles the form definition. The form type's children are fetched
// concurrently, then schema, translations, and data resolve concurrently; if
// any member of a concurrent group fails, the whole render fails.
func (f *Form) Render(ctx context.Context) (Response, error) {
	formType, err := f.api.GetObjectType(ctx, f.id, f.token)
	if err != nil {
		return Response{}, err
	}

	children := make([]pip.ObjectType, len(formType.Children))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, key := range formType.Children {
		i, key := i, key
		group.Go(func() error {
			child, err := f.api.GetObjectType(groupCtx, key, f.token)
			if err != nil {
				return err
			}
			children[i] = child
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Response{}, err
	}

	var response Response
	group, groupCtx = errgroup.WithContext(ctx)
	group.Go(func() error {
		title, schema, uiSchema, err := f.schema(groupCtx, formType)
		if err != nil {
			return err
		}
		response.Title, response.Schema, response.UISchema = title, schema, uiSchema
		return nil
	})
	group.Go(func() error {
		translations, err := f.translations(groupCtx, children)
		if err != nil {
			return err
		}
		response.Translations = translations
		return nil
	})
	group.Go(func() error {
		data, extra, err := f.data(groupCtx, children)
		if err != nil {
			return err
		}
		response.Data, response.ExtraData = data, extra
		return nil
	})
	if err := group.Wait(); err != nil {
		return Response{}, err
	}
	return response, nil
}

// Submit creates a new version of the form's data object. extra keys ride
// alongside the nested data value.
func (f *Form) Submit(ctx context.Context, formData map[string]any, extra map[string]any) (pip.Object, error) {
	formType, err := f.api.GetObjectType(ctx, f.id, f.token)
	if err != nil {
		return pip.Object{}, err
	}
	var dataTypeKey string
	for _, key := range formType.Children {
		if strings.Contains(key, dataMarker) {
			dataTypeKey = key
			break
		}
	}
	if dataTypeKey == "" {
		return pip.Object{}, fmt.Errorf("unable to submit form data, no data object type exists for form %q", f.id)
	}
	dataType, err := f.api.GetObjectType(ctx, dataTypeKey, f.token)
	if err != nil {
		return pip.Object{}, err
	}
	payload := make(map[string]any, len(extra)+1)
	for key, value := range extra {
		payload[key] = value
	}
	payload[dataMarker] = formData
	return f.api.UpdateObject(ctx, dataType, payload, "", f.token)
}

// schema reads the form type's own latest object. Legacy payloads store the
// UI hints under "ui", newer ones under "uiSchema"; "uiSchema" wins when both
// are present.
func (f *Form) schema(ctx context.Context, formType pip.ObjectType) (string, map[string]any, map[string]any, error) {
	object, err := f.api.GetLatestObjectForType(ctx, formType, f.token, false)
	if err != nil {
		return "", nil, nil, err
	}
	var raw map[string]any
	if err := object.Decode(&raw); err != nil {
		return "", nil, nil, fmt.Errorf("failed to decode form schema: %w", err)
	}
	title, _ := raw["page-title"].(string)
	schema := objectValue(raw, "schema")
	uiSchema := objectValue(raw, "uiSchema")
	if uiSchema == nil {
		uiSchema = objectValue(raw, "ui")
	}
	if schema == nil {
		schema = map[string]any{}
	}
	if uiSchema == nil {
		uiSchema = map[string]any{}
	}
	return title, schema, uiSchema, nil
}

// translations resolves the child type whose slug carries the i18n marker.
// No such child degrades to an empty translation table.
func (f *Form) translations(ctx context.Context, children []pip.ObjectType) (map[string]any, error) {
	child, ok := findChild(children, i18nMarker)
	if !ok {
		return map[string]any{}, nil
	}
	object, err := f.api.GetLatestObjectForType(ctx, child, f.token, false)
	if err != nil {
		return nil, err
	}
	var translations map[string]any
	if err := object.Decode(&translations); err != nil {
		return nil, fmt.Errorf("failed to decode form translations: %w", err)
	}
	if translations == nil {
		translations = map[string]any{}
	}
	return translations, nil
}

// data resolves prior submission data from the data-marked child. Legacy
// payloads stored the submission directly; newer ones nest it under "data"
// with sibling keys as extra metadata.
func (f *Form) data(ctx context.Context, children []pip.ObjectType) (any, map[string]any, error) {
	child, ok := findChild(children, dataMarker)
	if !ok {
		return map[string]any{}, map[string]any{}, nil
	}
	object, err := f.api.GetLatestObjectForType(ctx, child, f.token, false)
	if err != nil {
		return nil, nil, err
	}
	var raw map[string]any
	if err := object.Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("failed to decode form data: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	nested, ok := raw[dataMarker]
	if !ok {
		return raw, map[string]any{}, nil
	}
	extra := make(map[string]any, len(raw)-1)
	for key, value := range raw {
		if key != dataMarker {
			extra[key] = value
		}
	}
	return nested, extra, nil
}

func findChild(children []pip.ObjectType, marker string) (pip.ObjectType, bool) {
	for _, child := range children {
		if strings.Contains(child.Slug, marker) {
			return child, true
		}
	}
	return pip.ObjectType{}, false
}

func objectValue(raw map[string]any, key string) map[string]any {
	value, ok := raw[key].(map[string]any)
	if !ok {
		return nil
	}
	return value
}
