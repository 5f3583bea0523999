// ABOUTME: Test double for the pip.Provider interface
// ABOUTME: Function-field fake with call counting for use in dependent package tests
package piptest

import (
	"context"

	"github.com/google/uuid"
	"github.com/liquid-state/pip-go/pip"
)

// Provider is a configurable pip.Provider fake. Unset function fields return
// zero values. Calls tracks per-method invocation counts.
type Provider struct {
	Calls map[string]int

	ValidateCodeFunc            func(ctx context.Context, code string) (string, error)
	ConsumeCodeFunc             func(ctx context.Context, code, appUserID, token string) error
	RegisterFunc                func(ctx context.Context, token string) error
	GetObjectTypeFunc           func(ctx context.Context, key, token string) (pip.ObjectType, error)
	GetObjectsForTypeFunc       func(ctx context.Context, t pip.ObjectType, token, version string) ([]pip.Object, error)
	GetLatestObjectForTypeFunc  func(ctx context.Context, t pip.ObjectType, token string, includeUnowned bool) (pip.Object, error)
	DescribeVersionsForTypeFunc func(ctx context.Context, typeKey, token, appUser string, appUserObjectTypes []string) ([]pip.Object, error)
	UpdateObjectFunc            func(ctx context.Context, t pip.ObjectType, payload any, status, token string) (pip.Object, error)
	EditObjectFunc              func(ctx context.Context, existing pip.Object, payload any, status, token string) (pip.Object, error)
	DeleteObjectFunc            func(ctx context.Context, existing pip.Object, token string) (pip.Object, error)
	GetUserFunc                 func(ctx context.Context, sub, token string) (pip.Page[pip.User], error)
	GetAcceptableFunc           func(ctx context.Context, id string, languages []string, token string) (pip.AppUserAcceptable, error)
	SendAcceptanceFunc          func(ctx context.Context, versionID uuid.UUID, contentID *uuid.UUID, token string) error
	UserHasAcceptedFunc         func(ctx context.Context, versionURL, token string) (bool, error)
}

var _ pip.Provider = (*Provider)(nil)

// New creates an empty fake.
func New() *Provider {
	return &Provider{Calls: map[string]int{}}
}

func (p *Provider) record(name string) {
	if p.Calls == nil {
		p.Calls = map[string]int{}
	}
	p.Calls[name]++
}

func (p *Provider) ValidateCode(ctx context.Context, code string) (string, error) {
	p.record("ValidateCode")
	if p.ValidateCodeFunc == nil {
		return "", nil
	}
	return p.ValidateCodeFunc(ctx, code)
}

func (p *Provider) ConsumeCode(ctx context.Context, code, appUserID, token string) error {
	p.record("ConsumeCode")
	if p.ConsumeCodeFunc == nil {
		return nil
	}
	return p.ConsumeCodeFunc(ctx, code, appUserID, token)
}

func (p *Provider) Register(ctx context.Context, token string) error {
	p.record("Register")
	if p.RegisterFunc == nil {
		return nil
	}
	return p.RegisterFunc(ctx, token)
}

func (p *Provider) GetObjectType(ctx context.Context, key, token string) (pip.ObjectType, error) {
	p.record("GetObjectType")
	if p.GetObjectTypeFunc == nil {
		return pip.ObjectType{}, nil
	}
	return p.GetObjectTypeFunc(ctx, key, token)
}

func (p *Provider) GetObjectsForType(ctx context.Context, t pip.ObjectType, token, version string) ([]pip.Object, error) {
	p.record("GetObjectsForType")
	if p.GetObjectsForTypeFunc == nil {
		return nil, nil
	}
	return p.GetObjectsForTypeFunc(ctx, t, token, version)
}

func (p *Provider) GetLatestObjectForType(ctx context.Context, t pip.ObjectType, token string, includeUnowned bool) (pip.Object, error) {
	p.record("GetLatestObjectForType")
	if p.GetLatestObjectForTypeFunc == nil {
		return pip.Object{}, nil
	}
	return p.GetLatestObjectForTypeFunc(ctx, t, token, includeUnowned)
}

func (p *Provider) DescribeVersionsForType(ctx context.Context, typeKey, token, appUser string, appUserObjectTypes []string) ([]pip.Object, error) {
	p.record("DescribeVersionsForType")
	if p.DescribeVersionsForTypeFunc == nil {
		return nil, nil
	}
	return p.DescribeVersionsForTypeFunc(ctx, typeKey, token, appUser, appUserObjectTypes)
}

func (p *Provider) UpdateObject(ctx context.Context, t pip.ObjectType, payload any, status, token string) (pip.Object, error) {
	p.record("UpdateObject")
	if p.UpdateObjectFunc == nil {
		return pip.Object{}, nil
	}
	return p.UpdateObjectFunc(ctx, t, payload, status, token)
}

func (p *Provider) EditObject(ctx context.Context, existing pip.Object, payload any, status, token string) (pip.Object, error) {
	p.record("EditObject")
	if p.EditObjectFunc == nil {
		return pip.Object{}, nil
	}
	return p.EditObjectFunc(ctx, existing, payload, status, token)
}

func (p *Provider) DeleteObject(ctx context.Context, existing pip.Object, token string) (pip.Object, error) {
	p.record("DeleteObject")
	if p.DeleteObjectFunc == nil {
		return pip.Object{}, nil
	}
	return p.DeleteObjectFunc(ctx, existing, token)
}

func (p *Provider) GetUser(ctx context.Context, sub, token string) (pip.Page[pip.User], error) {
	p.record("GetUser")
	if p.GetUserFunc == nil {
		return pip.Page[pip.User]{}, nil
	}
	return p.GetUserFunc(ctx, sub, token)
}

func (p *Provider) GetAcceptable(ctx context.Context, id string, languages []string, token string) (pip.AppUserAcceptable, error) {
	p.record("GetAcceptable")
	if p.GetAcceptableFunc == nil {
		return pip.AppUserAcceptable{}, nil
	}
	return p.GetAcceptableFunc(ctx, id, languages, token)
}

func (p *Provider) SendAcceptance(ctx context.Context, versionID uuid.UUID, contentID *uuid.UUID, token string) error {
	p.record("SendAcceptance")
	if p.SendAcceptanceFunc == nil {
		return nil
	}
	return p.SendAcceptanceFunc(ctx, versionID, contentID, token)
}

func (p *Provider) UserHasAccepted(ctx context.Context, versionURL, token string) (bool, error) {
	p.record("UserHasAccepted")
	if p.UserHasAcceptedFunc == nil {
		return false, nil
	}
	return p.UserHasAcceptedFunc(ctx, versionURL, token)
}
