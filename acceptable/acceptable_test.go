// ABOUTME: Tests for the user-facing acceptance resolver
// ABOUTME: Covers memoization, version comparison, and the accept call
package acceptable

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/liquid-state/pip-go/pip"
	"github.com/liquid-state/pip-go/pip/piptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userAcceptable(versionNumber int, acceptedNumber *int) pip.AppUserAcceptable {
	record := pip.AppUserAcceptable{
		Name:          "privacy-policy",
		LatestVersion: &pip.LocalizedVersion{UUID: uuid.New(), Number: versionNumber},
	}
	if acceptedNumber != nil {
		record.LatestAcceptance = &pip.Acceptance{
			Version: pip.LocalizedVersion{Number: *acceptedNumber},
		}
	}
	return record
}

func intp(n int) *int { return &n }

func TestGetMemoizes(t *testing.T) {
	provider := piptest.New()
	provider.GetAcceptableFunc = func(ctx context.Context, id string, languages []string, token string) (pip.AppUserAcceptable, error) {
		assert.Equal(t, "doc-1", id)
		assert.Equal(t, []string{"de", "en"}, languages)
		assert.Equal(t, "tok", token)
		return userAcceptable(3, nil), nil
	}
	a := New("doc-1", provider, "tok")

	first, err := a.Get(context.Background(), "de", "en")
	require.NoError(t, err)

	// Later calls return the memoized record regardless of languages.
	second, err := a.Get(context.Background(), "fr")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.Calls["GetAcceptable"])
}

func TestIsAccepted(t *testing.T) {
	cases := []struct {
		name     string
		record   pip.AppUserAcceptable
		accepted bool
	}{
		{"current acceptance", userAcceptable(3, intp(3)), true},
		{"stale acceptance", userAcceptable(3, intp(2)), false},
		{"never accepted", userAcceptable(3, nil), false},
		{"no version published", pip.AppUserAcceptable{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider := piptest.New()
			provider.GetAcceptableFunc = func(ctx context.Context, id string, languages []string, token string) (pip.AppUserAcceptable, error) {
				return tc.record, nil
			}
			a := New("doc-1", provider, "tok")

			accepted, err := a.IsAccepted(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.accepted, accepted)
		})
	}
}

func TestAcceptSendsLatestVersion(t *testing.T) {
	record := userAcceptable(3, nil)
	provider := piptest.New()
	provider.GetAcceptableFunc = func(ctx context.Context, id string, languages []string, token string) (pip.AppUserAcceptable, error) {
		return record, nil
	}
	var sentVersion uuid.UUID
	var sentContent *uuid.UUID
	provider.SendAcceptanceFunc = func(ctx context.Context, versionID uuid.UUID, contentID *uuid.UUID, token string) error {
		sentVersion = versionID
		sentContent = contentID
		return nil
	}
	a := New("doc-1", provider, "tok")

	require.NoError(t, a.Accept(context.Background()))
	assert.Equal(t, record.LatestVersion.UUID, sentVersion)
	assert.Nil(t, sentContent, "the user-facing flow does not pin a content variant")
}

func TestAcceptWithoutVersionFails(t *testing.T) {
	provider := piptest.New()
	provider.GetAcceptableFunc = func(ctx context.Context, id string, languages []string, token string) (pip.AppUserAcceptable, error) {
		return pip.AppUserAcceptable{}, nil
	}
	a := New("doc-1", provider, "tok")

	err := a.Accept(context.Background())
	assert.ErrorContains(t, err, "no version to accept")
	assert.Zero(t, provider.Calls["SendAcceptance"])
}

func TestGetErrorPropagates(t *testing.T) {
	boom := errors.New("backend down")
	provider := piptest.New()
	provider.GetAcceptableFunc = func(ctx context.Context, id string, languages []string, token string) (pip.AppUserAcceptable, error) {
		return pip.AppUserAcceptable{}, boom
	}
	a := New("doc-1", provider, "tok")

	_, err := a.IsAccepted(context.Background())
	assert.ErrorIs(t, err, boom)
}
