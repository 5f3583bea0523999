// ABOUTME: Session token introspection helpers
// ABOUTME: Extracts the subject claim from a JWT without verifying it
package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Subject extracts the sub claim from a session token without verifying the
// signature. The backend is the verifier of record; this is a convenience for
// pairing a token with GetUser.
func Subject(token string) (string, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("failed to read subject claim: %w", err)
	}
	if sub == "" {
		return "", fmt.Errorf("token has no subject claim")
	}
	return sub, nil
}
