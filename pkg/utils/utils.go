package utils

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenSubject extracts the sub claim from a provider-issued access
// token. The signature is not verified here: the token arrives directly from
// the identity provider in the same login round-trip, so the provider has
// already vouched for it.
func AccessTokenSubject(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("parse access token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("read sub claim: %w", err)
	}
	if sub == "" {
		return "", fmt.Errorf("access token has no sub claim")
	}
	return sub, nil
}

// SanitizeProviderError keeps only the trailing human-readable segment of an
// error chain, dropping the provider/wrapping prefixes that would leak
// internal structure to clients.
func SanitizeProviderError(message string) string {
	if idx := strings.LastIndex(message, ": "); idx >= 0 {
		message = message[idx+2:]
	}
	return strings.TrimSpace(message)
}
