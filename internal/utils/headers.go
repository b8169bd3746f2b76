package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrMissingAuthzHeader     = errors.New("missing authorization header")
	ErrInvalidAuthzHeader     = errors.New("invalid authorization header")
	ErrUnsupportedAuthzScheme = errors.New("unsupported authorization scheme")
	ErrMissingAuthzToken      = errors.New("missing authorization token")
)

// BearerToken returns the credential from a single "Bearer" Authorization
// header. Repeated headers are rejected rather than picking one.
func BearerToken(h http.Header) (string, error) {
	values := h.Values("Authorization")
	switch len(values) {
	case 0:
		return "", ErrMissingAuthzHeader
	case 1:
	default:
		return "", fmt.Errorf("%w: %d authorization headers", ErrInvalidAuthzHeader, len(values))
	}

	scheme, token, found := strings.Cut(strings.TrimSpace(values[0]), " ")
	if scheme == "" {
		return "", ErrMissingAuthzHeader
	}
	if !found {
		return "", ErrInvalidAuthzHeader
	}
	if !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAuthzScheme, scheme)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingAuthzToken
	}
	return token, nil
}

// SetNoStore marks a response as private to the requesting browser.
// Certificates carry customer data and must not land in shared caches.
func SetNoStore(h http.Header) {
	h.Set("Cache-Control", "no-store, private")
	h.Set("Pragma", "no-cache")
	h.Set("X-Content-Type-Options", "nosniff")
}
