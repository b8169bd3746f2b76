package auth

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	ErrMissingSubject = errors.New("id token has no subject")
	ErrTokenExpired   = errors.New("token already expired")
)

// OIDCError is a login failure the browser is sent away from. RedirectURL
// points at the frontend error page.
type OIDCError struct {
	RedirectURL string
	Message     string
}

func (e *OIDCError) Error() string {
	return e.Message
}

func newOIDCError(code, description, message string) *OIDCError {
	return &OIDCError{
		RedirectURL: fmt.Sprintf("/error?error=%s&error_description=%s", url.QueryEscape(code), url.QueryEscape(description)),
		Message:     message,
	}
}
