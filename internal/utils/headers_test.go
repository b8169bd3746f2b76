package utils

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name      string
		values    []string
		wantToken string
		wantErr   error
	}{
		{name: "bearer token", values: []string{"Bearer eyJhbGciOiJSUzI1NiJ9.e30.sig"}, wantToken: "eyJhbGciOiJSUzI1NiJ9.e30.sig"},
		{name: "scheme is case insensitive", values: []string{"bearer abc"}, wantToken: "abc"},
		{name: "surrounding space", values: []string{"  Bearer   abc  "}, wantToken: "abc"},
		{name: "missing header", wantErr: ErrMissingAuthzHeader},
		{name: "blank header", values: []string{"   "}, wantErr: ErrMissingAuthzHeader},
		{name: "no token part", values: []string{"Bearer"}, wantErr: ErrInvalidAuthzHeader},
		{name: "basic scheme", values: []string{"Basic dXNlcjpwYXNz"}, wantErr: ErrUnsupportedAuthzScheme},
		{name: "empty token", values: []string{"Bearer  "}, wantErr: ErrInvalidAuthzHeader},
		{name: "repeated header", values: []string{"Bearer a", "Bearer b"}, wantErr: ErrInvalidAuthzHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for _, v := range tt.values {
				h.Add("Authorization", v)
			}

			token, err := BearerToken(h)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestSetNoStore(t *testing.T) {
	h := http.Header{}
	h.Set("Cache-Control", "max-age=60")

	SetNoStore(h)

	assert.Equal(t, "no-store, private", h.Get("Cache-Control"))
	assert.Equal(t, "no-cache", h.Get("Pragma"))
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
}
