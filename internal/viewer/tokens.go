package viewer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const documentAudience = "batch-release/document"

var ErrInvalidDocumentToken = errors.New("invalid document token")

// URLSigner binds document URLs to a handle with a short-lived HS256 token.
// An embedded PDF frame cannot send an Authorization header, so the token
// travels in the query string.
type URLSigner struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewURLSigner(key string, ttl time.Duration) *URLSigner {
	return &URLSigner{
		key: []byte(key),
		ttl: ttl,
		now: time.Now,
	}
}

func (s *URLSigner) TTL() time.Duration {
	return s.ttl
}

func (s *URLSigner) Sign(handle string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   handle,
		Audience:  jwt.ClaimStrings{documentAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign document token: %w", err)
	}
	return token, nil
}

// Verify checks the token and that it was issued for handle.
func (s *URLSigner) Verify(token, handle string) error {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(documentAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocumentToken, err)
	}
	if claims.Subject != handle {
		return fmt.Errorf("%w: token issued for another document", ErrInvalidDocumentToken)
	}
	return nil
}
