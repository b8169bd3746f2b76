package auth

import (
	"fmt"

	"batch-release/internal/models"

	"github.com/coreos/go-oidc/v3/oidc"
)

type idTokenClaims struct {
	Nonce       string `json:"nonce"`
	Username    string `json:"preferred_username"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// extractUserClaimsFromToken builds the user from a verified ID token and
// returns the nonce it carried.
func extractUserClaimsFromToken(idToken *oidc.IDToken) (*models.User, string, error) {
	if idToken.Subject == "" {
		return nil, "", ErrMissingSubject
	}

	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, "", fmt.Errorf("failed to parse id token claims: %w", err)
	}

	return userFromClaims(idToken.Issuer, idToken.Subject, claims), claims.Nonce, nil
}

func userFromClaims(iss, sub string, claims idTokenClaims) *models.User {
	return &models.User{
		Sub:         sub,
		Iss:         iss,
		Username:    claims.Username,
		DisplayName: getPreferredValue(claims.DisplayName, claims.Name),
		Email:       claims.Email,
	}
}

// getPreferredValue returns the first non-empty string from the provided values
func getPreferredValue(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
