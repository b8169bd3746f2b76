package middlewares

import "batch-release/internal/models"

//go:generate mockgen -source=oidc_provider.go -destination=../mocks/oidc.go -package=mocks

type OIDCProvider interface {
	// StartLogin records a pending login in the session and returns the
	// provider URL the browser should visit.
	StartLogin(ctx *AppContext, returnTo string) (string, error)
	CompleteLogin(ctx *AppContext) (*models.LoginResult, error)
	// VerifyIDToken checks a raw ID token presented as a bearer credential.
	VerifyIDToken(ctx *AppContext, rawToken string) (*models.User, error)
}
