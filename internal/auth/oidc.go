package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"batch-release/internal/config"
	"batch-release/internal/middlewares"
	"batch-release/internal/models"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// NewRealOIDCProvider discovers the issuer and prepares both the login flow
// and the bearer token verifier.
func NewRealOIDCProvider(ctx context.Context, cfg config.OIDCConfig) (middlewares.OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}
	return newOIDCProvider(provider, provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}), cfg), nil
}

func newOIDCProvider(provider *oidc.Provider, verifier *oidc.IDTokenVerifier, cfg config.OIDCConfig) *RealOIDCProvider {
	return &RealOIDCProvider{
		provider: provider,
		verifier: verifier,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     provider.Endpoint(),
			Scopes:       cfg.Scopes,
			RedirectURL:  cfg.RedirectURI,
		},
	}
}

type RealOIDCProvider struct {
	provider     *oidc.Provider
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

func (r *RealOIDCProvider) StartLogin(ctx *middlewares.AppContext, returnTo string) (string, error) {
	state, err := randomToken()
	if err != nil {
		return "", err
	}
	nonce, err := randomToken()
	if err != nil {
		return "", err
	}
	verifier := oauth2.GenerateVerifier()

	ctx.SessionManager.BeginLogin(ctx, &models.PendingLogin{
		State:        state,
		Nonce:        nonce,
		CodeVerifier: verifier,
		ReturnTo:     returnTo,
	})

	return r.oauth2Config.AuthCodeURL(state,
		oidc.Nonce(nonce),
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "login"),
	), nil
}

// CompleteLogin redeems the authorization code on the callback request. The
// pending login is consumed whether or not the exchange succeeds.
func (r *RealOIDCProvider) CompleteLogin(ctx *middlewares.AppContext) (*models.LoginResult, error) {
	query := ctx.Request.URL.Query()

	pending, ok := ctx.SessionManager.TakePendingLogin(ctx)
	if !ok {
		return nil, newOIDCError("invalid_request", "No login in progress", "no pending login in session")
	}

	if subtle.ConstantTimeCompare([]byte(query.Get("state")), []byte(pending.State)) != 1 {
		return nil, newOIDCError("invalid_request", "Invalid state parameter", "invalid state parameter")
	}

	code := query.Get("code")
	if code == "" {
		return nil, newOIDCError("invalid_request", "No authorization code received", "no authorization code received")
	}

	token, err := r.oauth2Config.Exchange(ctx, code, oauth2.VerifierOption(pending.CodeVerifier))
	if err != nil {
		return nil, newOIDCError("invalid_grant", "Failed to exchange code for token", fmt.Sprintf("failed to exchange code for token: %v", err))
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, newOIDCError("invalid_token", "No id_token found in oauth2 token", "no id_token found in oauth2 token")
	}

	idToken, err := r.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, newOIDCError("invalid_token", "Failed to verify ID Token", fmt.Sprintf("failed to verify ID Token: %v", err))
	}

	user, nonce, err := extractUserClaimsFromToken(idToken)
	if err != nil {
		return nil, newOIDCError("server_error", "Failed to extract user from ID Token", fmt.Sprintf("failed to extract user from ID Token: %v", err))
	}

	if subtle.ConstantTimeCompare([]byte(nonce), []byte(pending.Nonce)) != 1 {
		return nil, newOIDCError("server_error", "Invalid Nonce", "nonce in ID Token is invalid")
	}

	if enriched, err := r.fetchUserInfo(ctx, token, user); err != nil {
		ctx.Logger.Warn("Failed to fetch user info, using ID token data only", "error", err)
	} else {
		user = enriched
	}

	return &models.LoginResult{User: user, ExpiresAt: idToken.Expiry, ReturnTo: pending.ReturnTo}, nil
}

// VerifyIDToken accepts an ID token issued to this client as a bearer
// credential. Nonces are not checked since no login flow preceded it.
func (r *RealOIDCProvider) VerifyIDToken(ctx *middlewares.AppContext, rawToken string) (*models.User, error) {
	idToken, err := r.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	user, _, err := extractUserClaimsFromToken(idToken)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// fetchUserInfo fills in profile fields the ID token left out. The subject and
// issuer always come from the verified token.
func (r *RealOIDCProvider) fetchUserInfo(ctx context.Context, token *oauth2.Token, base *models.User) (*models.User, error) {
	userInfo, err := r.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	if userInfo.Subject != base.Sub {
		return nil, fmt.Errorf("user info subject %q does not match id token", userInfo.Subject)
	}

	var claims idTokenClaims
	if err := userInfo.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse user info claims: %w", err)
	}

	return &models.User{
		Sub:         base.Sub,
		Iss:         base.Iss,
		Username:    getPreferredValue(claims.Username, base.Username),
		DisplayName: getPreferredValue(claims.DisplayName, claims.Name, base.DisplayName),
		Email:       getPreferredValue(claims.Email, base.Email),
	}, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
