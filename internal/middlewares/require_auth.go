package middlewares

import (
	"errors"
	"net/http"

	"batch-release/internal/utils"
)

// OptionalAuth attaches the caller's identity when one is presented. A bearer
// token that fails verification is still rejected.
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		appCtx := GetAppContext(r)
		if appCtx == nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if !authenticate(appCtx, r) {
			appCtx.SetJSONError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAuth admits requests from a logged in session or with a valid
// bearer ID token. With OIDC disabled every request is admitted anonymously.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		appCtx := GetAppContext(r)
		if appCtx == nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if !authenticate(appCtx, r) {
			appCtx.SetJSONError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
			return
		}

		if appCtx.GetPrincipal() == nil && !appCtx.Config.OIDC.Disabled {
			appCtx.SetJSONError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the principal once per request and reports false
// only for a bearer token that was presented and rejected.
func authenticate(ctx *AppContext, r *http.Request) bool {
	if ctx.authDone || ctx.Config.OIDC.Disabled || ctx.OIDCProvider == nil {
		return true
	}
	ctx.authDone = true

	token, err := utils.BearerToken(r.Header)
	switch {
	case err == nil:
		user, err := ctx.OIDCProvider.VerifyIDToken(ctx, token)
		if err != nil {
			ctx.Logger.Debug("rejected bearer token", "error", err)
			return false
		}
		ctx.SetPrincipal(user)
		return true
	case !errors.Is(err, utils.ErrMissingAuthzHeader):
		ctx.Logger.Debug("malformed authorization header", "error", err)
		return false
	}

	if user, ok := ctx.SessionManager.GetAuthenticatedUser(ctx); ok {
		ctx.SetPrincipal(user)
	}
	return true
}
