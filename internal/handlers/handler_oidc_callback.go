package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"batch-release/internal/auth"
	"batch-release/internal/middlewares"
)

func GETCallbackHandler(ctx *middlewares.AppContext) {
	query := ctx.Request.URL.Query()
	if errorParam := query.Get("error"); errorParam != "" {
		ctx.Logger.Warn("OIDC callback error", "error", errorParam, "description", query.Get("error_description"))
		ctx.Redirect(providerErrorURL(query), http.StatusFound)
		return
	}

	result, err := ctx.OIDCProvider.CompleteLogin(ctx)
	if err != nil {
		ctx.Logger.Error("Failed to complete login", "error", err)

		var oidcErr *auth.OIDCError
		if errors.As(err, &oidcErr) && oidcErr.RedirectURL != "" {
			ctx.Redirect(oidcErr.RedirectURL, http.StatusFound)
			return
		}
		ctx.Redirect(authFailedURL, http.StatusFound)
		return
	}

	if err := ctx.SessionManager.SignIn(ctx, result.User, result.ExpiresAt); err != nil {
		ctx.Logger.Error("Failed to sign in", "error", err)
		ctx.Redirect(authFailedURL, http.StatusFound)
		return
	}

	ctx.Logger.Info("User signed in",
		"user_id", result.User.Sub,
		"username", result.User.Username,
		"email", RedactEmail(result.User.Email),
	)

	returnTo := result.ReturnTo
	if returnTo == "" {
		returnTo = "/"
	}
	ctx.Redirect(returnTo, http.StatusFound)
}

// providerErrorURL forwards the provider's error parameters to the error page.
func providerErrorURL(query url.Values) string {
	errorURL := "/error?error=" + url.QueryEscape(query.Get("error"))
	for _, key := range []string{"error_description", "error_uri", "state"} {
		if v := query.Get(key); v != "" {
			errorURL += "&" + key + "=" + url.QueryEscape(v)
		}
	}
	return errorURL
}

var authFailedURL = "/error?error=" + url.QueryEscape("server error") +
	"&error_description=" + url.QueryEscape("authentication failed")
