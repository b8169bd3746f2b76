package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"batch-release/internal/middlewares"
)

func GETLoginHandler(ctx *middlewares.AppContext) {
	if ctx.Config.OIDC.Disabled {
		ctx.SetJSONError(http.StatusServiceUnavailable, "login is disabled")
		return
	}

	if user, ok := ctx.SessionManager.GetAuthenticatedUser(ctx); ok && user != nil {
		ctx.Logger.Debug("User already authenticated", "user_id", user.Sub)
		ctx.SetJSONStatus(http.StatusOK, "ok")
		return
	}

	returnTo := ctx.Request.URL.Query().Get("rd")
	if returnTo == "" {
		returnTo = ctx.Request.Header.Get("Referer")
	}
	returnTo = safeReturnTo(ctx.Config.Server.ExternalURL, returnTo)

	authURL, err := ctx.OIDCProvider.StartLogin(ctx, returnTo)
	if err != nil {
		ctx.Logger.Error("Failed to start login", "error", err)
		ctx.SetJSONError(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx.Logger.Debug("Redirecting to OIDC Provider", "return_to", returnTo)

	ctx.WriteJSON(http.StatusOK, map[string]string{
		"status":       "redirect_required",
		"redirect_url": authURL,
	})
}

// safeReturnTo keeps post-login redirects on this site. Relative paths pass,
// absolute URLs must share the external URL's origin, and the error page is
// never a destination.
func safeReturnTo(externalURL, raw string) string {
	if raw == "" {
		return "/"
	}

	target, err := url.Parse(raw)
	if err != nil || strings.HasPrefix(target.Path, "/error") {
		return "/"
	}

	if target.Scheme == "" && target.Host == "" {
		if !strings.HasPrefix(target.Path, "/") {
			return "/"
		}
		return target.RequestURI()
	}

	base, err := url.Parse(externalURL)
	if err != nil || !strings.EqualFold(base.Scheme, target.Scheme) || !strings.EqualFold(base.Host, target.Host) {
		return "/"
	}
	return target.RequestURI()
}
