package handlers

import (
	"net/http"

	"batch-release/internal/middlewares"
	"batch-release/internal/models"
)

type AuthStatusResponse struct {
	Authenticated bool         `json:"authenticated"`
	LoginEnabled  bool         `json:"login_enabled"`
	CanSign       bool         `json:"can_sign"`
	SignerName    string       `json:"signer_name,omitempty"`
	User          *models.User `json:"user,omitempty"`
}

// GETAuthStatusHandler reports who the caller is. A bearer token resolved by
// OptionalAuth counts as well as a browser session.
func GETAuthStatusHandler(ctx *middlewares.AppContext) {
	response := AuthStatusResponse{
		LoginEnabled: !ctx.Config.OIDC.Disabled,
	}

	if !response.LoginEnabled {
		ctx.WriteJSON(http.StatusOK, response)
		return
	}

	user := ctx.GetPrincipal()
	if user == nil {
		if sessionUser, ok := ctx.SessionManager.GetAuthenticatedUser(ctx); ok {
			user = sessionUser
		}
	}
	if user == nil {
		ctx.WriteJSON(http.StatusUnauthorized, response)
		return
	}

	response.Authenticated = true
	response.User = user
	response.SignerName = user.SignerName()
	response.CanSign = response.SignerName != ""
	ctx.WriteJSON(http.StatusOK, response)
}
