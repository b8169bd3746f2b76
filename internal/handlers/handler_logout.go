package handlers

import (
	"net/http"

	"batch-release/internal/middlewares"
)

// POSTLogoutHandler ends the browser session. Viewers the session opened stay
// registered until the idle sweep closes them.
func POSTLogoutHandler(ctx *middlewares.AppContext) {
	user, ok := ctx.SessionManager.GetAuthenticatedUser(ctx)
	if !ok || user == nil {
		ctx.SetJSONError(http.StatusBadRequest, "not signed in")
		return
	}

	if err := ctx.SessionManager.Logout(ctx); err != nil {
		ctx.Logger.Error("Failed to logout user", "user_id", user.Sub, "error", err)
		ctx.SetJSONError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	ctx.Logger.Info("User logged out", "user_id", user.Sub, "username", user.Username)
	ctx.SetJSONStatus(http.StatusOK, "OK")
}
