package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"batch-release/internal/models"
	"batch-release/internal/testutil"

	"github.com/stretchr/testify/assert"
)

const providerURL = "https://idp.example.com/authorize?state=12345"

func loginContext(t *testing.T) *testutil.TestContext {
	tc := testutil.NewTestContextWithURL(t, "GET", "/api/v1/auth/login")
	tc.AppContext.Config.Server.ExternalURL = "https://release.example.com"
	return tc
}

func TestGetLoginHandler_ReturnTo(t *testing.T) {
	tests := []struct {
		name     string
		rd       string
		referer  string
		returnTo string
	}{
		{name: "defaults to root", returnTo: "/"},
		{name: "same origin referer", referer: "https://release.example.com/viewers/B-1001?tab=1", returnTo: "/viewers/B-1001?tab=1"},
		{name: "rd wins over referer", rd: "/viewers/B-2002", referer: "https://release.example.com/records", returnTo: "/viewers/B-2002"},
		{name: "foreign origin", rd: "https://evil.example.net/phish", returnTo: "/"},
		{name: "scheme relative", rd: "//evil.example.net/phish", returnTo: "/"},
		{name: "plain http downgrade", referer: "http://release.example.com/records", returnTo: "/"},
		{name: "error page", referer: "https://release.example.com/error?error=invalid_request", returnTo: "/"},
		{name: "relative without slash", rd: "records", returnTo: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := loginContext(t)
			defer tc.Finish()
			if tt.rd != "" {
				tc.WithQueryParam("rd", tt.rd)
			}
			if tt.referer != "" {
				tc.WithHeader("Referer", tt.referer)
			}

			tc.MockSession.EXPECT().GetAuthenticatedUser(tc.AppContext).Return(nil, false)
			tc.MockOidcProvider.EXPECT().StartLogin(tc.AppContext, tt.returnTo).Return(providerURL, nil)

			tc.CallHandler(GETLoginHandler)

			tc.AssertStatus(t, http.StatusOK)
			tc.AssertContentType(t, "application/json")
			tc.AssertJSONField(t, "status", "redirect_required")
			tc.AssertJSONField(t, "redirect_url", providerURL)
			tc.AssertLogsContainMessage(t, slog.LevelDebug, "Redirecting to OIDC Provider")
		})
	}
}

func TestGetLoginHandler_AlreadySignedIn(t *testing.T) {
	tc := loginContext(t)
	defer tc.Finish()

	tc.MockSession.EXPECT().GetAuthenticatedUser(tc.AppContext).Return(&models.User{Sub: "qa-1"}, true)

	tc.CallHandler(GETLoginHandler)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertJSONField(t, "status", "ok")
	tc.AssertLogsContainMessage(t, slog.LevelDebug, "User already authenticated")
}

func TestGetLoginHandler_StartLoginFails(t *testing.T) {
	tc := loginContext(t)
	defer tc.Finish()

	tc.MockSession.EXPECT().GetAuthenticatedUser(tc.AppContext).Return(nil, false)
	tc.MockOidcProvider.EXPECT().StartLogin(tc.AppContext, "/").Return("", errors.New("entropy exhausted"))

	tc.CallHandler(GETLoginHandler)

	tc.AssertStatus(t, http.StatusInternalServerError)
	tc.AssertJSONField(t, "error", "Internal Server Error")
	tc.AssertLogsContainMessage(t, slog.LevelError, "Failed to start login")
}

func TestGetLoginHandler_Disabled(t *testing.T) {
	tc := loginContext(t)
	defer tc.Finish()

	tc.AppContext.Config.OIDC.Disabled = true

	tc.CallHandler(GETLoginHandler)

	tc.AssertStatus(t, http.StatusServiceUnavailable)
	tc.AssertJSONField(t, "error", "login is disabled")
}

func TestSafeReturnTo_BadExternalURL(t *testing.T) {
	assert.Equal(t, "/", safeReturnTo("://broken", "https://release.example.com/records"))
	assert.Equal(t, "/records", safeReturnTo("://broken", "/records"))
}
