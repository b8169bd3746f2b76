package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"batch-release/internal/models"
	"batch-release/internal/testutil"
)

func TestLogoutHandler(t *testing.T) {
	signedIn := &models.User{Iss: "https://idp.example.com", Sub: "qa-1", Username: "ada"}

	tests := []struct {
		name       string
		user       *models.User
		logoutErr  error
		wantStatus int
		wantBody   map[string]any
		wantLog    slog.Level
		logMessage string
	}{
		{
			name:       "signed in",
			user:       signedIn,
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"status": "OK"},
			wantLog:    slog.LevelInfo,
			logMessage: "User logged out",
		},
		{
			name:       "anonymous",
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"error": "not signed in"},
		},
		{
			name:       "store failure",
			user:       signedIn,
			logoutErr:  errors.New("redis down"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]any{"error": "Internal Server Error"},
			wantLog:    slog.LevelError,
			logMessage: "Failed to logout user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewTestContextWithURL(t, "POST", "/api/v1/auth/logout")
			defer tc.Finish()

			tc.MockSession.EXPECT().GetAuthenticatedUser(tc.AppContext).Return(tt.user, tt.user != nil)
			if tt.user != nil {
				tc.MockSession.EXPECT().Logout(tc.AppContext).Return(tt.logoutErr)
			}

			tc.CallHandler(POSTLogoutHandler)

			tc.AssertStatus(t, tt.wantStatus)
			tc.AssertContentType(t, "application/json")
			for field, want := range tt.wantBody {
				tc.AssertJSONField(t, field, want)
			}
			if tt.logMessage != "" {
				tc.AssertLogsContainMessage(t, tt.wantLog, tt.logMessage)
			}
		})
	}
}
