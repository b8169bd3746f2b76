package middlewares

import (
	"net/http"
	"time"

	"batch-release/internal/models"
)

//go:generate mockgen -source=session_provider.go -destination=../mocks/session.go -package=mocks

type SessionProvider interface {
	LoadAndSave(next http.Handler) http.Handler

	BeginLogin(ctx *AppContext, pending *models.PendingLogin)
	// TakePendingLogin returns the login in progress and forgets it, so each
	// callback can be redeemed once.
	TakePendingLogin(ctx *AppContext) (*models.PendingLogin, bool)
	SignIn(ctx *AppContext, user *models.User, expiresAt time.Time) error
	GetAuthenticatedUser(ctx *AppContext) (*models.User, bool)
	Logout(ctx *AppContext) error

	// ViewerOwner returns the id that owns viewers created from this browser
	// session, minting one on first use.
	ViewerOwner(ctx *AppContext) string
}
