package auth

import (
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"batch-release/internal/config"
	"batch-release/internal/data"
	"batch-release/internal/middlewares"
	"batch-release/internal/models"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/google/uuid"
)

const (
	keyUser         = "user"
	keyUserExpires  = "user_expires_at"
	keyPendingLogin = "pending_login"
	keyViewerOwner  = "viewer_owner"
)

// SessionManager keeps browser sessions in scs. A session carries at most one
// signed-in user, one login in progress, and the owner id for the viewers it
// opened.
type SessionManager struct {
	sessions *scs.SessionManager
	now      func() time.Time
}

func NewSessionManager(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*SessionManager, error) {
	gob.Register(&models.User{})
	gob.Register(&models.PendingLogin{})

	sessions := scs.New()

	switch cfg.Sessions.Store {
	case "memory":
		sessions.Store = memstore.New()
	case "redis":
		if cfg.Redis == nil {
			return nil, fmt.Errorf("redis session store requires a redis section")
		}
		client, err := data.NewRedisClient(ctx, cfg, cfg.Redis.SessionIndex, "sessions", logger)
		if err != nil {
			return nil, err
		}
		sessions.Store = goredisstore.New(client)
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.Sessions.Store)
	}

	sessions.Lifetime = cfg.Sessions.FixedTimeout
	sessions.Cookie.Name = cfg.Sessions.Name
	sessions.Cookie.HttpOnly = true
	sessions.Cookie.SameSite = http.SameSiteLaxMode
	sessions.Cookie.Secure = cfg.Sessions.Secure
	sessions.Cookie.Path = "/"
	sessions.ErrorFunc = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("session store failed", "error", err, "path", r.URL.Path)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}

	return &SessionManager{sessions: sessions, now: time.Now}, nil
}

func (s *SessionManager) LoadAndSave(next http.Handler) http.Handler {
	return s.sessions.LoadAndSave(next)
}

func (s *SessionManager) BeginLogin(ctx *middlewares.AppContext, pending *models.PendingLogin) {
	s.sessions.Put(ctx, keyPendingLogin, pending)
}

func (s *SessionManager) TakePendingLogin(ctx *middlewares.AppContext) (*models.PendingLogin, bool) {
	pending, ok := s.sessions.Pop(ctx, keyPendingLogin).(*models.PendingLogin)
	return pending, ok && pending != nil
}

// SignIn stores user until expiresAt. The session token is renewed first so a
// token fixed before login cannot be reused after it.
func (s *SessionManager) SignIn(ctx *middlewares.AppContext, user *models.User, expiresAt time.Time) error {
	if !expiresAt.After(s.now()) {
		return ErrTokenExpired
	}

	if err := s.sessions.RenewToken(ctx); err != nil {
		return fmt.Errorf("failed to renew session token: %w", err)
	}

	s.sessions.Put(ctx, keyUser, user)
	s.sessions.Put(ctx, keyUserExpires, expiresAt.Unix())
	return nil
}

// GetAuthenticatedUser returns the signed-in user, dropping it from the
// session once its ID token has expired.
func (s *SessionManager) GetAuthenticatedUser(ctx *middlewares.AppContext) (*models.User, bool) {
	user, ok := s.sessions.Get(ctx, keyUser).(*models.User)
	if !ok || user == nil {
		return nil, false
	}

	if expires := s.sessions.GetInt64(ctx, keyUserExpires); expires != 0 && !s.now().Before(time.Unix(expires, 0)) {
		s.sessions.Remove(ctx, keyUser)
		s.sessions.Remove(ctx, keyUserExpires)
		return nil, false
	}

	return user, true
}

func (s *SessionManager) ViewerOwner(ctx *middlewares.AppContext) string {
	owner := s.sessions.GetString(ctx, keyViewerOwner)
	if owner == "" {
		owner = "session:" + uuid.NewString()
		s.sessions.Put(ctx, keyViewerOwner, owner)
	}
	return owner
}

func (s *SessionManager) Logout(ctx *middlewares.AppContext) error {
	return s.sessions.Destroy(ctx)
}
