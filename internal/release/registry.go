package release

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"batch-release/internal/models"
)

// Registry tracks the open viewer sessions of this process.
type Registry struct {
	deps     Deps
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(deps Deps) *Registry {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Registry{
		deps:     deps,
		sessions: make(map[string]*Session),
	}
}

// Create opens a new session for record, owned by owner.
func (r *Registry) Create(ctx context.Context, owner string, record models.CertificateRecord) (*Session, error) {
	session, err := Open(ctx, uuid.NewString(), owner, record, r.deps)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[session.ID()] = session
	r.mu.Unlock()

	return session, nil
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrViewerNotFound
	}
	return session, nil
}

// Close removes and closes the session. Unknown ids are ignored.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	session, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		session.Close()
	}
}

// Sweep closes sessions idle for longer than maxIdle and returns how many
// it closed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	now := r.deps.Now()

	r.mu.Lock()
	var stale []*Session
	for id, session := range r.sessions {
		if session.idleSince(now) > maxIdle {
			stale = append(stale, session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, session := range stale {
		session.Close()
	}
	return len(stale)
}

// CloseAll closes every session, used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
