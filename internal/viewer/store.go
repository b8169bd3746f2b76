// Package viewer holds rendered certificates in memory and hands out the
// short-lived handles the browser uses to fetch them.
package viewer

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"batch-release/internal/metrics"
)

var ErrDocumentNotFound = errors.New("document not found")

type document struct {
	data      []byte
	leases    int
	retracted bool
}

// Store maps opaque handles to rendered bytes. A retracted handle stops
// resolving for new leases, but stays readable until every outstanding
// lease is released.
type Store struct {
	mu     sync.Mutex
	docs   map[string]*document
	logger *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		docs:   make(map[string]*document),
		logger: logger,
	}
}

// Publish stores a copy of data and returns its handle.
func (s *Store) Publish(data []byte) string {
	handle := uuid.NewString()
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.docs[handle] = &document{data: buf}
	s.mu.Unlock()

	metrics.LiveDocuments.Inc()
	return handle
}

// Retract marks the handle dead. It is a no-op for unknown handles.
func (s *Store) Retract(handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[handle]
	if !ok || doc.retracted {
		return
	}
	doc.retracted = true
	if doc.leases == 0 {
		s.free(handle)
	} else {
		s.logger.Debug("retracted document still leased", "handle", handle, "leases", doc.leases)
	}
}

// Open returns the bytes behind handle. Leased documents stay readable
// after retraction.
func (s *Store) Open(handle string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[handle]
	if !ok || (doc.retracted && doc.leases == 0) {
		return nil, ErrDocumentNotFound
	}
	return doc.data, nil
}

// Lease pins a live document. The returned func releases the lease and is
// safe to call more than once.
func (s *Store) Lease(handle string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[handle]
	if !ok || doc.retracted {
		return nil, ErrDocumentNotFound
	}
	doc.leases++

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			doc.leases--
			if doc.leases == 0 && doc.retracted {
				s.free(handle)
			}
		})
	}, nil
}

// Len reports how many documents are held, leased leftovers included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

func (s *Store) free(handle string) {
	if _, ok := s.docs[handle]; !ok {
		return
	}
	delete(s.docs, handle)
	metrics.LiveDocuments.Dec()
}
