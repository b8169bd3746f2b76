package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"batch-release/internal/data"
)

const printKeyPrefix = "print:"

var ErrPrintTicketInvalid = errors.New("print ticket is invalid or already used")

// PrintTickets issues one-time tokens for the print window. Issuing leases
// the document so a concurrent re-render or close cannot pull it out from
// under the print dialog.
type PrintTickets struct {
	store  *Store
	cache  data.CacheProvider
	ttl    time.Duration
	logger *slog.Logger

	mu     sync.Mutex
	leases map[string]func()
}

func NewPrintTickets(store *Store, cache data.CacheProvider, ttl time.Duration, logger *slog.Logger) *PrintTickets {
	return &PrintTickets{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		leases: make(map[string]func()),
	}
}

func (p *PrintTickets) TTL() time.Duration {
	return p.ttl
}

func (p *PrintTickets) Issue(ctx context.Context, handle string) (string, error) {
	release, err := p.store.Lease(handle)
	if err != nil {
		return "", err
	}

	token := uuid.NewString()
	if err := p.cache.SetKey(ctx, printKeyPrefix+token, handle, p.ttl); err != nil {
		release()
		return "", fmt.Errorf("failed to store print ticket: %w", err)
	}

	p.mu.Lock()
	p.leases[token] = release
	p.mu.Unlock()

	time.AfterFunc(p.ttl, func() { p.drop(token) })
	return token, nil
}

// Redeem consumes the ticket and returns the leased document bytes.
func (p *PrintTickets) Redeem(ctx context.Context, token string) ([]byte, error) {
	handle, err := p.cache.GetDelKey(ctx, printKeyPrefix+token)
	if err != nil {
		if !errors.Is(err, data.ErrCacheMiss) {
			p.logger.Warn("print ticket lookup failed", "error", err)
		}
		return nil, ErrPrintTicketInvalid
	}
	defer p.drop(token)

	doc, err := p.store.Open(handle)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Outstanding reports how many tickets still hold a lease.
func (p *PrintTickets) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.leases)
}

func (p *PrintTickets) drop(token string) {
	p.mu.Lock()
	release, ok := p.leases[token]
	delete(p.leases, token)
	p.mu.Unlock()

	if ok {
		release()
	}
}
