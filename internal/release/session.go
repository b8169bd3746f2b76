// Package release drives a certificate through Unsigned, Signed and print.
package release

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"batch-release/internal/metrics"
	"batch-release/internal/models"
	"batch-release/internal/region"
)

// Deps are the collaborators a Session needs.
type Deps struct {
	Renderers     RendererFactory
	Regions       RegionProvider
	Printer       PrintInvoker
	Publishers    func() DocumentPublisher
	Now           func() time.Time
	Logger        *slog.Logger
	RenderMode    string
	// RenderTimeout bounds each render when positive.
	RenderTimeout time.Duration
}

// Snapshot is a consistent copy of a session's visible state.
type Snapshot struct {
	ID         string
	Owner      string
	Record     models.CertificateRecord
	State      models.ReleaseState
	Exception  bool
	Signature  *models.SignatureMetadata
	Handle     string
	CanPrint   bool
	LastActive time.Time
	Closed     bool
}

// PrintResult is what a print attempt produced. Ticket is set only when
// Printed is true.
type PrintResult struct {
	Printed bool
	Notice  string
	Ticket  string
	Region  region.Result
}

// Session is one viewer's release workflow. State changes are serialised by
// mu; rendering happens outside the lock and is ordered by generation.
type Session struct {
	id       string
	owner    string
	record   models.CertificateRecord
	renderer Renderer
	regions  RegionProvider
	printer  PrintInvoker
	docs     DocumentPublisher
	now      func() time.Time
	logger   *slog.Logger
	mode     string
	timeout  time.Duration

	mu                sync.Mutex
	state             models.ReleaseState
	exception         bool
	renderedException bool
	signature         *models.SignatureMetadata
	generation        uint64
	signing           bool
	closed            bool
	lastActive        time.Time
}

// Open prepares a renderer for record, renders the unsigned certificate with
// no exception selected and publishes it. Nothing is published on failure.
func Open(ctx context.Context, id, owner string, record models.CertificateRecord, deps Deps) (*Session, error) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mode := deps.RenderMode
	if mode == "" {
		mode = metrics.RenderModeTemplate
	}

	renderer, err := deps.Renderers.Prepare(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare renderer: %w", err)
	}

	s := &Session{
		id:         id,
		owner:      owner,
		record:     record,
		renderer:   renderer,
		regions:    deps.Regions,
		printer:    deps.Printer,
		docs:       deps.Publishers(),
		now:        now,
		logger:     logger.With("viewer_id", id, "batch_number", record.BatchNumber),
		mode:       mode,
		timeout:    deps.RenderTimeout,
		state:      models.StateUnsigned,
		lastActive: now(),
	}

	exception := false
	doc, err := s.render(ctx, models.CertificateData{Record: record, Exception: &exception})
	if err != nil {
		s.docs.Close()
		return nil, fmt.Errorf("failed to render certificate: %w", err)
	}
	if _, err := s.docs.Replace(doc); err != nil {
		s.docs.Close()
		return nil, fmt.Errorf("failed to publish certificate: %w", err)
	}

	metrics.ViewerSessions.Inc()
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Owner() string {
	return s.owner
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		ID:         s.id,
		Owner:      s.owner,
		Record:     s.record,
		State:      s.state,
		Exception:  s.exception,
		Signature:  s.signature,
		Handle:     s.docs.Current(),
		CanPrint:   s.state.CanPrint() && !s.closed,
		LastActive: s.lastActive,
		Closed:     s.closed,
	}
}

// SetException re-renders the unsigned certificate with the new flag. When
// toggles overlap, only the most recently triggered render is published.
func (s *Session) SetException(ctx context.Context, exception bool) error {
	s.mu.Lock()
	if err := s.checkUnsignedLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.exception = exception
	s.generation++
	gen := s.generation
	s.lastActive = s.now()
	s.mu.Unlock()

	doc, err := s.render(ctx, models.CertificateData{Record: s.record, Exception: &exception})

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if gen != s.generation || s.state != models.StateUnsigned {
		metrics.RendersTotal.WithLabelValues(s.mode, metrics.RenderOutcomeDiscarded).Inc()
		s.logger.Debug("discarding superseded render", "generation", gen, "latest", s.generation)
		return nil
	}

	if err != nil {
		s.exception = s.renderedException
		return fmt.Errorf("failed to render certificate: %w", err)
	}

	if _, err := s.docs.Replace(doc); err != nil {
		s.exception = s.renderedException
		return fmt.Errorf("failed to publish certificate: %w", err)
	}
	s.renderedException = exception
	return nil
}

// Sign captures the current exception flag, renders the signed certificate
// and only then moves to Signed. Any failure leaves the session Unsigned with
// its previous document.
func (s *Session) Sign(ctx context.Context, signer string) (*models.SignatureMetadata, error) {
	if signer == "" {
		return nil, ErrNoSigner
	}

	s.mu.Lock()
	if err := s.checkUnsignedLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	sig := models.NewSignatureMetadata(signer, s.now(), s.exception)
	s.generation++
	s.signing = true
	s.lastActive = s.now()
	s.mu.Unlock()

	doc, err := s.render(ctx, models.CertificateData{
		Record:    s.record,
		Signature: sig,
		Exception: &sig.Exception,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.signing = false

	if s.closed {
		return nil, ErrSessionClosed
	}
	if err != nil {
		s.exception = s.renderedException
		return nil, fmt.Errorf("failed to render signed certificate: %w", err)
	}
	if _, err := s.docs.Replace(doc); err != nil {
		s.exception = s.renderedException
		return nil, fmt.Errorf("failed to publish signed certificate: %w", err)
	}

	s.signature = sig
	s.exception = sig.Exception
	s.renderedException = sig.Exception
	s.state = models.StateSigned
	metrics.Signatures.Inc()
	s.logger.Info("certificate signed", "signed_by", sig.SignedBy, "exception", sig.Exception)

	return sig, nil
}

// Print checks the caller's region against the record's country and, on a
// match, hands the current document to the printer. A mismatch or an
// unavailable region is a notice, not an error. Print never changes state.
func (s *Session) Print(ctx context.Context, locator region.Locator) (PrintResult, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return PrintResult{}, ErrSessionClosed
	}
	if !s.state.CanPrint() {
		s.mu.Unlock()
		return PrintResult{}, ErrNotSigned
	}
	handle := s.docs.Current()
	country := s.record.Country
	s.lastActive = s.now()
	s.mu.Unlock()

	res := s.regions.Resolve(ctx, locator)
	if !res.Matches(country) {
		metrics.PrintAttempts.WithLabelValues(metrics.PrintOutcomeDenied).Inc()
		s.logger.Info("print denied", "region", res.Code, "reason", res.Reason, "country", country)
		return PrintResult{Notice: NoticeCannotPrint, Region: res}, nil
	}

	ticket, err := s.printer.Print(ctx, handle)
	if err != nil {
		if errors.Is(err, ErrPrintBlocked) {
			metrics.PrintAttempts.WithLabelValues(metrics.PrintOutcomeBlocked).Inc()
			s.logger.Warn("print blocked", "error", err)
			return PrintResult{Notice: NoticePrintBlocked, Region: res}, nil
		}
		return PrintResult{}, fmt.Errorf("failed to invoke print: %w", err)
	}

	metrics.PrintAttempts.WithLabelValues(metrics.PrintOutcomePrinted).Inc()
	return PrintResult{Printed: true, Ticket: ticket, Region: res}, nil
}

// Close retracts the live document. In-flight renders are discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.generation++
	s.docs.Close()
	metrics.ViewerSessions.Dec()
}

// Touch marks the session as used.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = s.now()
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive)
}

func (s *Session) checkUnsignedLocked() error {
	switch {
	case s.closed:
		return ErrSessionClosed
	case s.state == models.StateSigned:
		return ErrAlreadySigned
	case s.signing:
		return ErrSignInProgress
	}
	return nil
}

func (s *Session) render(ctx context.Context, data models.CertificateData) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	doc, err := s.renderer.Render(ctx, data)
	metrics.RenderDuration.WithLabelValues(s.mode).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RendersTotal.WithLabelValues(s.mode, metrics.RenderOutcomeFailed).Inc()
		s.logger.Error("render failed", "error", err)
		return nil, err
	}
	metrics.RendersTotal.WithLabelValues(s.mode, metrics.RenderOutcomeOK).Inc()
	return doc, nil
}
