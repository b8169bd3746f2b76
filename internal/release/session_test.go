package release

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"batch-release/internal/models"
	"batch-release/internal/region"
	"batch-release/internal/viewer"
)

// fakeRenderer writes a readable summary of the data it was asked to render.
// A gate registered for an exception value blocks that render until closed.
type fakeRenderer struct {
	mu    sync.Mutex
	gates map[bool]chan struct{}
	fail  error
	calls int
}

func (r *fakeRenderer) Render(ctx context.Context, data models.CertificateData) ([]byte, error) {
	r.mu.Lock()
	r.calls++
	fail := r.fail
	var gate chan struct{}
	if data.Exception != nil && data.Signature == nil {
		gate = r.gates[*data.Exception]
	}
	r.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if fail != nil {
		return nil, fail
	}

	exception := "unset"
	if data.Exception != nil {
		exception = fmt.Sprint(*data.Exception)
	}
	signedBy := ""
	if data.Signature != nil {
		signedBy = data.Signature.SignedBy
	}
	return []byte(fmt.Sprintf("batch=%s exception=%s signedBy=%s", data.Record.BatchNumber, exception, signedBy)), nil
}

func (r *fakeRenderer) setFail(err error) {
	r.mu.Lock()
	r.fail = err
	r.mu.Unlock()
}

type fakePrinter struct {
	mu      sync.Mutex
	handles []string
	err     error
}

func (p *fakePrinter) Print(ctx context.Context, handle string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.handles = append(p.handles, handle)
	return "ticket-" + handle, nil
}

func (p *fakePrinter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.handles)
}

type harness struct {
	store    *viewer.Store
	renderer *fakeRenderer
	printer  *fakePrinter
	deps     Deps
	now      time.Time
}

func newHarness() *harness {
	h := &harness{
		store:    viewer.NewStore(nil),
		renderer: &fakeRenderer{gates: map[bool]chan struct{}{}},
		printer:  &fakePrinter{},
		now:      time.Date(2026, 3, 4, 10, 15, 30, 0, time.UTC),
	}
	h.deps = Deps{
		Renderers: RendererFactoryFunc(func(ctx context.Context, record models.CertificateRecord) (Renderer, error) {
			return h.renderer, nil
		}),
		Regions:    region.NewResolver(nil, time.Second, nil),
		Printer:    h.printer,
		Publishers: func() DocumentPublisher { return viewer.NewSlot(h.store) },
		Now:        func() time.Time { return h.now },
	}
	return h
}

func (h *harness) current(t *testing.T, s *Session) string {
	t.Helper()
	doc, err := h.store.Open(s.Snapshot().Handle)
	require.NoError(t, err)
	return string(doc)
}

func indiaRecord() models.CertificateRecord {
	return models.CertificateRecord{BatchNumber: "B-1001", PatientName: "Jane Doe", Country: "IN"}
}

func at(code string) region.Locator {
	return region.LocatorFunc(func(ctx context.Context) (region.Position, error) {
		return region.Position{Region: code}, nil
	})
}

func TestOpen_RendersUnsignedWithoutException(t *testing.T) {
	h := newHarness()
	s, err := Open(context.Background(), "v1", "owner", indiaRecord(), h.deps)
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, models.StateUnsigned, snap.State)
	assert.False(t, snap.Exception)
	assert.False(t, snap.CanPrint)
	assert.Equal(t, "batch=B-1001 exception=false signedBy=", h.current(t, s))
}

func TestOpen_RenderFailurePublishesNothing(t *testing.T) {
	h := newHarness()
	h.renderer.setFail(errors.New("bad template"))

	_, err := Open(context.Background(), "v1", "owner", indiaRecord(), h.deps)
	assert.Error(t, err)
	assert.Equal(t, 0, h.store.Len())
}

func TestSetException_Republishes(t *testing.T) {
	h := newHarness()
	s, err := Open(context.Background(), "v1", "owner", indiaRecord(), h.deps)
	require.NoError(t, err)
	first := s.Snapshot().Handle

	require.NoError(t, s.SetException(context.Background(), true))

	snap := s.Snapshot()
	assert.True(t, snap.Exception)
	assert.Equal(t, models.StateUnsigned, snap.State)
	assert.NotEqual(t, first, snap.Handle)
	assert.Equal(t, "batch=B-1001 exception=true signedBy=", h.current(t, s))
	assert.Equal(t, 1, h.store.Len())
}

func TestSetException_RapidDoubleToggle(t *testing.T) {
	h := newHarness()
	s, err := Open(context.Background(), "v1", "owner", indiaRecord(), h.deps)
	require.NoError(t, err)

	slow := make(chan struct{})
	h.renderer.mu.Lock()
	h.renderer.gates[true] = slow
	h.renderer.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- s.SetException(context.Background(), true) }()

	require.Eventually(t, func() bool {
		h.renderer.mu.Lock()
		defer h.renderer.mu.Unlock()
		return h.renderer.calls == 2
	}, time.Second, time.Millisecond)

	require.NoError(t, s.SetException(context.Background(), false))
	close(slow)
	require.NoError(t, <-done)

	snap := s.Snapshot()
	assert.False(t, snap.Exception)
	assert.Equal(t, "batch=B-1001 exception=false signedBy=", h.current(t, s))
	assert.Equal(t, 1, h.store.Len())
}

func TestSetException_FailureKeepsPreviousDocument(t *testing.T) {
	h := newHarness()
	s, err := Open(context.Background(), "v1", "owner", indiaRecord(), h.deps)
	require.NoError(t, err)
	before := s.Snapshot().Handle

	h.renderer.setFail(errors.New("render exploded"))
	assert.Error(t, s.SetException(context.Background(), true))

	snap := s.Snapshot()
	assert.Equal(t, before, snap.Handle)
	assert.False(t, snap.Exception)
}

func TestSign_ForwardOnly(t *testing.T) {
	h := newHarness()
	s, err := Open(context.Background(), "v1", "owner", indiaRecord(), h.deps)
	require.NoError(t, err)
	require.NoError(t, s.SetException(context.Background(), true))

	sig, err := s.Sign(context.Background(), "Ada QA")
	require.NoError(t, err)
	assert.Equal(t, "Ada QA", sig.SignedBy)
	assert.Equal(t, h.now, sig.SignedAt)
	assert.True(t, sig.Exception)

	snap := s.Snapshot()
	assert.Equal(t, models.StateSigned, snap.State)
	assert.True(t, snap.CanPrint)
	assert.Equal(t, "batch=B-1001 exception=true signedBy=Ada QA", h.current(t, s))

	_, err = s.Sign(context.Background(), "Ada QA")
	assert.ErrorIs(t, err, ErrAlreadySigned)
	assert.ErrorIs(t, s.SetException(context.Background(), false), ErrAlreadySigned)
	assert.Equal(t, models.StateSigned, s.Snapshot().State)
}

func TestSign_FailureStaysUnsigned(t *testing.T) {
	h := newHarness()
	s, err := Open(context.Background(), "v1", "owner", indiaRecord(), h.deps)
	require.NoError(t, err)
	before := s.Snapshot().Handle

	_, err = s.Sign(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSigner)

	h.renderer.setFail(errors.New("render exploded"))
	_, err = s.Sign(context.Background(), "Ada QA")
	assert.Error(t, err)

	snap := s.Snapshot()
	assert.Equal(t, models.StateUnsigned, snap.State)
	assert.Nil(t, snap.Signature)
	assert.Equal(t, before, snap.Handle)
}

func TestSign_SupersedesInFlightToggle(t *testing.T) {
	h := newHarness()
	s, err := Open(context.Background(), "v1", "owner", indiaRecord(), h.deps)
	require.NoError(t, err)

	slow := make(chan struct{})
	h.renderer.mu.Lock()
	h.renderer.gates[true] = slow
	h.renderer.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- s.SetException(context.Background(), true) }()
	require.Eventually(t, func() bool {
		h.renderer.mu.Lock()
		defer h.renderer.mu.Unlock()
		return h.renderer.calls == 2
	}, time.Second, time.Millisecond)

	sig, err := s.Sign(context.Background(), "Ada QA")
	require.NoError(t, err)
	assert.True(t, sig.Exception, "sign captures the latest requested flag")

	close(slow)
	require.NoError(t, <-done)

	assert.Equal(t, "batch=B-1001 exception=true signedBy=Ada QA", h.current(t, s))
}

func TestSign_FailureRestoresDisplayedException(t *testing.T) {
	h := newHarness()
	s, err := Open(context.Background(), "v1", "owner", indiaRecord(), h.deps)
	require.NoError(t, err)

	slow := make(chan struct{})
	h.renderer.mu.Lock()
	h.renderer.gates[true] = slow
	h.renderer.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- s.SetException(context.Background(), true) }()
	require.Eventually(t, func() bool {
		h.renderer.mu.Lock()
		defer h.renderer.mu.Unlock()
		return h.renderer.calls == 2
	}, time.Second, time.Millisecond)

	h.renderer.setFail(errors.New("render exploded"))
	_, err = s.Sign(context.Background(), "Ada QA")
	require.Error(t, err)

	close(slow)
	require.NoError(t, <-done)

	snap := s.Snapshot()
	assert.Equal(t, models.StateUnsigned, snap.State)
	assert.False(t, snap.Exception)
	assert.Equal(t, "batch=B-1001 exception=false signedBy=", h.current(t, s))
}

func TestSetException_ClosedDuringRender(t *testing.T) {
	h := newHarness()
	s, err := Open(context.Background(), "v1", "owner", indiaRecord(), h.deps)
	require.NoError(t, err)

	slow := make(chan struct{})
	h.renderer.mu.Lock()
	h.renderer.gates[true] = slow
	h.renderer.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- s.SetException(context.Background(), true) }()
	require.Eventually(t, func() bool {
		h.renderer.mu.Lock()
		defer h.renderer.mu.Unlock()
		return h.renderer.calls == 2
	}, time.Second, time.Millisecond)

	s.Close()
	close(slow)

	assert.ErrorIs(t, <-done, ErrSessionClosed)
	assert.Equal(t, 0, h.store.Len())
}

func TestPrint_RegionScenario(t *testing.T) {
	h := newHarness()
	s, err := Open(context.Background(), "v1", "owner", indiaRecord(), h.deps)
	require.NoError(t, err)

	_, err = s.Print(context.Background(), at("IN"))
	assert.ErrorIs(t, err, ErrNotSigned)
	assert.Equal(t, 0, h.printer.count())

	_, err = s.Sign(context.Background(), "Ada QA")
	require.NoError(t, err)

	res, err := s.Print(context.Background(), at("in"))
	require.NoError(t, err)
	assert.True(t, res.Printed)
	assert.Equal(t, "ticket-"+s.Snapshot().Handle, res.Ticket)
	assert.Equal(t, 1, h.printer.count())

	res, err = s.Print(context.Background(), at("US"))
	require.NoError(t, err)
	assert.False(t, res.Printed)
	assert.Equal(t, NoticeCannotPrint, res.Notice)
	assert.Equal(t, 1, h.printer.count(), "no print call on mismatch")

	assert.Equal(t, models.StateSigned, s.Snapshot().State)
}

func TestPrint_UnavailableRegion(t *testing.T) {
	h := newHarness()
	s, err := Open(context.Background(), "v1", "owner", indiaRecord(), h.deps)
	require.NoError(t, err)
	_, err = s.Sign(context.Background(), "Ada QA")
	require.NoError(t, err)

	denied := region.LocatorFunc(func(ctx context.Context) (region.Position, error) {
		return region.Position{}, region.ErrPermissionDenied
	})
	res, err := s.Print(context.Background(), denied)
	require.NoError(t, err)
	assert.False(t, res.Printed)
	assert.Equal(t, NoticeCannotPrint, res.Notice)
	assert.False(t, res.Region.Available)
	assert.Equal(t, 0, h.printer.count())
}

func TestPrint_Blocked(t *testing.T) {
	h := newHarness()
	h.printer.err = fmt.Errorf("%w: document gone", ErrPrintBlocked)
	s, err := Open(context.Background(), "v1", "owner", indiaRecord(), h.deps)
	require.NoError(t, err)
	_, err = s.Sign(context.Background(), "Ada QA")
	require.NoError(t, err)

	res, err := s.Print(context.Background(), at("IN"))
	require.NoError(t, err)
	assert.False(t, res.Printed)
	assert.Equal(t, NoticePrintBlocked, res.Notice)
}

func TestClose_RetractsAndRejects(t *testing.T) {
	h := newHarness()
	s, err := Open(context.Background(), "v1", "owner", indiaRecord(), h.deps)
	require.NoError(t, err)

	s.Close()
	s.Close()
	assert.Equal(t, 0, h.store.Len())

	assert.ErrorIs(t, s.SetException(context.Background(), true), ErrSessionClosed)
	_, err = s.Sign(context.Background(), "Ada QA")
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = s.Print(context.Background(), at("IN"))
	assert.ErrorIs(t, err, ErrSessionClosed)
}
