package release

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Lifecycle(t *testing.T) {
	h := newHarness()
	reg := NewRegistry(h.deps)

	s, err := reg.Create(context.Background(), "owner-1", indiaRecord())
	require.NoError(t, err)
	assert.Equal(t, "owner-1", s.Owner())
	assert.Equal(t, 1, reg.Len())

	got, err := reg.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	reg.Close(s.ID())
	_, err = reg.Get(s.ID())
	assert.ErrorIs(t, err, ErrViewerNotFound)
	assert.Equal(t, 0, h.store.Len())

	reg.Close("unknown")
}

func TestRegistry_Sweep(t *testing.T) {
	h := newHarness()
	clock := h.now
	h.deps.Now = func() time.Time { return clock }
	reg := NewRegistry(h.deps)

	idle, err := reg.Create(context.Background(), "owner", indiaRecord())
	require.NoError(t, err)

	clock = clock.Add(20 * time.Minute)
	busy, err := reg.Create(context.Background(), "owner", indiaRecord())
	require.NoError(t, err)

	clock = clock.Add(15 * time.Minute)
	assert.Equal(t, 1, reg.Sweep(30*time.Minute))

	_, err = reg.Get(idle.ID())
	assert.ErrorIs(t, err, ErrViewerNotFound)
	_, err = reg.Get(busy.ID())
	assert.NoError(t, err)

	reg.CloseAll()
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, 0, h.store.Len())
}
