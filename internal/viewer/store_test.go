package viewer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PublishOpenRetract(t *testing.T) {
	store := NewStore(nil)

	src := []byte("%PDF-1.7 one")
	handle := store.Publish(src)
	src[0] = 'X'

	got, err := store.Open(handle)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 one", string(got), "store keeps its own copy")

	store.Retract(handle)
	_, err = store.Open(handle)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.Equal(t, 0, store.Len())

	store.Retract(handle)
	store.Retract("unknown")
}

func TestStore_LeaseSurvivesRetract(t *testing.T) {
	store := NewStore(nil)
	handle := store.Publish([]byte("doc"))

	release, err := store.Lease(handle)
	require.NoError(t, err)

	store.Retract(handle)

	got, err := store.Open(handle)
	require.NoError(t, err, "leased document stays readable")
	assert.Equal(t, "doc", string(got))

	_, err = store.Lease(handle)
	assert.ErrorIs(t, err, ErrDocumentNotFound, "retracted handle cannot be newly leased")

	release()
	release()

	_, err = store.Open(handle)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestStore_ReleaseBeforeRetractKeepsDocument(t *testing.T) {
	store := NewStore(nil)
	handle := store.Publish([]byte("doc"))

	release, err := store.Lease(handle)
	require.NoError(t, err)
	release()

	_, err = store.Open(handle)
	assert.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestStore_ConcurrentLeases(t *testing.T) {
	store := NewStore(nil)
	handle := store.Publish([]byte("doc"))

	var wg sync.WaitGroup
	releases := make(chan func(), 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := store.Lease(handle)
			if err == nil {
				releases <- release
			}
		}()
	}
	wg.Wait()
	close(releases)

	store.Retract(handle)
	assert.Equal(t, 1, store.Len())

	for release := range releases {
		release()
	}
	assert.Equal(t, 0, store.Len())
}

func TestSlot_ExactlyOneLiveHandle(t *testing.T) {
	store := NewStore(nil)
	slot := NewSlot(store)

	first, err := slot.Replace([]byte("unsigned"))
	require.NoError(t, err)
	second, err := slot.Replace([]byte("unsigned, exception"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, second, slot.Current())
	assert.Equal(t, 1, store.Len())

	_, err = store.Open(first)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	slot.Close()
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, slot.Current())

	_, err = slot.Replace([]byte("late"))
	assert.ErrorIs(t, err, ErrSlotClosed)
	assert.Equal(t, 0, store.Len())

	slot.Close()
}
