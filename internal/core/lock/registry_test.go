package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factura/internal/core/apperror"
	"factura/internal/core/id"
)

func TestRegistry_MutualExclusion(t *testing.T) {
	reg := NewRegistry("document")
	key := id.New()
	ctx := context.Background()

	var active, maxActive int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := reg.WithLock(ctx, key, func(ctx context.Context) error {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive, "lock must be exclusive per key")
}

func TestRegistry_IndependentKeys(t *testing.T) {
	reg := NewRegistry("document")
	ctx := context.Background()

	releaseA, err := reg.Acquire(ctx, id.New())
	require.NoError(t, err)
	defer releaseA()

	// A lock on a different key must not block.
	done := make(chan struct{})
	go func() {
		releaseB, err := reg.Acquire(ctx, id.New())
		assert.NoError(t, err)
		releaseB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("independent key blocked on unrelated lock")
	}
}

func TestRegistry_AcquireTimeout(t *testing.T) {
	reg := NewRegistry("document")
	key := id.New()

	release, err := reg.Acquire(context.Background(), key)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = reg.Acquire(ctx, key)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeTimeout, appErr.Code)
	assert.True(t, apperror.IsRetryable(err))
}

func TestRegistry_ReleaseIsIdempotent(t *testing.T) {
	reg := NewRegistry("document")
	key := id.New()

	release, err := reg.Acquire(context.Background(), key)
	require.NoError(t, err)
	release()
	release() // second call must not panic or over-release

	// Lock must be available again.
	release2, err := reg.Acquire(context.Background(), key)
	require.NoError(t, err)
	release2()
}
