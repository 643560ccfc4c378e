// Package lock provides per-entity exclusive locks with bounded acquisition.
//
// Every mutating document operation must hold the document's lock for its
// duration; acquisition is bounded by the caller's context so no operation
// blocks indefinitely.
package lock

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"factura/internal/core/apperror"
	"factura/internal/core/id"
)

// Registry hands out one exclusive lock per key (typically a document ID).
// Locks are created lazily and kept for the registry's lifetime; a weighted
// semaphore gives context-aware acquisition without busy waiting.
type Registry struct {
	mu     sync.Mutex
	locks  map[id.ID]*semaphore.Weighted
	entity string
}

// NewRegistry creates a lock registry. The entity name is used in timeout errors.
func NewRegistry(entity string) *Registry {
	return &Registry{
		locks:  make(map[id.ID]*semaphore.Weighted),
		entity: entity,
	}
}

func (r *Registry) lockFor(key id.ID) *semaphore.Weighted {
	r.mu.Lock()
	defer r.mu.Unlock()
	sem, ok := r.locks[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		r.locks[key] = sem
	}
	return sem
}

// Acquire takes the exclusive lock for key, waiting until the context expires.
// On context deadline or cancellation it returns a retryable TIMEOUT_ERROR and
// guarantees no lock is held.
func (r *Registry) Acquire(ctx context.Context, key id.ID) (release func(), err error) {
	sem := r.lockFor(key)
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, apperror.NewConcurrencyTimeout(r.entity, key.String()).WithCause(err)
	}

	var once sync.Once
	return func() {
		once.Do(func() { sem.Release(1) })
	}, nil
}

// WithLock runs fn while holding the exclusive lock for key.
// The lock is released on every exit path, including panics inside fn.
func (r *Registry) WithLock(ctx context.Context, key id.ID, fn func(ctx context.Context) error) error {
	release, err := r.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}
