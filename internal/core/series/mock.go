package series

import (
	"context"
	"fmt"
	"sync"

	"factura/internal/core/id"
)

// MockRegistry is a test implementation of Registry backed by in-memory
// counters. Use in unit tests to avoid database dependencies.
//
// Counters are guarded by a mutex, so concurrent reservations for the same
// bucket still produce distinct, increasing numbers.
type MockRegistry struct {
	mu       sync.Mutex
	counters map[string]int64

	// ReserveNextFunc overrides ReserveNext when set (e.g. to inject failures).
	ReserveNextFunc func(ctx context.Context, providerID id.ID, series string) (int64, error)
}

// NewMockRegistry creates an empty mock registry.
func NewMockRegistry() *MockRegistry {
	return &MockRegistry{counters: make(map[string]int64)}
}

// ReserveNext implements Registry.
func (m *MockRegistry) ReserveNext(ctx context.Context, providerID id.ID, series string) (int64, error) {
	if m.ReserveNextFunc != nil {
		return m.ReserveNextFunc(ctx, providerID, series)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	key := bucketKey(providerID, series)
	m.counters[key]++
	return m.counters[key], nil
}

// SetNext implements Registry.
func (m *MockRegistry) SetNext(ctx context.Context, providerID id.ID, series string, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[bucketKey(providerID, series)] = value - 1
	return nil
}

func bucketKey(providerID id.ID, series string) string {
	return fmt.Sprintf("%s:%s", providerID, series)
}

// Ensure compile-time interface compliance.
var _ Registry = (*MockRegistry)(nil)
