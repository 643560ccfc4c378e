package series

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"

	"factura/internal/core/id"
)

// Mock objects
type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the counter table: one value per (provider, series)
// key, bumped or set depending on the arguments passed.
type mockQuerier struct {
	mu       sync.Mutex
	counters map[string]int64
	err      error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{counters: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return &mockRow{err: m.err}
	}

	key := ""
	if len(args) >= 2 {
		key = args[0].(id.ID).String() + ":" + args[1].(string)
	}

	// Three args means SetNext (explicit value), two means ReserveNext (+1).
	if len(args) == 3 {
		m.counters[key] = args[2].(int64)
	} else {
		m.counters[key]++
	}

	return &mockRow{val: m.counters[key]}
}

func TestReserveNext_StartsAtOneAndIncrements(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	provider := id.New()

	for want := int64(1); want <= 3; want++ {
		got, err := svc.ReserveNext(ctx, provider, "InvoiceSeries")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	}
}

func TestReserveNext_BucketsAreIndependent(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	providerA := id.New()
	providerB := id.New()

	if n, _ := svc.ReserveNext(ctx, providerA, "InvoiceSeries"); n != 1 {
		t.Errorf("expected 1 for first provider, got %d", n)
	}
	if n, _ := svc.ReserveNext(ctx, providerA, "ProformaSeries"); n != 1 {
		t.Errorf("expected 1 for second series, got %d", n)
	}
	if n, _ := svc.ReserveNext(ctx, providerB, "InvoiceSeries"); n != 1 {
		t.Errorf("expected 1 for second provider, got %d", n)
	}
	if n, _ := svc.ReserveNext(ctx, providerA, "InvoiceSeries"); n != 2 {
		t.Errorf("expected 2 on repeat reservation, got %d", n)
	}
}

func TestReserveNext_PropagatesStorageError(t *testing.T) {
	q := newMockQuerier()
	q.err = errors.New("connection refused")
	svc := New(q)

	_, err := svc.ReserveNext(context.Background(), id.New(), "InvoiceSeries")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestSetNext_SeedsCounter(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	provider := id.New()

	if err := svc.SetNext(ctx, provider, "InvoiceSeries", 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.ReserveNext(ctx, provider, "InvoiceSeries")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 100 {
		t.Errorf("expected 100 after seeding, got %d", got)
	}
}

func TestNewFromContext_ResolvesPerCall(t *testing.T) {
	q := newMockQuerier()
	calls := 0
	svc := NewFromContext(func(ctx context.Context) Querier {
		calls++
		return q
	})

	_, _ = svc.ReserveNext(context.Background(), id.New(), "InvoiceSeries")
	_, _ = svc.ReserveNext(context.Background(), id.New(), "InvoiceSeries")

	if calls != 2 {
		t.Errorf("expected provider to be consulted per call, got %d calls", calls)
	}
}
