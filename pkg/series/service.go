// Package series provides sequential document numbering backed by Postgres.
//
// Every (provider, series) pair owns an independent counter in the
// billing_series table. Reservation is a single atomic UPSERT, so concurrent
// issuances for the same bucket serialize at the database row and each caller
// receives a distinct, increasing number with no gaps.
package series

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"factura/internal/core/id"
	coreseries "factura/internal/core/series"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierProvider resolves the querier per call, so reservations join the
// caller's transaction when one is active in the context.
type QuerierProvider func(ctx context.Context) Querier

// Service implements coreseries.Registry on a Postgres counter table.
type Service struct {
	querier     Querier
	fromContext QuerierProvider
}

// New creates a numbering service with a static querier.
// Use for single-connection or testing scenarios.
func New(querier Querier) *Service {
	return &Service{querier: querier}
}

// NewFromContext creates a numbering service that resolves its querier from
// the context on every call, joining the active transaction when present.
func NewFromContext(provider QuerierProvider) *Service {
	return &Service{fromContext: provider}
}

func (s *Service) getQuerier(ctx context.Context) Querier {
	if s.fromContext != nil {
		return s.fromContext(ctx)
	}
	return s.querier
}

// ReserveNext returns the next number for the (provider, series) bucket.
// First use of a bucket yields 1. The counter row is created on demand.
func (s *Service) ReserveNext(ctx context.Context, providerID id.ID, series string) (int64, error) {
	var num int64
	err := s.getQuerier(ctx).QueryRow(ctx, `
        INSERT INTO billing_series (provider_id, series, current_val)
        VALUES ($1, $2, 1)
        ON CONFLICT (provider_id, series) DO UPDATE SET current_val = billing_series.current_val + 1
        RETURNING current_val
	`, providerID, series).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("reserve next: %w", err)
	}
	return num, nil
}

// SetNext seeds the counter so the next reservation returns value.
// Used when migrating an existing numbering history into the platform.
func (s *Service) SetNext(ctx context.Context, providerID id.ID, series string, value int64) error {
	var result int64
	err := s.getQuerier(ctx).QueryRow(ctx, `
        INSERT INTO billing_series (provider_id, series, current_val)
        VALUES ($1, $2, $3)
        ON CONFLICT (provider_id, series) DO UPDATE SET current_val = $3
        RETURNING current_val
	`, providerID, series, value-1).Scan(&result)
	if err != nil {
		return fmt.Errorf("set next: %w", err)
	}
	return nil
}

// Ensure compile-time interface compliance.
var _ coreseries.Registry = (*Service)(nil)
