// Package series provides domain contracts for sequential document numbering.
// Implementations live in infrastructure layer.
package series

import (
	"context"

	"factura/internal/core/id"
)

// Registry hands out the next document number for a (provider, series) bucket.
// Numbers are 1-based on first use, strictly increasing, and never reused.
//
// Implementations must serialize concurrent callers for the same bucket;
// different buckets proceed independently. A backing-storage failure must be
// reported as apperror.CodeRegistryUnavailable so the enclosing issuance can
// abort atomically.
type Registry interface {
	// ReserveNext returns the next number for the bucket.
	ReserveNext(ctx context.Context, providerID id.ID, series string) (int64, error)

	// SetNext sets the counter so the next reservation returns value
	// (for migration seeding).
	SetNext(ctx context.Context, providerID id.ID, series string, value int64) error
}
