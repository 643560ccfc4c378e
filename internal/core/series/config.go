package series

import "context"

// DocumentKind names a numbered document type.
type DocumentKind string

const (
	KindProforma DocumentKind = "proforma"
	KindInvoice  DocumentKind = "invoice"
)

// DefaultSeries returns the default series name for a document kind.
// Providers may override this per kind (see Resolver).
func DefaultSeries(kind DocumentKind) string {
	switch kind {
	case KindInvoice:
		return "InvoiceSeries"
	default:
		return "ProformaSeries"
	}
}

// Resolver maps a provider and document kind to the series name to number in.
// The provider catalog supplies the production implementation; an empty result
// falls back to DefaultSeries.
type Resolver interface {
	SeriesFor(ctx context.Context, providerID string, kind DocumentKind) string
}

// ResolveSeries applies the resolver with the default fallback.
func ResolveSeries(ctx context.Context, r Resolver, providerID string, kind DocumentKind) string {
	if r != nil {
		if s := r.SeriesFor(ctx, providerID, kind); s != "" {
			return s
		}
	}
	return DefaultSeries(kind)
}
