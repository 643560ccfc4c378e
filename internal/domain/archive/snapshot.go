// Package archive builds immutable snapshots of provider and customer billing
// data. A snapshot is taken exactly once per document, at issuance, and freezes
// the counterparty's identity as it was at that moment: later edits to the live
// record must never change a historical document.
package archive

import (
	"factura/internal/core/types"
	"factura/internal/domain/catalogs/customer"
	"factura/internal/domain/catalogs/provider"
)

// Snapshot is a structured field-to-value copy of billing-relevant data.
// A fresh entity with no populated billing fields snapshots to an empty map.
type Snapshot map[string]any

// Empty reports whether the snapshot holds no data.
// An empty snapshot is the draft-state marker for archived counterparties.
func (s Snapshot) Empty() bool {
	return len(s) == 0
}

// Clone returns a deep copy of the snapshot.
// Nested maps and slices are copied recursively so the result shares no
// mutable state with the original.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = cloneValue(inner)
		}
		return out
	case Snapshot:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = cloneValue(inner)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		// Scalars (and decimal.Decimal, which is immutable) copy by value.
		return val
	}
}

// FromProvider captures the provider's billing identity.
// Only populated fields are included, so a bare provider yields {}.
func FromProvider(p *provider.Provider) Snapshot {
	if p == nil {
		return Snapshot{}
	}

	s := Snapshot{}
	putString(s, "name", p.Name)
	putOptString(s, "company", p.Company)
	putOptString(s, "email", p.Email)
	putOptString(s, "address_1", p.Address1)
	putOptString(s, "address_2", p.Address2)
	putOptString(s, "city", p.City)
	putOptString(s, "state", p.State)
	putOptString(s, "zip_code", p.ZipCode)
	putOptString(s, "country", p.Country)
	putOptString(s, "tax_id", p.TaxID)
	putOptString(s, "registration_number", p.RegistrationNumber)
	putOptString(s, "bank_name", p.BankName)
	putOptString(s, "bank_account", p.BankAccount)
	putOptString(s, "extra", p.Extra)
	return s
}

// FromCustomer captures the customer's billing identity.
// Only populated fields are included, so a bare customer yields {}.
func FromCustomer(c *customer.Customer) Snapshot {
	if c == nil {
		return Snapshot{}
	}

	s := Snapshot{}
	putString(s, "customer_reference", c.Reference)
	putString(s, "name", c.Name)
	putOptString(s, "company", c.Company)
	putOptString(s, "email", c.Email)
	putOptString(s, "address_1", c.Address1)
	putOptString(s, "address_2", c.Address2)
	putOptString(s, "city", c.City)
	putOptString(s, "state", c.State)
	putOptString(s, "zip_code", c.ZipCode)
	putOptString(s, "country", c.Country)
	putOptString(s, "tax_id", c.TaxID)
	putOptString(s, "sales_tax_name", c.SalesTaxName)
	if c.SalesTaxPercent != nil {
		s["sales_tax_percent"] = types.FormatAmount(*c.SalesTaxPercent)
	}
	if c.PaymentDueDays > 0 {
		s["payment_due_days"] = c.PaymentDueDays
	}
	if c.ConsolidatedBilling {
		s["consolidated_billing"] = true
	}
	putOptString(s, "extra", c.Extra)
	return s
}

func putString(s Snapshot, key, val string) {
	if val != "" {
		s[key] = val
	}
}

func putOptString(s Snapshot, key string, val *string) {
	if val != nil && *val != "" {
		s[key] = *val
	}
}
