package billing

import (
	"factura/internal/core/apperror"
)

// Status is the closed set of document lifecycle states.
type Status string

const (
	// StatusDraft is the initial state. Entries are mutable only here.
	StatusDraft Status = "draft"

	// StatusIssued marks a legally binding document: number assigned,
	// counterparty data archived, entries frozen.
	StatusIssued Status = "issued"

	// StatusPaid is terminal.
	StatusPaid Status = "paid"

	// StatusCanceled is terminal. Reachable only from issued: voiding a
	// draft is a discard, not a financial cancellation.
	StatusCanceled Status = "canceled"
)

// transitions is the explicit table of allowed status changes.
// Anything outside the table is rejected.
var transitions = map[Status][]Status{
	StatusDraft:    {StatusIssued},
	StatusIssued:   {StatusPaid, StatusCanceled},
	StatusPaid:     {},
	StatusCanceled: {},
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0 && s.IsValid()
}

// CanTransition reports whether the table permits from → to.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ParseStatus validates a caller-supplied status string.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", apperror.NewValidation("unknown document status").
			WithDetail("field", "status").
			WithDetail("value", s)
	}
	return st, nil
}
