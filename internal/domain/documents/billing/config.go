package billing

import "time"

// Config carries tunables for the billing document service.
type Config struct {
	// LockTimeout bounds how long a transition waits for exclusive access
	// to a document before giving up with a retryable timeout.
	LockTimeout time.Duration

	// DefaultDueDays shifts the due date relative to the issue date when
	// the customer has no payment term of its own.
	DefaultDueDays int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		LockTimeout:    5 * time.Second,
		DefaultDueDays: 0,
	}
}
