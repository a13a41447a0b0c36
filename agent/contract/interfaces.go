package contract

import "context"

// HistoryStore is the persistence contract for per-customer support history.
// Implementations must be safe for concurrent use; records are append-only.
type HistoryStore interface {
	// Init idempotently ensures the backing schema exists.
	Init(ctx context.Context) error

	// Records returns all saved summaries for the normalized email, oldest first.
	Records(ctx context.Context, email string) ([]string, error)

	// Append writes one new record with a store-assigned timestamp.
	// Lock contention is retried internally; exhaustion yields ErrStoreLocked.
	Append(ctx context.Context, email, record string) error

	Close() error
}

// PolicySource resolves a free-text topic to policy text.
// Unmatched topics yield ErrTopicNotFound.
type PolicySource interface {
	Lookup(topic string) (string, error)
}
