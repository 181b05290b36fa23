// Package store adapts the four document-store operations the core
// relies on -- findByUrl, upsert, markPending, markFailed -- onto a
// MongoDB collection, using native conditional-write primitives so each
// operation is a single round trip except the one explicit retry named
// in the upsert contract.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/akshayg147/metadata-inventory-service/internal/domain"
)

// Failure wraps a store error with the operation name that produced it,
// so callers can translate to 5xx responses or worker-level retries
// without string-matching messages.
type Failure struct {
	Op    string
	Cause error
}

func (f *Failure) Error() string { return fmt.Sprintf("store: %s: %v", f.Op, f.Cause) }
func (f *Failure) Unwrap() error { return f.Cause }

func fail(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Failure{Op: op, Cause: cause}
}

// ErrNotFound is returned by FindByURL when no record exists (the
// "none" state); it is not itself a Failure.
var ErrNotFound = errors.New("store: record not found")

// Store is the document store contract the rest of the service depends
// on. Implementations must make each operation a single conditional
// write: MarkPending's insert-or-transition is the cross-replica
// single-flight primitive, not an in-process lock.
type Store interface {
	// FindByURL returns the record for canonicalURL, or ErrNotFound.
	FindByURL(ctx context.Context, canonicalURL string) (*domain.Record, error)

	// Upsert sets fields plus {status: completed, updated_at: now} and,
	// only on insert, created_at: now. Returns the record's store ID.
	Upsert(ctx context.Context, canonicalURL string, fields domain.Fields) (string, error)

	// MarkPending conditionally transitions none->pending or
	// failed->pending. Returns false without error if the record is
	// already completed or pending.
	MarkPending(ctx context.Context, canonicalURL string) (bool, error)

	// MarkFailed unconditionally sets status: failed, error: reason. A
	// no-op if no record exists.
	MarkFailed(ctx context.Context, canonicalURL string, reason string) error

	// EnsureIndexes creates the unique index on url and the secondary
	// index on status, idempotently.
	EnsureIndexes(ctx context.Context) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
