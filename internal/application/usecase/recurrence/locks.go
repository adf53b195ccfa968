package recurrence

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/ledger/internal/application/adapter"
)

// DefinitionLocks serialises work on the same recurrence definition across instances.
type DefinitionLocks struct {
	Locker        adapter.Locker
	TTL           time.Duration
	MaxRetries    int
	RetryInterval time.Duration
}

// With holds the lock of definition id while fn runs.
func (l DefinitionLocks) With(ctx context.Context, id uuid.UUID, fn func() error) error {
	if l.Locker == nil {
		return fn()
	}

	lock, err := adapter.AcquireWithBackoff(ctx, l.Locker, adapter.RecurrenceLockKey(id), l.TTL,
		adapter.RetryPolicy(l.MaxRetries, l.RetryInterval))
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("Failed to release recurrence lock", "recurrence_id", id, "error", err)
		}
	}()

	return fn()
}
