package installment

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/finance-tracker/ledger/internal/application/adapter"
)

// GroupLocks serialises mutations of the same installment group across instances.
type GroupLocks struct {
	Locker        adapter.Locker
	TTL           time.Duration
	MaxRetries    int
	RetryInterval time.Duration
}

// With holds the locks of every group in groupIDs while fn runs.
// Locks are taken in id order so overlapping callers cannot deadlock.
func (l GroupLocks) With(ctx context.Context, groupIDs []uuid.UUID, fn func() error) error {
	if l.Locker == nil {
		return fn()
	}

	ordered := make([]uuid.UUID, len(groupIDs))
	copy(ordered, groupIDs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].String() < ordered[j].String() })

	held := make([]adapter.Lock, 0, len(ordered))
	defer func() {
		releaseCtx := context.WithoutCancel(ctx)
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i].Release(releaseCtx); err != nil {
				slog.Warn("Failed to release installment group lock", "error", err)
			}
		}
	}()

	for _, groupID := range ordered {
		lock, err := adapter.AcquireWithBackoff(ctx, l.Locker, adapter.InstallmentGroupLockKey(groupID), l.TTL, l.policy())
		if err != nil {
			return err
		}
		held = append(held, lock)
	}

	return fn()
}

func (l GroupLocks) policy() backoff.BackOff {
	return adapter.RetryPolicy(l.MaxRetries, l.RetryInterval)
}
