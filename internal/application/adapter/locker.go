package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
)

// Lock is a held lease on a key.
type Lock interface {
	// Release gives the lease back. Releasing an expired lease returns a lock-lost error.
	Release(ctx context.Context) error
}

// Locker grants exclusive, expiring leases on string keys.
type Locker interface {
	// Acquire takes the lease on key without waiting.
	// A lease held elsewhere fails with domainerror.ErrLockNotAcquired.
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// RecurrenceLockKey returns the lock key that serialises work on one definition.
func RecurrenceLockKey(id uuid.UUID) string {
	return "recurrence:" + id.String()
}

// InstallmentGroupLockKey returns the lock key that serialises mutations of one group.
func InstallmentGroupLockKey(id uuid.UUID) string {
	return "installment-group:" + id.String()
}

// RetryPolicy returns an exponential backoff starting at interval that gives up after maxRetries retries.
func RetryPolicy(maxRetries int, interval time.Duration) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if interval > 0 {
		exp.InitialInterval = interval
	}
	exp.MaxElapsedTime = 0
	if maxRetries < 0 {
		maxRetries = 0
	}
	return backoff.WithMaxRetries(exp, uint64(maxRetries))
}

// AcquireWithBackoff retries Acquire while the lease is held elsewhere, following policy.
// Other errors stop the retries immediately.
func AcquireWithBackoff(ctx context.Context, locker Locker, key string, ttl time.Duration, policy backoff.BackOff) (Lock, error) {
	var lock Lock
	operation := func() error {
		l, err := locker.Acquire(ctx, key, ttl)
		if err != nil {
			if errors.Is(err, domainerror.ErrLockNotAcquired) {
				return err
			}
			return backoff.Permanent(err)
		}
		lock = l
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}
	return lock, nil
}
