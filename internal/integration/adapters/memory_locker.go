package adapters

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/ledger/internal/application/adapter"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
)

type memoryLease struct {
	token     string
	expiresAt time.Time
}

// memoryLocker implements adapter.Locker for a single process.
type memoryLocker struct {
	mu     sync.Mutex
	leases map[string]memoryLease
	now    func() time.Time
}

// NewMemoryLocker creates a locker whose leases live in this process only.
func NewMemoryLocker() adapter.Locker {
	return &memoryLocker{
		leases: make(map[string]memoryLease),
		now:    time.Now,
	}
}

// Acquire takes the lease on key if nobody holds it or the previous lease expired.
func (l *memoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (adapter.Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if lease, ok := l.leases[key]; ok && now.Before(lease.expiresAt) {
		return nil, domainerror.NewLockError(domainerror.ErrCodeLockNotAcquired, "lock "+key+" is held", domainerror.ErrLockNotAcquired)
	}

	token := uuid.NewString()
	l.leases[key] = memoryLease{token: token, expiresAt: now.Add(ttl)}
	return &memoryLock{locker: l, key: key, token: token}, nil
}

type memoryLock struct {
	locker *memoryLocker
	key    string
	token  string
}

// Release removes the lease if it still belongs to this holder.
func (l *memoryLock) Release(ctx context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()

	lease, ok := l.locker.leases[l.key]
	if !ok || lease.token != l.token {
		return domainerror.NewLockError(domainerror.ErrCodeLockLost, "lock "+l.key+" expired before release", domainerror.ErrLockLost)
	}
	delete(l.locker.leases, l.key)
	if l.locker.now().After(lease.expiresAt) {
		return domainerror.NewLockError(domainerror.ErrCodeLockLost, "lock "+l.key+" expired before release", domainerror.ErrLockLost)
	}
	return nil
}
