package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/finance-tracker/ledger/config"
	"github.com/finance-tracker/ledger/internal/application/adapter"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
)

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisClient connects to the Redis server described by cfg.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// redisLocker implements adapter.Locker with SET NX leases.
type redisLocker struct {
	client *redis.Client
	prefix string
}

// NewRedisLocker creates a locker that shares leases across processes through Redis.
func NewRedisLocker(client *redis.Client, prefix string) adapter.Locker {
	return &redisLocker{
		client: client,
		prefix: prefix,
	}
}

// Acquire takes the lease on key if nobody holds it.
func (l *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (adapter.Lock, error) {
	token := uuid.NewString()
	fullKey := l.prefix + key

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, domainerror.NewLockError(domainerror.ErrCodeLockNotAcquired, "lock "+key+" is held", domainerror.ErrLockNotAcquired)
	}

	return &redisLock{client: l.client, key: fullKey, token: token}, nil
}

type redisLock struct {
	client *redis.Client
	key    string
	token  string
}

// Release deletes the lease if it still belongs to this holder.
func (l *redisLock) Release(ctx context.Context) error {
	deleted, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.key, err)
	}
	if deleted == 0 {
		return domainerror.NewLockError(domainerror.ErrCodeLockLost, "lock "+l.key+" expired before release", domainerror.ErrLockLost)
	}
	return nil
}
