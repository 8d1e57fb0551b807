// Package cache holds the Redis-backed helpers: the per-account checkout lock.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// KeyCheckoutLock is held while one checkout of an account runs: lock:checkout:{user_id} -> token
const KeyCheckoutLock = "lock:checkout:%s"

// ErrLocked is returned when another checkout of the same account is in progress.
var ErrLocked = errors.New("checkout already in progress")

// CheckoutLock serialises checkouts of one account.
type CheckoutLock interface {
	// Acquire takes the lock for the account. The returned release func must be called once.
	Acquire(ctx context.Context, userID string) (release func(), err error)
}

// NewRedisClient builds the client used for locks.
func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// RedisCheckoutLock is a SET NX lock with a TTL, so a crashed holder cannot block the account forever.
type RedisCheckoutLock struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCheckoutLock(rdb *redis.Client, ttl time.Duration) *RedisCheckoutLock {
	return &RedisCheckoutLock{rdb: rdb, ttl: ttl}
}

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

func (l *RedisCheckoutLock) Acquire(ctx context.Context, userID string) (func(), error) {
	key := fmt.Sprintf(KeyCheckoutLock, userID)
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire checkout lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.rdb, []string{key}, token).Err()
	}, nil
}

// LocalCheckoutLock is the in-process variant used when no Redis is configured. It only
// covers a single server instance.
type LocalCheckoutLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalCheckoutLock() *LocalCheckoutLock {
	return &LocalCheckoutLock{held: map[string]struct{}{}}
}

func (l *LocalCheckoutLock) Acquire(_ context.Context, userID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[userID]; ok {
		return nil, ErrLocked
	}
	l.held[userID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, userID)
			l.mu.Unlock()
		})
	}, nil
}
