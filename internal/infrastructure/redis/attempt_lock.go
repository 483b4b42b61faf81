package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// AttemptLock implements port.PaymentAttemptLock on top of Redis SET NX with
// a TTL. The TTL bounds how long a crashed submitter can hold an installment.
type AttemptLock struct {
	client *goredis.Client
}

// NewAttemptLock creates a Redis-backed payment attempt lock.
func NewAttemptLock(client *goredis.Client) *AttemptLock {
	return &AttemptLock{client: client}
}

// Acquire returns false when another submission already holds the installment.
func (l *AttemptLock) Acquire(ctx context.Context, loanID string, number int, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKey(loanID, number), time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire payment lock: %w", err)
	}
	return ok, nil
}

// Release drops the lock. Releasing a lock that already expired is a no-op.
func (l *AttemptLock) Release(ctx context.Context, loanID string, number int) error {
	if err := l.client.Del(ctx, lockKey(loanID, number)).Err(); err != nil {
		return fmt.Errorf("release payment lock: %w", err)
	}
	return nil
}

func lockKey(loanID string, number int) string {
	return fmt.Sprintf("servicing:payment-lock:%s:%d", loanID, number)
}
