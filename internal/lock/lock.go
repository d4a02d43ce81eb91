// Package lock provides a best-effort distributed advisory lock over
// redis. The booking path uses it to keep admission contention for one
// parking off the database when several instances run; correctness
// still rests on the transaction and the parking row lock.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// AdmissionKey is the lock key guarding bookings for one parking.
func AdmissionKey(parkingID snowflake.ID) string {
	return fmt.Sprintf("admission:%s", parkingID)
}

type Locker struct {
	client *redis.Client
	script *redis.Script
}

// NewLocker returns nil when no client is configured; a nil Locker is
// safe to call and always declines to lock.
func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{
		client: client,
		script: redis.NewScript(releaseScript),
	}
}

// TryLock attempts to take the key for ttl. The returned token must be
// passed back to Release; only the holder of the token can release.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", false, errors.New("lock client not configured")
	}
	if key == "" {
		return "", false, errors.New("lock key is empty")
	}
	if ttl <= 0 {
		return "", false, errors.New("lock ttl must be positive")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// Release deletes the key only when the token still owns it, so an
// expired lock taken over by another holder is never released by us.
func (l *Locker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil {
		return nil
	}
	if key == "" || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{key}, token).Err()
}
