package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"instructorhub/pkg/platform/sentinel"
)

const keyPrefix = "instructorhub:redeem:"

// releaseScript deletes the key only if this owner still holds it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker coordinates redemptions across replicas with SET NX PX.
type RedisLocker struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (Unlock, error) {
	owner := uuid.NewString()
	fullKey := keyPrefix + key
	ok, err := l.client.SetNX(ctx, fullKey, owner, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire redemption lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s held: %w", key, sentinel.ErrLocked)
	}
	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{fullKey}, owner).Err(); err != nil {
			return fmt.Errorf("release redemption lock: %w", err)
		}
		return nil
	}, nil
}
