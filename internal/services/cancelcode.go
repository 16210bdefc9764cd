package services

import (
	"context"
	"time"

	"github.com/AnshRaj112/wardline-backend/internal/database"
	"github.com/redis/go-redis/v9"
)

const (
	// CancelCodeKeyPrefix is the Redis key prefix for the cancel-code mailbox.
	CancelCodeKeyPrefix = "cancelcode:"
	// CancelCodeTTL keeps a posted code around slightly longer than the
	// cancellation window so a code posted near the deadline is still seen.
	CancelCodeTTL = CancelWindowBudget + 5*time.Second
)

// PostCancelCode stores the code the protected user just entered so an
// in-flight trigger can pick it up on its next poll.
func PostCancelCode(ctx context.Context, uid, code string) error {
	return database.RedisClient.Set(ctx, CancelCodeKeyPrefix+uid, code, CancelCodeTTL).Err()
}

// NewRedisCancelCodeSource returns a CancelCodeSource backed by the
// protected user's Redis mailbox. A missing key means "no value yet".
func NewRedisCancelCodeSource(uid string) CancelCodeSource {
	return CancelCodeFunc(func(ctx context.Context) (string, error) {
		val, err := database.RedisClient.Get(ctx, CancelCodeKeyPrefix+uid).Result()
		if err == redis.Nil {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return val, nil
	})
}

// ClearCancelCode removes any posted code, called after a trigger resolves
// so a stale code cannot suppress the next event.
func ClearCancelCode(ctx context.Context, uid string) error {
	return database.RedisClient.Del(ctx, CancelCodeKeyPrefix+uid).Err()
}
