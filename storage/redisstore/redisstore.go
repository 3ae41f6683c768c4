// Package redisstore keeps authorization codes and refresh token records in Redis
// so several server instances can share them.
package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jrsteele09/go-authcode-server/internal/config"
	autherrors "github.com/jrsteele09/go-authcode-server/internal/errors"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	keyTypeCode    = "code"
	keyTypeRefresh = "refresh"

	// expiryGrace keeps an expired record readable for a little while so callers
	// can still report it as expired rather than unknown.
	expiryGrace = time.Minute
)

// NewClient connects to the Redis server named by cfg and checks it answers.
func NewClient(ctx context.Context, cfg config.StorageConfig) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.GetRedisPassword(),
		DB:       cfg.GetRedisDB(),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "[redisstore.NewClient] ping %s", cfg.GetRedisAddr())
	}
	return client, nil
}

func redisKey(prefix, keyType, id string) string {
	return prefix + keyType + ":" + id
}

func ttlUntil(expiresAt, now time.Time) time.Duration {
	ttl := expiresAt.Sub(now)
	if ttl < 0 {
		ttl = 0
	}
	return ttl + expiryGrace
}

func setJSON(ctx context.Context, client redis.UniversalClient, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "marshal")
	}
	if err := client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return errors.Wrap(err, "set")
	}
	return nil
}

func getJSON(ctx context.Context, client redis.UniversalClient, key string, value any) error {
	payload, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return autherrors.ErrNotFound
		}
		return errors.Wrap(err, "get")
	}
	if err := json.Unmarshal(payload, value); err != nil {
		return errors.Wrap(err, "decode")
	}
	return nil
}

// del removes key. DEL is atomic, so of several concurrent callers only one
// sees a count of one; the rest get ErrNotFound.
func del(ctx context.Context, client redis.UniversalClient, key string) error {
	removed, err := client.Del(ctx, key).Result()
	if err != nil {
		return errors.Wrap(err, "del")
	}
	if removed == 0 {
		return autherrors.ErrNotFound
	}
	return nil
}
