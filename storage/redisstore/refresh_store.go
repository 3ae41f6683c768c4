package redisstore

import (
	"context"
	"time"

	autherrors "github.com/jrsteele09/go-authcode-server/internal/errors"
	"github.com/jrsteele09/go-authcode-server/token/refresh"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ refresh.Repo = (*RefreshTokenStore)(nil)

// RefreshTokenStore is a refresh.Repo backed by Redis.
type RefreshTokenStore struct {
	client    redis.UniversalClient
	keyPrefix string
	nowTime   func() time.Time
}

func NewRefreshTokenStore(client redis.UniversalClient, keyPrefix string) *RefreshTokenStore {
	return &RefreshTokenStore{client: client, keyPrefix: keyPrefix, nowTime: time.Now}
}

func (s *RefreshTokenStore) Set(ctx context.Context, refreshToken *refresh.StoredRefreshToken) error {
	key := redisKey(s.keyPrefix, keyTypeRefresh, refreshToken.Token)
	if err := setJSON(ctx, s.client, key, refreshToken, ttlUntil(refreshToken.ExpiresAt, s.nowTime())); err != nil {
		return errors.Wrap(err, "[RefreshTokenStore.Set]")
	}
	return nil
}

func (s *RefreshTokenStore) Get(ctx context.Context, token string) (*refresh.StoredRefreshToken, error) {
	var stored refresh.StoredRefreshToken
	if err := getJSON(ctx, s.client, redisKey(s.keyPrefix, keyTypeRefresh, token), &stored); err != nil {
		if autherrors.Is(err, autherrors.ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "[RefreshTokenStore.Get]")
	}
	return &stored, nil
}

func (s *RefreshTokenStore) Delete(ctx context.Context, token string) error {
	if err := del(ctx, s.client, redisKey(s.keyPrefix, keyTypeRefresh, token)); err != nil {
		if autherrors.Is(err, autherrors.ErrNotFound) {
			return err
		}
		return errors.Wrap(err, "[RefreshTokenStore.Delete]")
	}
	return nil
}
