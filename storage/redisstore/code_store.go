package redisstore

import (
	"context"
	"time"

	"github.com/jrsteele09/go-authcode-server/auth/codes"
	autherrors "github.com/jrsteele09/go-authcode-server/internal/errors"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ codes.Repo = (*CodeStore)(nil)

// CodeStore is a codes.Repo backed by Redis.
type CodeStore struct {
	client    redis.UniversalClient
	keyPrefix string
	nowTime   func() time.Time
}

func NewCodeStore(client redis.UniversalClient, keyPrefix string) *CodeStore {
	return &CodeStore{client: client, keyPrefix: keyPrefix, nowTime: time.Now}
}

func (s *CodeStore) Set(ctx context.Context, code *codes.AuthorizationCode) error {
	key := redisKey(s.keyPrefix, keyTypeCode, code.Code)
	if err := setJSON(ctx, s.client, key, code, ttlUntil(code.ExpiresAt, s.nowTime())); err != nil {
		return errors.Wrap(err, "[CodeStore.Set]")
	}
	return nil
}

func (s *CodeStore) Get(ctx context.Context, code string) (*codes.AuthorizationCode, error) {
	var authCode codes.AuthorizationCode
	if err := getJSON(ctx, s.client, redisKey(s.keyPrefix, keyTypeCode, code), &authCode); err != nil {
		if autherrors.Is(err, autherrors.ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "[CodeStore.Get]")
	}
	return &authCode, nil
}

func (s *CodeStore) Delete(ctx context.Context, code string) error {
	if err := del(ctx, s.client, redisKey(s.keyPrefix, keyTypeCode, code)); err != nil {
		if autherrors.Is(err, autherrors.ErrNotFound) {
			return err
		}
		return errors.Wrap(err, "[CodeStore.Delete]")
	}
	return nil
}
