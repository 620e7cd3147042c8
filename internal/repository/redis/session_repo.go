package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrRedisUnavailable = errors.New("redis unavailable")
	ErrExtendFailed     = errors.New("token extend failed")
	ErrTokenDeleted     = errors.New("token delete failed")
)

const (
	UserTokenPrefix = "login:user:token"
	UserTokenExpire = 30 * time.Minute
)

// SessionRepository 每个用户只保留最新的 access token，实现单点登录
type SessionRepository struct {
	RDB *redis.Client
}

func (r *SessionRepository) key(userID uint64) string {
	return fmt.Sprintf("%s:%d", UserTokenPrefix, userID)
}

func (r *SessionRepository) AddUserToken(ctx context.Context, userID uint64, token string) error {
	if err := r.RDB.Set(ctx, r.key(userID), token, UserTokenExpire).Err(); err != nil {
		return ErrRedisUnavailable
	}
	return nil
}

func (r *SessionRepository) GetUserToken(ctx context.Context, userID uint64) (string, error) {
	token, err := r.RDB.Get(ctx, r.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", ErrRedisUnavailable
	}
	return token, nil
}

func (r *SessionRepository) ExtendUserToken(ctx context.Context, userID uint64) error {
	if err := r.RDB.Expire(ctx, r.key(userID), UserTokenExpire).Err(); err != nil {
		return ErrExtendFailed
	}
	return nil
}

func (r *SessionRepository) DeleteUserToken(ctx context.Context, userID uint64) error {
	if err := r.RDB.Del(ctx, r.key(userID)).Err(); err != nil {
		return ErrTokenDeleted
	}
	return nil
}
