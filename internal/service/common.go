package service

import (
	"context"
	"errors"
	"time"

	"Lingo_Community/internal/pkg"

	"gorm.io/gorm"
)

// DueCache 到期列表缓存，为 nil 时直接查库
type DueCache interface {
	Get(ctx context.Context, userID uint64) ([]byte, bool, error)
	Set(ctx context.Context, userID uint64, data []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, userID uint64) error
}

// LikeCounter 点赞计数缓存
type LikeCounter interface {
	GetLikeCountCached(ctx context.Context, postID uint64) (int64, bool, error)
	SetLikeCount(ctx context.Context, postID uint64, cnt int64) error
	DeleteCount(ctx context.Context, postID uint64) error
}

// Locker 分布式锁
type Locker interface {
	Acquire(ctx context.Context, name, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name, token string) error
}

// SessionStore 登录态 token 存储
type SessionStore interface {
	AddUserToken(ctx context.Context, userID uint64, token string) error
	GetUserToken(ctx context.Context, userID uint64) (string, error)
	ExtendUserToken(ctx context.Context, userID uint64) error
	DeleteUserToken(ctx context.Context, userID uint64) error
}

// notFoundOr 把 gorm 的未找到翻译成业务错误，其余原样返回
func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkg.NotFound(format, args...)
	}
	return err
}

func pageOf(page, size int) (offset, limit int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	return (page - 1) * size, size
}
