package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DueCacheTTL    = 5 * time.Minute
	DueCachePrefix = "progress:due:user"
)

// DueCacheRepository 缓存用户到期卡片列表（序列化好的 JSON）
type DueCacheRepository struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewDueCacheRepository(rdb *redis.Client) *DueCacheRepository {
	return &DueCacheRepository{RDB: rdb, TTL: DueCacheTTL}
}

func (r *DueCacheRepository) key(userID uint64) string {
	return fmt.Sprintf("%s:%d", DueCachePrefix, userID)
}

// Get 第二个返回值表示是否命中
func (r *DueCacheRepository) Get(ctx context.Context, userID uint64) ([]byte, bool, error) {
	b, err := r.RDB.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Set ttl 不超过下一张卡到期的时间，避免缓存里漏掉新到期的卡
func (r *DueCacheRepository) Set(ctx context.Context, userID uint64, data []byte, ttl time.Duration) error {
	if ttl <= 0 || ttl > r.TTL {
		ttl = r.TTL
	}
	return r.RDB.Set(ctx, r.key(userID), data, ttl).Err()
}

func (r *DueCacheRepository) Invalidate(ctx context.Context, userID uint64) error {
	return r.RDB.Del(ctx, r.key(userID)).Err()
}
