package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	LikeCntTTL       = 24 * time.Hour
	LikeCntKeyPrefix = "like:cnt:post" // 某个帖子的点赞计数
	LockKeyPrefix    = "lock"
)

// LikeCacheRepository 点赞计数缓存，库是唯一真相
type LikeCacheRepository struct {
	RDB        *redis.Client
	likeCntTTL time.Duration
}

// DistLock SETNX + lua 释放
type DistLock struct {
	RDB *redis.Client
}

func NewLikeCacheRepository(rdb *redis.Client) *LikeCacheRepository {
	return &LikeCacheRepository{
		RDB:        rdb,
		likeCntTTL: LikeCntTTL,
	}
}

func (r *LikeCacheRepository) likeCntKey(postID uint64) string {
	return fmt.Sprintf("%s:%d", LikeCntKeyPrefix, postID)
}

func (r *LikeCacheRepository) GetLikeCountCached(ctx context.Context, postID uint64) (int64, bool, error) {
	val, err := r.RDB.Get(ctx, r.likeCntKey(postID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	return val, err == nil, err
}

func (r *LikeCacheRepository) SetLikeCount(ctx context.Context, postID uint64, cnt int64) error {
	return r.RDB.Set(ctx, r.likeCntKey(postID), cnt, r.likeCntTTL).Err()
}

// DeleteCount 删除计数缓存，交给读侧回填
func (r *LikeCacheRepository) DeleteCount(ctx context.Context, postID uint64) error {
	if err := r.RDB.Del(ctx, r.likeCntKey(postID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// Acquire 请求加分布式锁
func (l *DistLock) Acquire(ctx context.Context, name, token string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("%s:%s", LockKeyPrefix, name)
	return l.RDB.SetNX(ctx, key, token, ttl).Result()
}

// Release 用lua保证原子性
func (l *DistLock) Release(ctx context.Context, name, token string) error {
	key := fmt.Sprintf("%s:%s", LockKeyPrefix, name)
	_, err := releaseScript.Run(ctx, l.RDB, []string{key}, token).Result()
	return err
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`)
