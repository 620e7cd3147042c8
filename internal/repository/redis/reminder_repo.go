package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ReminderPrefix = "reminder:sent"
	ReminderTTL    = 36 * time.Hour
)

// ReminderRepository 每个用户每天最多提醒一次
type ReminderRepository struct {
	RDB *redis.Client
}

// MarkReminded SETNX 成功才返回 true
func (r *ReminderRepository) MarkReminded(ctx context.Context, userID uint64, day time.Time) (bool, error) {
	key := fmt.Sprintf("%s:%d:%s", ReminderPrefix, userID, day.UTC().Format("2006-01-02"))
	return r.RDB.SetNX(ctx, key, 1, ReminderTTL).Result()
}

// Unmark 发送失败时回滚标记，下一轮还能重试
func (r *ReminderRepository) Unmark(ctx context.Context, userID uint64, day time.Time) error {
	key := fmt.Sprintf("%s:%d:%s", ReminderPrefix, userID, day.UTC().Format("2006-01-02"))
	return r.RDB.Del(ctx, key).Err()
}
