package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestDueCacheTTLClamp(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	repo := NewDueCacheRepository(rdb)
	key := "progress:due:user:7"

	if _, hit, err := repo.Get(ctx, 7); err != nil || hit {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}

	cases := []struct {
		name string
		ttl  time.Duration
		want time.Duration
	}{
		{"zero falls back to default", 0, DueCacheTTL},
		{"negative falls back to default", -time.Second, DueCacheTTL},
		{"longer is clamped", time.Hour, DueCacheTTL},
		{"next card due sooner", 30 * time.Second, 30 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := repo.Set(ctx, 7, []byte(`[{"id":1}]`), tc.ttl); err != nil {
				t.Fatal(err)
			}
			if got := mr.TTL(key); got != tc.want {
				t.Fatalf("ttl %v, want %v", got, tc.want)
			}
		})
	}

	b, hit, err := repo.Get(ctx, 7)
	if err != nil || !hit || string(b) != `[{"id":1}]` {
		t.Fatalf("get: %q hit=%v err=%v", b, hit, err)
	}

	mr.FastForward(31 * time.Second)
	if _, hit, _ = repo.Get(ctx, 7); hit {
		t.Fatal("entry should expire with the next due card")
	}

	_ = repo.Set(ctx, 7, []byte(`[]`), 0)
	if err = repo.Invalidate(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if mr.Exists(key) {
		t.Fatal("invalidate left the key")
	}
}

func TestDistLockRelease(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	lock := &DistLock{RDB: rdb}

	ok, err := lock.Acquire(ctx, "like:post:1", "token-a", 10*time.Second)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if ok, _ = lock.Acquire(ctx, "like:post:1", "token-b", 10*time.Second); ok {
		t.Fatal("second holder got the lock")
	}

	// 别人的 token 不能释放
	if err = lock.Release(ctx, "like:post:1", "token-b"); err != nil {
		t.Fatal(err)
	}
	if v, _ := mr.Get("lock:like:post:1"); v != "token-a" {
		t.Fatalf("lock value %q after foreign release", v)
	}

	if err = lock.Release(ctx, "like:post:1", "token-a"); err != nil {
		t.Fatal(err)
	}
	if mr.Exists("lock:like:post:1") {
		t.Fatal("owner release left the key")
	}
	if ok, _ = lock.Acquire(ctx, "like:post:1", "token-b", 10*time.Second); !ok {
		t.Fatal("lock not free after release")
	}

	mr.FastForward(11 * time.Second)
	if ok, _ = lock.Acquire(ctx, "like:post:1", "token-c", 10*time.Second); !ok {
		t.Fatal("expired lock should be acquirable")
	}
}

func TestReminderMark(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	repo := &ReminderRepository{RDB: rdb}

	ok, err := repo.MarkReminded(ctx, 3, t0)
	if err != nil || !ok {
		t.Fatalf("first mark: ok=%v err=%v", ok, err)
	}
	if got := mr.TTL("reminder:sent:3:2025-06-15"); got != ReminderTTL {
		t.Fatalf("ttl %v", got)
	}
	if ok, _ = repo.MarkReminded(ctx, 3, t0.Add(5*time.Hour)); ok {
		t.Fatal("same day marked twice")
	}
	if ok, _ = repo.MarkReminded(ctx, 3, t0.Add(24*time.Hour)); !ok {
		t.Fatal("next day should be a new mark")
	}
	if ok, _ = repo.MarkReminded(ctx, 4, t0); !ok {
		t.Fatal("marks are per user")
	}

	if err = repo.Unmark(ctx, 3, t0); err != nil {
		t.Fatal(err)
	}
	if ok, _ = repo.MarkReminded(ctx, 3, t0); !ok {
		t.Fatal("unmark should allow a retry")
	}
}

func TestLikeCountCache(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	repo := NewLikeCacheRepository(rdb)

	if _, hit, err := repo.GetLikeCountCached(ctx, 9); err != nil || hit {
		t.Fatalf("miss: hit=%v err=%v", hit, err)
	}
	if err := repo.SetLikeCount(ctx, 9, 4); err != nil {
		t.Fatal(err)
	}
	if got := mr.TTL("like:cnt:post:9"); got != LikeCntTTL {
		t.Fatalf("ttl %v", got)
	}
	n, hit, err := repo.GetLikeCountCached(ctx, 9)
	if err != nil || !hit || n != 4 {
		t.Fatalf("hit: n=%d hit=%v err=%v", n, hit, err)
	}
	if err = repo.DeleteCount(ctx, 9); err != nil {
		t.Fatal(err)
	}
	if err = repo.DeleteCount(ctx, 9); err != nil {
		t.Fatalf("deleting a missing key: %v", err)
	}
	if _, hit, _ = repo.GetLikeCountCached(ctx, 9); hit {
		t.Fatal("count still cached")
	}
}

func TestSessionToken(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	repo := &SessionRepository{RDB: rdb}

	if _, err := repo.GetUserToken(ctx, 1); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("missing token: %v", err)
	}
	if err := repo.AddUserToken(ctx, 1, "old"); err != nil {
		t.Fatal(err)
	}
	if err := repo.AddUserToken(ctx, 1, "new"); err != nil {
		t.Fatal(err)
	}
	if got, _ := repo.GetUserToken(ctx, 1); got != "new" {
		t.Fatalf("token %q, only the latest one is kept", got)
	}

	mr.FastForward(UserTokenExpire - time.Minute)
	if err := repo.ExtendUserToken(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if got := mr.TTL("login:user:token:1"); got != UserTokenExpire {
		t.Fatalf("ttl after extend %v", got)
	}

	if err := repo.DeleteUserToken(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetUserToken(ctx, 1); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("after delete: %v", err)
	}
}
