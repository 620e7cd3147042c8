package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"Lingo_Community/internal/pkg"
	"Lingo_Community/internal/repository/sqldb"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const likeLockTTL = 3 * time.Second

type PostLikeService struct {
	repo  *sqldb.PostLikeRepository
	posts *sqldb.PostRepository
	cache LikeCounter
	lock  Locker
}

// NewPostLikeService cache 和 lock 可以为 nil（未启用 redis）
func NewPostLikeService(db *gorm.DB, cache LikeCounter, lock Locker) *PostLikeService {
	return &PostLikeService{
		repo:  &sqldb.PostLikeRepository{DB: db},
		posts: &sqldb.PostRepository{DB: db},
		cache: cache,
		lock:  lock,
	}
}

type LikeStatus struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

// Toggle 先写库；拿到锁就用库里的新值覆盖缓存，拿不到锁删计数 key，交给读侧回填
func (s *PostLikeService) Toggle(ctx context.Context, userID, postID uint64) (*LikeStatus, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	liked, count, err := s.repo.Toggle(ctx, userID, postID)
	if err != nil {
		return nil, notFoundOr(err, "post %d not found", postID)
	}

	if s.cache != nil {
		name := lockName(postID)
		token := uuid.NewString()
		if s.lock != nil {
			if got, _ := s.lock.Acquire(ctx, name, token, likeLockTTL); got {
				defer s.release(ctx, name, token)
				if err = s.cache.SetLikeCount(ctx, postID, count); err == nil {
					return &LikeStatus{Liked: liked, Count: count}, nil
				}
			}
		}
		_ = s.cache.DeleteCount(ctx, postID)
	}
	return &LikeStatus{Liked: liked, Count: count}, nil
}

func (s *PostLikeService) Status(ctx context.Context, userID, postID uint64) (*LikeStatus, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	liked, err := s.repo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	count, err := s.countWithLock(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &LikeStatus{Liked: liked, Count: count}, nil
}

// countWithLock 缓存未命中时只让拿到锁的请求回源并回填
func (s *PostLikeService) countWithLock(ctx context.Context, postID uint64) (int64, error) {
	if s.cache == nil {
		return s.repo.GetLikeCount(ctx, postID)
	}
	if v, ok, err := s.cache.GetLikeCountCached(ctx, postID); err == nil && ok {
		return v, nil
	}
	if s.lock == nil {
		return s.repo.GetLikeCount(ctx, postID)
	}

	name := lockName(postID)
	token := uuid.NewString()
	got, _ := s.lock.Acquire(ctx, name, token, likeLockTTL)
	if got {
		defer s.release(ctx, name, token)
		// 第二次检查
		if v, ok, err := s.cache.GetLikeCountCached(ctx, postID); err == nil && ok {
			return v, nil
		}
		v, err := s.repo.GetLikeCount(ctx, postID)
		if err != nil {
			return 0, err
		}
		_ = s.cache.SetLikeCount(ctx, postID, v)
		return v, nil
	}

	// 没拿到锁，短暂退避后再读一次缓存
	time.Sleep(50 * time.Millisecond)
	if v, ok, err := s.cache.GetLikeCountCached(ctx, postID); err == nil && ok {
		return v, nil
	}
	return s.repo.GetLikeCount(ctx, postID)
}

func (s *PostLikeService) requirePost(ctx context.Context, postID uint64) error {
	ok, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if !ok {
		return pkg.NotFound("post %d not found", postID)
	}
	return nil
}

func (s *PostLikeService) release(ctx context.Context, name, token string) {
	if err := s.lock.Release(ctx, name, token); err != nil {
		log.Printf("release lock %s err: %v", name, err)
	}
}

func lockName(postID uint64) string {
	return fmt.Sprintf("post:like:%d", postID)
}
