package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"Lingo_Community/internal/pkg"
	"Lingo_Community/internal/repository/sqldb"

	"gorm.io/gorm"
)

type ProgressService struct {
	repo  *sqldb.ProgressRepository
	users *sqldb.UserRepository
	cards *sqldb.FlashcardRepository
	clock pkg.Clock
	cache DueCache
}

func NewProgressService(db *gorm.DB, clock pkg.Clock, cache DueCache) *ProgressService {
	if clock == nil {
		clock = pkg.SystemClock{}
	}
	return &ProgressService{
		repo:  &sqldb.ProgressRepository{DB: db},
		users: &sqldb.UserRepository{DB: db},
		cards: &sqldb.FlashcardRepository{DB: db},
		clock: clock,
		cache: cache,
	}
}

// RecordReview 按评分计算下次复习时间，(user, card) 维度 upsert
func (s *ProgressService) RecordReview(ctx context.Context, userID, cardID uint64, difficulty Difficulty) (*ProgressView, error) {
	if cardID == 0 {
		return nil, pkg.Validation("cardId is required")
	}
	if !difficulty.IsValid() {
		return nil, pkg.Validation("difficulty must be 1 (Hard), 2 (Good) or 3 (Easy)", map[string]any{"difficulty": int(difficulty)})
	}

	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkg.NotFound("user %d not found", userID)
	}
	ok, err = s.cards.CardExists(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkg.NotFound("flashcard %d not found", cardID)
	}

	now := s.clock.Now()
	p, err := s.repo.Upsert(ctx, userID, cardID, now, NextReview(now, difficulty))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)

	v := toProgressView(p)
	return &v, nil
}

// GetForCard 单张卡片的进度
func (s *ProgressService) GetForCard(ctx context.Context, userID, cardID uint64) (*ProgressView, error) {
	p, err := s.repo.FindByUserCard(ctx, userID, cardID)
	if err != nil {
		return nil, notFoundOr(err, "no progress for flashcard %d", cardID)
	}
	v := toProgressView(p)
	return &v, nil
}

// ListDue next_review <= now 的卡片；有缓存先读缓存
func (s *ProgressService) ListDue(ctx context.Context, userID uint64) ([]ProgressView, error) {
	if s.cache != nil {
		if b, hit, err := s.cache.Get(ctx, userID); err == nil && hit {
			var cached []ProgressView
			if err = json.Unmarshal(b, &cached); err == nil {
				return cached, nil
			}
		}
	}

	now := s.clock.Now()
	rows, err := s.repo.ListDue(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	out := make([]ProgressView, 0, len(rows))
	for i := range rows {
		out = append(out, toProgressView(&rows[i]))
	}

	if s.cache != nil {
		s.fill(ctx, userID, out)
	}
	return out, nil
}

// fill 缓存最多活到下一张卡到期
func (s *ProgressService) fill(ctx context.Context, userID uint64, out []ProgressView) {
	b, err := json.Marshal(out)
	if err != nil {
		return
	}
	now := s.clock.Now()
	next, ok, err := s.repo.NextUpcoming(ctx, userID, now)
	if err != nil {
		return
	}
	var ttl time.Duration
	if ok {
		ttl = next.Sub(now)
		if ttl <= 0 {
			return
		}
	}
	if err = s.cache.Set(ctx, userID, b, ttl); err != nil {
		log.Printf("due cache set user=%d err: %v", userID, err)
	}
}

func (s *ProgressService) invalidate(ctx context.Context, userID uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("due cache invalidate user=%d err: %v", userID, err)
	}
}

// DueCounts 提醒任务用
func (s *ProgressService) DueCounts(ctx context.Context) ([]sqldb.DueCount, error) {
	return s.repo.DueCounts(ctx, s.clock.Now())
}
