package sqldb

import (
	"context"
	"errors"
	"time"

	"Lingo_Community/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

// DueCount 某个用户到期卡片数
type DueCount struct {
	UserID uint64
	Due    int
}

// Upsert 以 (user_id, card_id) 唯一索引为键，重复复习只更新时间
func (r *ProgressRepository) Upsert(ctx context.Context, userID, cardID uint64, lastReview, nextReview time.Time) (*model.Progress, error) {
	var p model.Progress
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := &model.Progress{
			UserID:     userID,
			CardID:     cardID,
			LastReview: lastReview,
			NextReview: nextReview,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "card_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_review", "next_review"}),
		}).Create(row).Error; err != nil {
			return err
		}
		if err := insertOutbox(tx, EventProgressReviewed, userID, lastReview, map[string]any{
			"user_id":     userID,
			"card_id":     cardID,
			"next_review": nextReview.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
		// 冲突更新时自增 id 不可靠，回读一次
		return tx.Preload("Card.Set.Category").
			Where("user_id = ? AND card_id = ?", userID, cardID).
			First(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) FindByUserCard(ctx context.Context, userID, cardID uint64) (*model.Progress, error) {
	var p model.Progress
	err := r.DB.WithContext(ctx).Preload("Card.Set.Category").
		Where("user_id = ? AND card_id = ?", userID, cardID).
		First(&p).Error
	return &p, err
}

func (r *ProgressRepository) CountByUserCard(ctx context.Context, userID, cardID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Progress{}).
		Where("user_id = ? AND card_id = ?", userID, cardID).
		Count(&n).Error
	return n, err
}

// ListDue next_review <= now 的全部记录，带卡片/卡组/分类
func (r *ProgressRepository) ListDue(ctx context.Context, userID uint64, now time.Time) ([]model.Progress, error) {
	var list []model.Progress
	err := r.DB.WithContext(ctx).Preload("Card.Set.Category").
		Where("user_id = ? AND next_review <= ?", userID, now).
		Find(&list).Error
	return list, err
}

func (r *ProgressRepository) DueCounts(ctx context.Context, now time.Time) ([]DueCount, error) {
	var list []DueCount
	err := r.DB.WithContext(ctx).Model(&model.Progress{}).
		Select("user_id, COUNT(*) AS due").
		Where("next_review <= ?", now).
		Group("user_id").
		Order("user_id ASC").
		Scan(&list).Error
	return list, err
}

// NextUpcoming 还没到期的卡片里最早的 next_review
func (r *ProgressRepository) NextUpcoming(ctx context.Context, userID uint64, now time.Time) (time.Time, bool, error) {
	var p model.Progress
	err := r.DB.WithContext(ctx).Select("id", "next_review").
		Where("user_id = ? AND next_review > ?", userID, now).
		Order("next_review ASC").
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return p.NextReview, true, nil
}
