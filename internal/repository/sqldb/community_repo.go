package sqldb

import (
	"context"
	"time"

	"Lingo_Community/internal/model"

	"gorm.io/gorm"
)

type CommunityRepository struct {
	DB *gorm.DB
}

// Create 社区和创建者的 accepted 成员行在同一事务里写入，member_count 从 1 开始
func (r *CommunityRepository) Create(ctx context.Context, c *model.Community, at time.Time) (*model.Community, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c.MemberCount = 1
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.CommunityMember{
			CommunityID: c.ID,
			UserID:      c.EstablishedBy,
			Status:      model.MemberAccepted,
			Role:        1,
		}).Error; err != nil {
			return err
		}
		return insertOutbox(tx, EventCommunityCreated, c.ID, at, map[string]any{
			"community_id":   c.ID,
			"established_by": c.EstablishedBy,
		})
	})
	return c, err
}

func (r *CommunityRepository) FindByID(ctx context.Context, id uint64) (*model.Community, error) {
	var community model.Community
	err := r.DB.WithContext(ctx).First(&community, id).Error
	return &community, err
}

func (r *CommunityRepository) FindByName(ctx context.Context, name string) (*model.Community, error) {
	var community model.Community
	err := r.DB.WithContext(ctx).Where("name = ?", name).First(&community).Error
	return &community, err
}

func (r *CommunityRepository) List(ctx context.Context, offset, limit int) ([]model.Community, error) {
	var list []model.Community
	err := r.DB.WithContext(ctx).Order("id desc").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

// Available 用户没有任何成员行（含 pending）的社区
func (r *CommunityRepository) Available(ctx context.Context, userID uint64) ([]model.Community, error) {
	var list []model.Community
	sub := r.DB.Model(&model.CommunityMember{}).Select("community_id").Where("user_id = ?", userID)
	err := r.DB.WithContext(ctx).
		Where("id NOT IN (?)", sub).
		Order("name ASC").
		Find(&list).Error
	return list, err
}

// Joined 用户已被接受的社区
func (r *CommunityRepository) Joined(ctx context.Context, userID uint64) ([]model.Community, error) {
	var list []model.Community
	sub := r.DB.Model(&model.CommunityMember{}).Select("community_id").
		Where("user_id = ? AND status = ?", userID, model.MemberAccepted)
	err := r.DB.WithContext(ctx).
		Where("id IN (?)", sub).
		Order("name ASC").
		Find(&list).Error
	return list, err
}
