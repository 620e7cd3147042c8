package sqldb

import (
	"context"
	"errors"

	"Lingo_Community/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByClerkID(ctx context.Context, clerkUserID string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("clerk_user_id = ?", clerkUserID).First(&user).Error
	return &user, err
}

func (r *UserRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Upsert 按 clerk_user_id 同步用户资料，返回是否新建
func (r *UserRepository) Upsert(ctx context.Context, u *model.User) (bool, error) {
	var created bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("clerk_user_id = ?", u.ClerkUserID).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			return tx.Create(u).Error
		}
		if err != nil {
			return err
		}
		updates := map[string]any{
			"username": u.Username,
			"email":    u.Email,
			"role":     u.Role,
		}
		if u.TelegramChatID != nil {
			updates["telegram_chat_id"] = *u.TelegramChatID
		}
		if err = tx.Model(&existing).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(u, existing.ID).Error
	})
	return created, err
}

// ListByIDs 提醒任务批量取用户
func (r *UserRepository) ListByIDs(ctx context.Context, ids []uint64) ([]model.User, error) {
	var list []model.User
	if len(ids) == 0 {
		return list, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&list).Error
	return list, err
}
