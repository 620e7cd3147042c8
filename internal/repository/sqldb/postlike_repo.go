package sqldb

import (
	"context"
	"errors"

	"Lingo_Community/internal/model"

	"gorm.io/gorm"
)

type PostLikeRepository struct {
	DB *gorm.DB
}

// Toggle 点赞/取消点赞，返回切换后的状态和最新计数
func (r *PostLikeRepository) Toggle(ctx context.Context, userID, postID uint64) (bool, int64, error) {
	var (
		liked bool
		count int64
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&model.PostLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			// 计数-1，防止负数由对账兜底
			if err := tx.Model(&model.Post{}).
				Where("id = ?", postID).
				UpdateColumn("like_count", gorm.Expr("CASE WHEN like_count > 0 THEN like_count - 1 ELSE 0 END")).
				Error; err != nil {
				return err
			}
		} else {
			// 唯一(post_id, user_id) 兜底并发重复点赞
			if err := tx.Create(&model.PostLike{UserID: userID, PostID: postID}).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.Post{}).
				Where("id = ?", postID).
				UpdateColumn("like_count", gorm.Expr("like_count + 1")).
				Error; err != nil {
				return err
			}
			liked = true
		}
		return r.readCount(tx, postID, &count)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 并发的另一个请求已经点过赞，事务已回滚，重新读计数
		count, err = r.GetLikeCount(ctx, postID)
		return true, count, err
	}
	return liked, count, err
}

func (r *PostLikeRepository) readCount(tx *gorm.DB, postID uint64, count *int64) error {
	var p model.Post
	if err := tx.Select("id", "like_count").First(&p, postID).Error; err != nil {
		return err
	}
	*count = p.LikeCount
	return nil
}

func (r *PostLikeRepository) IsLiked(ctx context.Context, userID, postID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.PostLike{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (r *PostLikeRepository) GetLikeCount(ctx context.Context, postID uint64) (int64, error) {
	var p model.Post
	err := r.DB.WithContext(ctx).Select("id", "like_count").First(&p, postID).Error
	if err != nil {
		return 0, err
	}
	return p.LikeCount, nil
}
