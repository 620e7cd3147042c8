package sqldb

import (
	"context"

	"Lingo_Community/internal/model"

	"gorm.io/gorm"
)

type PostRepository struct {
	DB *gorm.DB
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Create(post).Error
}

func (r *PostRepository) FindByID(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).Preload("Author").First(&post, id).Error
	return &post, err
}

func (r *PostRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// List 基础分页查询，communityID=0 表示全站
func (r *PostRepository) List(ctx context.Context, communityID uint64, category string, offset, limit int) ([]model.Post, error) {
	var list []model.Post
	q := r.DB.WithContext(ctx).Preload("Author")
	if communityID > 0 {
		q = q.Where("community_id = ?", communityID)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

// Update 只改传入的列
func (r *PostRepository) Update(ctx context.Context, id uint64, fields map[string]any) error {
	return r.DB.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Updates(fields).Error
}

func (r *PostRepository) IncrementView(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// DeleteByAuthor 作者删帖，连带评论和点赞；举报记录保留
func (r *PostRepository) DeleteByAuthor(ctx context.Context, postID, authorID uint64) (int64, error) {
	var affected int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND author_id = ?", postID, authorID).Delete(&model.Post{})
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		if affected == 0 {
			return nil
		}
		return deletePostChildren(tx, postID)
	})
	return affected, err
}

// deletePostChildren 举报是证据，不删
func deletePostChildren(tx *gorm.DB, postID uint64) error {
	if err := tx.Where("post_id = ?", postID).Delete(&model.Comment{}).Error; err != nil {
		return err
	}
	return tx.Where("post_id = ?", postID).Delete(&model.PostLike{}).Error
}

type CommentRepository struct {
	DB *gorm.DB
}

func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID uint64) ([]model.Comment, error) {
	var list []model.Comment
	err := r.DB.WithContext(ctx).Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	return list, err
}
