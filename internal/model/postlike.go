package model

import "time"

type PostLike struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	PostID    uint64 `gorm:"not null;uniqueIndex:uk_like_post_user"`
	UserID    uint64 `gorm:"not null;uniqueIndex:uk_like_post_user;index"`
	CreatedAt time.Time
}

func (PostLike) TableName() string {
	return "post_likes"
}
