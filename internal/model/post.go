package model

import "time"

type Post struct {
	ID             uint64    `gorm:"primaryKey" json:"id"`
	CommunityID    *uint64   `gorm:"index" json:"communityId,omitempty"`
	AuthorID       uint64    `gorm:"not null;index" json:"authorId"`
	Title          string    `gorm:"size:200;not null" json:"title"`
	Content        string    `gorm:"type:text" json:"content"`
	Category       string    `gorm:"size:64" json:"category"`
	ViewCount      int64     `gorm:"not null;default:0" json:"viewCount"`
	LikeCount      int64     `gorm:"not null;default:0" json:"likeCount"`
	Reported       bool      `gorm:"not null;default:false;index" json:"reported"`
	ReportResolved bool      `gorm:"not null;default:false" json:"reportResolved"`
	ModerationNote *string   `gorm:"type:text" json:"moderationNote"`
	Author         *Author   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Comment struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	PostID    uint64    `gorm:"not null;index" json:"postId"`
	AuthorID  uint64    `gorm:"not null;index" json:"authorId"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Author    *Author   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
