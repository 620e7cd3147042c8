package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             uint64    `gorm:"primaryKey" json:"id"`
	ClerkUserID    string    `gorm:"uniqueIndex;size:64;not null" json:"clerkUserId"`
	Username       string    `gorm:"size:64;not null" json:"username"`
	Email          string    `gorm:"size:128;not null" json:"email"`
	Role           string    `gorm:"size:16;not null;default:user" json:"role"`
	TelegramChatID *int64    `json:"telegramChatId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Author 帖子、评论里公开展示的作者信息，不带 clerk id、邮箱和角色
type Author struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

func (Author) TableName() string { return "users" }
