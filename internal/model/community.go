package model

import "time"

const (
	MemberPending  = "pending"
	MemberAccepted = "accepted"
)

type Community struct {
	ID              uint64    `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	EstablishedBy   uint64    `gorm:"not null;index" json:"establishedBy"`
	EstablishedDate time.Time `gorm:"not null" json:"establishedDate"`
	MemberCount     int64     `gorm:"not null;default:0" json:"memberCount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type CommunityMember struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	CommunityID uint64    `gorm:"not null;index;uniqueIndex:uk_community_user" json:"communityId"`
	UserID      uint64    `gorm:"not null;index;uniqueIndex:uk_community_user" json:"userId"`
	Status      string    `gorm:"size:16;not null;default:pending" json:"status"`
	Role        int       `gorm:"not null;default:0" json:"role"` // 0=member, 1=admin
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
