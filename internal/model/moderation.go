package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ModerationApprove = "approve"
	ModerationDelete  = "delete"
	ModerationResolve = "resolve"
)

// Report 举报记录，只追加
type Report struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	PostID       uint64    `gorm:"not null;index" json:"postId"`
	ReporterID   uint64    `gorm:"not null;index" json:"reporterId"`
	Reason       string    `gorm:"size:255;not null" json:"reason"`
	Details      string    `gorm:"type:text" json:"details"`
	DateReported time.Time `gorm:"not null" json:"dateReported"`
}

// ModerationAudit 审核留痕；帖子被删除后 note 仍然保留在这里
type ModerationAudit struct {
	ID          uint64         `gorm:"primaryKey" json:"id"`
	PostID      uint64         `gorm:"not null;index" json:"postId"`
	Action      string         `gorm:"size:16;not null" json:"action"`
	Note        string         `gorm:"type:text" json:"note"`
	ModeratorID uint64         `gorm:"not null" json:"moderatorId"`
	Snapshot    datatypes.JSON `json:"snapshot,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func (ModerationAudit) TableName() string { return "moderation_audit" }
