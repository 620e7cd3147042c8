package model

import "time"

// Progress 每个 (user, card) 只有一行，复习时 upsert
type Progress struct {
	ID         uint64     `gorm:"primaryKey" json:"progressId"`
	UserID     uint64     `gorm:"not null;uniqueIndex:uk_progress_user_card,priority:1;index:idx_progress_due,priority:1" json:"userId"`
	CardID     uint64     `gorm:"not null;uniqueIndex:uk_progress_user_card,priority:2" json:"cardId"`
	LastReview time.Time  `gorm:"not null" json:"lastReview"`
	NextReview time.Time  `gorm:"not null;index:idx_progress_due,priority:2" json:"nextReview"`
	Card       *Flashcard `gorm:"foreignKey:CardID" json:"card,omitempty"`
}

func (Progress) TableName() string { return "progress" }
