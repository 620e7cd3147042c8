package model

import "time"

type Category struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	Description string `gorm:"size:128;not null" json:"description"`
}

type FlashcardSet struct {
	ID          uint64      `gorm:"primaryKey" json:"id"`
	UserID      uint64      `gorm:"not null;index" json:"userId"`
	CategoryID  uint64      `gorm:"not null;index" json:"categoryId"`
	Title       string      `gorm:"size:200;not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	Category    *Category   `json:"category,omitempty"`
	Flashcards  []Flashcard `gorm:"foreignKey:SetID" json:"flashcards"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type Flashcard struct {
	ID         uint64        `gorm:"primaryKey" json:"id"`
	SetID      uint64        `gorm:"not null;index" json:"setId"`
	FrontText  string        `gorm:"type:text;not null" json:"frontText"`
	BackText   string        `gorm:"type:text;not null" json:"backText"`
	Difficulty string        `gorm:"size:16" json:"difficulty"`
	Set        *FlashcardSet `gorm:"foreignKey:SetID" json:"set,omitempty"`
}
