package model

import "time"

const (
	QuestionMCQ   = "mcq"
	QuestionMatch = "match"
	QuestionOpen  = "open"
)

type Quiz struct {
	ID          uint64         `gorm:"primaryKey" json:"id"`
	UserID      uint64         `gorm:"not null;index" json:"userId"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Difficulty  string         `gorm:"size:16" json:"difficulty"`
	Type        string         `gorm:"size:16" json:"type"`
	Questions   []QuizQuestion `json:"questions"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type QuizQuestion struct {
	ID            uint64          `gorm:"primaryKey" json:"id"`
	QuizID        uint64          `gorm:"not null;index" json:"quizId"`
	Type          string          `gorm:"size:16;not null" json:"type"`
	Question      string          `gorm:"type:text;not null" json:"question"`
	CorrectAnswer string          `gorm:"type:text" json:"correctAnswer"`
	Position      int             `gorm:"not null;default:0" json:"order"`
	Choices       []QuizChoice    `gorm:"foreignKey:QuestionID" json:"choices"`
	MatchPairs    []QuizMatchPair `gorm:"foreignKey:QuestionID" json:"matchPairs"`
}

type QuizChoice struct {
	ID         uint64 `gorm:"primaryKey" json:"id"`
	QuestionID uint64 `gorm:"not null;index" json:"questionId"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"not null;default:false" json:"isCorrect"`
}

type QuizMatchPair struct {
	ID         uint64 `gorm:"primaryKey" json:"id"`
	QuestionID uint64 `gorm:"not null;index" json:"questionId"`
	LeftItem   string `gorm:"size:255;not null" json:"leftItem"`
	RightItem  string `gorm:"size:255;not null" json:"rightItem"`
}

type QuizAttempt struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	QuizID      uint64    `gorm:"not null;uniqueIndex:uk_attempt_quiz_user" json:"quizId"`
	UserID      uint64    `gorm:"not null;uniqueIndex:uk_attempt_quiz_user" json:"userId"`
	Result      int       `gorm:"not null" json:"result"`
	CompletedAt time.Time `gorm:"not null" json:"completedAt"`
}
