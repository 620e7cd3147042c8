package service

import (
	"time"

	"Lingo_Community/internal/model"
)

type SetSummary struct {
	ID          uint64          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    *model.Category `json:"category"`
}

type CardView struct {
	ID         uint64      `json:"id"`
	FrontText  string      `json:"frontText"`
	BackText   string      `json:"backText"`
	Difficulty string      `json:"difficulty"`
	SetID      uint64      `json:"setId"`
	Set        *SetSummary `json:"set"`
}

// ProgressView 复习进度 + 卡片上下文
type ProgressView struct {
	ProgressID uint64    `json:"progressId"`
	UserID     uint64    `json:"userId"`
	CardID     uint64    `json:"cardId"`
	LastReview time.Time `json:"lastReview"`
	NextReview time.Time `json:"nextReview"`
	Card       *CardView `json:"card"`
}

func toCardView(c *model.Flashcard) *CardView {
	if c == nil {
		return nil
	}
	v := &CardView{
		ID:         c.ID,
		FrontText:  c.FrontText,
		BackText:   c.BackText,
		Difficulty: c.Difficulty,
		SetID:      c.SetID,
	}
	if c.Set != nil {
		v.Set = &SetSummary{
			ID:          c.Set.ID,
			Title:       c.Set.Title,
			Description: c.Set.Description,
			Category:    c.Set.Category,
		}
	}
	return v
}

func toProgressView(p *model.Progress) ProgressView {
	return ProgressView{
		ProgressID: p.ID,
		UserID:     p.UserID,
		CardID:     p.CardID,
		LastReview: p.LastReview,
		NextReview: p.NextReview,
		Card:       toCardView(p.Card),
	}
}

// ReportedPost 待审核/已处理列表里的一项
type ReportedPost struct {
	model.Post
	LatestReport *model.Report `json:"latestReport,omitempty"`
}

type VideoWithStatus struct {
	model.Video
	Watched   bool       `json:"watched"`
	WatchedAt *time.Time `json:"watchedAt,omitempty"`
}
