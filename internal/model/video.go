package model

import "time"

type Video struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	URL         string `gorm:"size:512;not null" json:"url"`
	Description string `gorm:"type:text" json:"description"`
	Topic       string `gorm:"size:64" json:"topic"`
	Subtitles   string `gorm:"type:text" json:"subtitles"`
}

type VideoPlaylist struct {
	ID        uint64              `gorm:"primaryKey" json:"id"`
	UserID    uint64              `gorm:"not null;index" json:"userId"`
	Title     string              `gorm:"size:200;not null" json:"title"`
	Items     []VideoPlaylistItem `gorm:"foreignKey:PlaylistID" json:"videos"`
	CreatedAt time.Time           `json:"createdAt"`
}

type VideoPlaylistItem struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	PlaylistID uint64    `gorm:"not null;uniqueIndex:uk_playlist_video" json:"playlistId"`
	VideoID    uint64    `gorm:"not null;uniqueIndex:uk_playlist_video" json:"videoId"`
	Video      *Video    `json:"video,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// VideoProgress 观看记录
type VideoProgress struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:uk_video_progress" json:"userId"`
	VideoID   uint64    `gorm:"not null;uniqueIndex:uk_video_progress" json:"videoId"`
	Watched   bool      `gorm:"not null;default:false" json:"watched"`
	WatchedAt time.Time `json:"watchedAt"`
}
