package service

import (
	"context"
	"errors"
	"strings"

	"Lingo_Community/internal/model"
	"Lingo_Community/internal/pkg"
	"Lingo_Community/internal/repository/sqldb"

	"gorm.io/gorm"
)

type VideoService struct {
	repo      *sqldb.VideoRepository
	playlists *sqldb.PlaylistRepository
	clock     pkg.Clock
}

func NewVideoService(db *gorm.DB, clock pkg.Clock) *VideoService {
	if clock == nil {
		clock = pkg.SystemClock{}
	}
	return &VideoService{
		repo:      &sqldb.VideoRepository{DB: db},
		playlists: &sqldb.PlaylistRepository{DB: db},
		clock:     clock,
	}
}

func (s *VideoService) List(ctx context.Context) ([]model.Video, error) {
	return s.repo.List(ctx)
}

func (s *VideoService) ByYoutubeID(ctx context.Context, youtubeID string) (*model.Video, error) {
	if strings.TrimSpace(youtubeID) == "" {
		return nil, pkg.Validation("youtube id required")
	}
	v, err := s.repo.FindByYoutubeID(ctx, youtubeID)
	if err != nil {
		return nil, notFoundOr(err, "video %q not found", youtubeID)
	}
	return v, nil
}

// WithProgress 所有视频 + 当前用户是否看过
func (s *VideoService) WithProgress(ctx context.Context, userID uint64) ([]VideoWithStatus, error) {
	videos, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	watched, err := s.repo.WatchedSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]VideoWithStatus, 0, len(videos))
	for _, v := range videos {
		item := VideoWithStatus{Video: v}
		if p, ok := watched[v.ID]; ok {
			at := p.WatchedAt
			item.Watched = true
			item.WatchedAt = &at
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *VideoService) MarkWatched(ctx context.Context, userID, videoID uint64) (*model.VideoProgress, error) {
	if _, err := s.get(ctx, videoID); err != nil {
		return nil, err
	}
	p := &model.VideoProgress{UserID: userID, VideoID: videoID, Watched: true, WatchedAt: s.clock.Now()}
	if err := s.repo.MarkWatched(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *VideoService) Create(ctx context.Context, v *model.Video) (*model.Video, error) {
	if err := validateVideo(v); err != nil {
		return nil, err
	}
	v.ID = 0
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *VideoService) Update(ctx context.Context, id uint64, v *model.Video) (*model.Video, error) {
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}
	if err := validateVideo(v); err != nil {
		return nil, err
	}
	v.ID = id
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *VideoService) Delete(ctx context.Context, id uint64) error {
	return notFoundOr(s.repo.Delete(ctx, id), "video %d not found", id)
}

func (s *VideoService) get(ctx context.Context, id uint64) (*model.Video, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "video %d not found", id)
	}
	return v, nil
}

func validateVideo(v *model.Video) error {
	v.Title = strings.TrimSpace(v.Title)
	v.URL = strings.TrimSpace(v.URL)
	if v.Title == "" || v.URL == "" {
		return pkg.Validation("title and url are required")
	}
	return nil
}

func (s *VideoService) MyPlaylists(ctx context.Context, userID uint64) ([]model.VideoPlaylist, error) {
	return s.playlists.ListByUser(ctx, userID)
}

func (s *VideoService) Playlist(ctx context.Context, id uint64) (*model.VideoPlaylist, error) {
	p, err := s.playlists.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "playlist %d not found", id)
	}
	return p, nil
}

func (s *VideoService) CreatePlaylist(ctx context.Context, userID uint64, title string) (*model.VideoPlaylist, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, pkg.Validation("title required")
	}
	p := &model.VideoPlaylist{UserID: userID, Title: title}
	if err := s.playlists.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.Playlist(ctx, p.ID)
}

func (s *VideoService) RenamePlaylist(ctx context.Context, userID, id uint64, title string) (*model.VideoPlaylist, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, pkg.Validation("title required")
	}
	if _, err := s.ownedPlaylist(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := s.playlists.Rename(ctx, id, title); err != nil {
		return nil, err
	}
	return s.Playlist(ctx, id)
}

func (s *VideoService) DeletePlaylist(ctx context.Context, userID, id uint64) error {
	if _, err := s.ownedPlaylist(ctx, userID, id); err != nil {
		return err
	}
	return s.playlists.Delete(ctx, id)
}

func (s *VideoService) AddToPlaylist(ctx context.Context, userID, playlistID, videoID uint64) (*model.VideoPlaylistItem, error) {
	if _, err := s.ownedPlaylist(ctx, userID, playlistID); err != nil {
		return nil, err
	}
	if _, err := s.get(ctx, videoID); err != nil {
		return nil, err
	}
	item, err := s.playlists.AddVideo(ctx, playlistID, videoID)
	if errors.Is(err, sqldb.ErrAlreadyInPlaylist) {
		return nil, pkg.Validation("video already in playlist")
	}
	return item, err
}

func (s *VideoService) RemoveFromPlaylist(ctx context.Context, userID, playlistID, videoID uint64) error {
	if _, err := s.ownedPlaylist(ctx, userID, playlistID); err != nil {
		return err
	}
	return notFoundOr(s.playlists.RemoveVideo(ctx, playlistID, videoID), "video %d not in playlist %d", videoID, playlistID)
}

func (s *VideoService) ownedPlaylist(ctx context.Context, userID, id uint64) (*model.VideoPlaylist, error) {
	p, err := s.Playlist(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, pkg.Forbidden("not the owner of this playlist")
	}
	return p, nil
}
