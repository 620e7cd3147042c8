package sqldb

import (
	"context"
	"errors"

	"Lingo_Community/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrAlreadyInPlaylist = errors.New("video already in playlist")

type VideoRepository struct {
	DB *gorm.DB
}

func (r *VideoRepository) List(ctx context.Context) ([]model.Video, error) {
	var list []model.Video
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *VideoRepository) FindByID(ctx context.Context, id uint64) (*model.Video, error) {
	var v model.Video
	err := r.DB.WithContext(ctx).First(&v, id).Error
	return &v, err
}

// FindByYoutubeID url 里包含 youtube id 即可
func (r *VideoRepository) FindByYoutubeID(ctx context.Context, youtubeID string) (*model.Video, error) {
	var v model.Video
	err := r.DB.WithContext(ctx).Where("url LIKE ?", "%"+youtubeID+"%").First(&v).Error
	return &v, err
}

func (r *VideoRepository) Create(ctx context.Context, v *model.Video) error {
	return r.DB.WithContext(ctx).Create(v).Error
}

func (r *VideoRepository) Update(ctx context.Context, v *model.Video) error {
	return r.DB.WithContext(ctx).Model(&model.Video{}).Where("id = ?", v.ID).
		Select("title", "url", "description", "topic", "subtitles").
		Updates(v).Error
}

func (r *VideoRepository) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Video{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("video_id = ?", id).Delete(&model.VideoPlaylistItem{}).Error; err != nil {
			return err
		}
		return tx.Where("video_id = ?", id).Delete(&model.VideoProgress{}).Error
	})
}

// MarkWatched 幂等
func (r *VideoRepository) MarkWatched(ctx context.Context, p *model.VideoProgress) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"watched", "watched_at"}),
	}).Create(p).Error
}

func (r *VideoRepository) WatchedSet(ctx context.Context, userID uint64) (map[uint64]model.VideoProgress, error) {
	var list []model.VideoProgress
	if err := r.DB.WithContext(ctx).Where("user_id = ? AND watched = ?", userID, true).Find(&list).Error; err != nil {
		return nil, err
	}
	out := make(map[uint64]model.VideoProgress, len(list))
	for _, p := range list {
		out[p.VideoID] = p
	}
	return out, nil
}

type PlaylistRepository struct {
	DB *gorm.DB
}

func (r *PlaylistRepository) ListByUser(ctx context.Context, userID uint64) ([]model.VideoPlaylist, error) {
	var list []model.VideoPlaylist
	err := r.DB.WithContext(ctx).Preload("Items.Video").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *PlaylistRepository) FindByID(ctx context.Context, id uint64) (*model.VideoPlaylist, error) {
	var p model.VideoPlaylist
	err := r.DB.WithContext(ctx).Preload("Items.Video").First(&p, id).Error
	return &p, err
}

func (r *PlaylistRepository) Create(ctx context.Context, p *model.VideoPlaylist) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *PlaylistRepository) Rename(ctx context.Context, id uint64, title string) error {
	return r.DB.WithContext(ctx).Model(&model.VideoPlaylist{}).Where("id = ?", id).Update("title", title).Error
}

func (r *PlaylistRepository) Delete(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", id).Delete(&model.VideoPlaylistItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.VideoPlaylist{}, id).Error
	})
}

func (r *PlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID uint64) (*model.VideoPlaylistItem, error) {
	item := &model.VideoPlaylistItem{PlaylistID: playlistID, VideoID: videoID}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.VideoPlaylistItem{}).
			Where("playlist_id = ? AND video_id = ?", playlistID, videoID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadyInPlaylist
		}
		if err := tx.Create(item).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyInPlaylist
			}
			return err
		}
		return tx.Preload("Video").First(item, item.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *PlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID uint64) error {
	res := r.DB.WithContext(ctx).
		Where("playlist_id = ? AND video_id = ?", playlistID, videoID).
		Delete(&model.VideoPlaylistItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
