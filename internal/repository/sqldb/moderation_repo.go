package sqldb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Lingo_Community/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ModerationRepository struct {
	DB *gorm.DB
}

// Report 追加一条举报并把帖子标记为 reported
func (r *ModerationRepository) Report(ctx context.Context, rep *model.Report) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&post, rep.PostID).Error; err != nil {
			return err
		}
		if err := tx.Create(rep).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Post{}).Where("id = ?", rep.PostID).
			Update("reported", true).Error; err != nil {
			return err
		}
		return insertOutbox(tx, EventPostReported, rep.PostID, rep.DateReported, map[string]any{
			"post_id":     rep.PostID,
			"report_id":   rep.ID,
			"reporter_id": rep.ReporterID,
			"reason":      rep.Reason,
		})
	})
}

// Moderate 审核动作 + 审计日志，同一事务；delete 时返回删除前的快照
func (r *ModerationRepository) Moderate(ctx context.Context, action string, postID, moderatorID uint64, note string, at time.Time) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, postID).Error; err != nil {
			return err
		}

		updates := map[string]any{
			"report_resolved": true,
			"moderation_note": note,
		}
		switch action {
		case model.ModerationApprove:
			updates["reported"] = false
		case model.ModerationResolve, model.ModerationDelete:
		default:
			return fmt.Errorf("unknown moderation action %q", action)
		}
		if err := tx.Model(&model.Post{}).Where("id = ?", postID).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.First(&post, postID).Error; err != nil {
			return err
		}

		snapshot, err := json.Marshal(post)
		if err != nil {
			return err
		}
		if err = tx.Create(&model.ModerationAudit{
			PostID:      postID,
			Action:      action,
			Note:        note,
			ModeratorID: moderatorID,
			Snapshot:    datatypes.JSON(snapshot),
			CreatedAt:   at,
		}).Error; err != nil {
			return err
		}

		if action == model.ModerationDelete {
			if err = deletePostChildren(tx, postID); err != nil {
				return err
			}
			if err = tx.Delete(&model.Post{}, postID).Error; err != nil {
				return err
			}
		}
		return insertOutbox(tx, EventPostModerated, postID, at, map[string]any{
			"post_id":      postID,
			"action":       action,
			"moderator_id": moderatorID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Pending reported=true，不看 report_resolved
func (r *ModerationRepository) Pending(ctx context.Context) ([]model.Post, error) {
	var list []model.Post
	err := r.DB.WithContext(ctx).Preload("Author").
		Where("reported = ?", true).
		Order("updated_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *ModerationRepository) Resolved(ctx context.Context) ([]model.Post, error) {
	var list []model.Post
	err := r.DB.WithContext(ctx).Preload("Author").
		Where("reported = ? AND report_resolved = ?", false, true).
		Order("updated_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

func (r *ModerationRepository) LatestReport(ctx context.Context, postID uint64) (*model.Report, error) {
	var rep model.Report
	err := r.DB.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("date_reported DESC, id DESC").
		First(&rep).Error
	return &rep, err
}

// LatestReports 一次取多个帖子的最新举报
func (r *ModerationRepository) LatestReports(ctx context.Context, postIDs []uint64) (map[uint64]model.Report, error) {
	out := make(map[uint64]model.Report, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var list []model.Report
	if err := r.DB.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("date_reported ASC, id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	for _, rep := range list {
		out[rep.PostID] = rep
	}
	return out, nil
}

func (r *ModerationRepository) Reports(ctx context.Context, postID uint64) ([]model.Report, error) {
	var list []model.Report
	err := r.DB.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("date_reported ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *ModerationRepository) Audit(ctx context.Context, postID uint64) ([]model.ModerationAudit, error) {
	var list []model.ModerationAudit
	err := r.DB.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&list).Error
	return list, err
}
