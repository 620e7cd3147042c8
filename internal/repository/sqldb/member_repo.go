package sqldb

import (
	"context"
	"errors"
	"time"

	"Lingo_Community/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAlreadyMember = errors.New("membership already exists")
	ErrNotPending    = errors.New("membership is not pending")
	ErrNotAccepted   = errors.New("membership is not accepted")
	ErrFounder       = errors.New("founder membership cannot be removed")
)

type CommunityMemberRepository struct {
	DB *gorm.DB
}

// RequestJoin 插入 pending 行，不动 member_count；(community_id, user_id) 唯一索引兜底并发
func (r *CommunityMemberRepository) RequestJoin(ctx context.Context, communityID, userID uint64, at time.Time) (*model.CommunityMember, error) {
	m := &model.CommunityMember{
		CommunityID: communityID,
		UserID:      userID,
		Status:      model.MemberPending,
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.CommunityMember{}).
			Where("community_id = ? AND user_id = ?", communityID, userID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadyMember
		}
		if err := tx.Create(m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyMember
			}
			return err
		}
		return insertOutbox(tx, EventJoinRequested, communityID, at, map[string]any{
			"community_id": communityID,
			"user_id":      userID,
		})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Approve pending -> accepted，member_count + 1，同一事务
func (r *CommunityMemberRepository) Approve(ctx context.Context, communityID, userID uint64, at time.Time) (*model.CommunityMember, error) {
	var m model.CommunityMember
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lockCommunity(tx, communityID); err != nil {
			return err
		}
		if err := r.lockMember(tx, communityID, userID, &m); err != nil {
			return err
		}
		if m.Status != model.MemberPending {
			return ErrNotPending
		}
		if err := tx.Model(&m).Update("status", model.MemberAccepted).Error; err != nil {
			return err
		}
		m.Status = model.MemberAccepted
		if err := r.adjustCount(tx, communityID, +1); err != nil {
			return err
		}
		return insertOutbox(tx, EventMemberApproved, communityID, at, map[string]any{
			"community_id": communityID,
			"user_id":      userID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Reject 删除 pending 行，计数不变
func (r *CommunityMemberRepository) Reject(ctx context.Context, communityID, userID uint64, at time.Time) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.CommunityMember
		if err := r.lockMember(tx, communityID, userID, &m); err != nil {
			return err
		}
		if m.Status != model.MemberPending {
			return ErrNotPending
		}
		if err := tx.Delete(&m).Error; err != nil {
			return err
		}
		return insertOutbox(tx, EventMemberRejected, communityID, at, map[string]any{
			"community_id": communityID,
			"user_id":      userID,
		})
	})
}

// Kick 删除 accepted 行，member_count - 1，同一事务
func (r *CommunityMemberRepository) Kick(ctx context.Context, communityID, userID uint64, at time.Time) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Community
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, communityID).Error; err != nil {
			return err
		}
		if c.EstablishedBy == userID {
			return ErrFounder
		}
		var m model.CommunityMember
		if err := r.lockMember(tx, communityID, userID, &m); err != nil {
			return err
		}
		if m.Status != model.MemberAccepted {
			return ErrNotAccepted
		}
		if err := tx.Delete(&m).Error; err != nil {
			return err
		}
		if err := r.adjustCount(tx, communityID, -1); err != nil {
			return err
		}
		return insertOutbox(tx, EventMemberKicked, communityID, at, map[string]any{
			"community_id": communityID,
			"user_id":      userID,
		})
	})
}

// Leave 用户主动退出：accepted 行同 kick，pending 行直接撤回不动计数
func (r *CommunityMemberRepository) Leave(ctx context.Context, communityID, userID uint64, at time.Time) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Community
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, communityID).Error; err != nil {
			return err
		}
		if c.EstablishedBy == userID {
			return ErrFounder
		}
		var m model.CommunityMember
		if err := r.lockMember(tx, communityID, userID, &m); err != nil {
			return err
		}
		if err := tx.Delete(&m).Error; err != nil {
			return err
		}
		if m.Status == model.MemberAccepted {
			if err := r.adjustCount(tx, communityID, -1); err != nil {
				return err
			}
		}
		return insertOutbox(tx, EventMemberLeft, communityID, at, map[string]any{
			"community_id": communityID,
			"user_id":      userID,
			"status":       m.Status,
		})
	})
}

func (r *CommunityMemberRepository) Find(ctx context.Context, communityID, userID uint64) (*model.CommunityMember, error) {
	var m model.CommunityMember
	err := r.DB.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&m).Error
	return &m, err
}

func (r *CommunityMemberRepository) ListByStatus(ctx context.Context, communityID uint64, status string) ([]model.CommunityMember, error) {
	var list []model.CommunityMember
	err := r.DB.WithContext(ctx).
		Where("community_id = ? AND status = ?", communityID, status).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *CommunityMemberRepository) IsMember(ctx context.Context, communityID, userID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_id = ? AND status = ?", communityID, userID, model.MemberAccepted).
		Count(&count).Error
	return count > 0, err
}

// lockCommunity 先锁社区行，approve/kick 对同一社区串行
func (r *CommunityMemberRepository) lockCommunity(tx *gorm.DB, communityID uint64) error {
	var c model.Community
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&c, communityID).Error
}

func (r *CommunityMemberRepository) lockMember(tx *gorm.DB, communityID, userID uint64, m *model.CommunityMember) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(m).Error
}

func (r *CommunityMemberRepository) adjustCount(tx *gorm.DB, communityID uint64, delta int64) error {
	// 防负数，漂移交给对账任务
	return tx.Model(&model.Community{}).
		Where("id = ?", communityID).
		UpdateColumn("member_count", gorm.Expr("CASE WHEN member_count + ? < 0 THEN 0 ELSE member_count + ? END", delta, delta)).Error
}
