package sqldb

import (
	"context"

	"Lingo_Community/internal/model"

	"gorm.io/gorm"
)

type MemberCountReconcilerRepo struct {
	DB *gorm.DB
}

// CountPair 对账批次里的一行
type CountPair struct {
	ID          uint64
	MemberCount int64
}

// ReconcileList 按 id 游标分批取社区
func (r *MemberCountReconcilerRepo) ReconcileList(ctx context.Context, batchSize int, lastID uint64) ([]CountPair, uint64, error) {
	var list []CountPair
	if err := r.DB.WithContext(ctx).Model(&model.Community{}).
		Select("id", "member_count").
		Where("id > ?", lastID).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, lastID, err
	}
	if len(list) == 0 {
		return nil, lastID, nil
	}
	return list, list[len(list)-1].ID, nil
}

// RealMembers accepted 成员的真实数量
func (r *MemberCountReconcilerRepo) RealMembers(ctx context.Context, communityID uint64) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&model.CommunityMember{}).
		Where("community_id = ? AND status = ?", communityID, model.MemberAccepted).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// FixMemberCount 只在值仍等于读到的旧值时覆盖，避免覆盖并发的 approve/kick
func (r *MemberCountReconcilerRepo) FixMemberCount(ctx context.Context, communityID uint64, old, real int64) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.Community{}).
		Where("id = ? AND member_count = ?", communityID, old).
		UpdateColumn("member_count", real)
	return res.RowsAffected > 0, res.Error
}
