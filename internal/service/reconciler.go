package service

import (
	"context"
	"log"
	"time"

	"Lingo_Community/internal/repository/sqldb"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const reconcileLockName = "reconcile:member_count"

// MemberCountReconciler 社区成员数对账，正常情况下事务已保证一致，这里兜底
type MemberCountReconciler struct {
	repo      *sqldb.MemberCountReconcilerRepo
	batchSize int
	lock      Locker
	lockTTL   time.Duration
}

// NewMemberCountReconciler lock 为 nil 时不加分布式锁（单实例）
func NewMemberCountReconciler(db *gorm.DB, lock Locker) *MemberCountReconciler {
	return &MemberCountReconciler{
		repo:      &sqldb.MemberCountReconcilerRepo{DB: db},
		batchSize: 500,
		lock:      lock,
		lockTTL:   time.Minute,
	}
}

// ReconcileOnce 对账一次，返回修正的社区数
func (r *MemberCountReconciler) ReconcileOnce(ctx context.Context) int {
	if r.lock != nil {
		token := uuid.NewString()
		got, err := r.lock.Acquire(ctx, reconcileLockName, token, r.lockTTL)
		if err != nil || !got {
			return 0
		}
		defer func() {
			if err := r.lock.Release(ctx, reconcileLockName, token); err != nil {
				log.Printf("reconcile lock release err: %v", err)
			}
		}()
	}

	fixed := 0
	var lastID uint64
	for {
		list, next, err := r.repo.ReconcileList(ctx, r.batchSize, lastID)
		if err != nil {
			log.Printf("reconcile list err: %v", err)
			return fixed
		}
		if len(list) == 0 {
			break
		}
		for _, c := range list {
			// 先查 community_members 的真实值，再和 communities 表比对
			real, err := r.repo.RealMembers(ctx, c.ID)
			if err != nil {
				continue
			}
			if real == c.MemberCount {
				continue
			}
			ok, err := r.repo.FixMemberCount(ctx, c.ID, c.MemberCount, real)
			if err != nil {
				log.Printf("reconcile fix community=%d err: %v", c.ID, err)
				continue
			}
			if ok {
				log.Printf("reconcile community=%d member_count %d -> %d", c.ID, c.MemberCount, real)
				fixed++
			}
		}
		lastID = next
	}
	return fixed
}
