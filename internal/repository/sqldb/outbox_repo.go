package sqldb

import (
	"context"
	"encoding/json"
	"time"

	"Lingo_Community/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EventCommunityCreated = "community.created"
	EventJoinRequested    = "community.join_requested"
	EventMemberApproved   = "community.member_approved"
	EventMemberRejected   = "community.member_rejected"
	EventMemberKicked     = "community.member_kicked"
	EventMemberLeft       = "community.member_left"
	EventPostReported     = "post.reported"
	EventPostModerated    = "post.moderated"
	EventProgressReviewed = "progress.reviewed"
	MaxOutboxRetry        = 5
)

type OutboxRepository struct {
	DB *gorm.DB
}

// insertOutbox 必须传入业务事务 tx，保证事件和业务数据一起提交；at 取调用方的时钟
func insertOutbox(tx *gorm.DB, event string, aggregateID uint64, at time.Time, fields map[string]any) error {
	body := map[string]any{
		"event_time": at.UTC().Format(time.RFC3339Nano),
	}
	for k, v := range fields {
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return tx.Create(&model.EventOutbox{
		EventID:     uuid.NewString(),
		EventType:   event,
		AggregateID: aggregateID,
		Payload:     datatypes.JSON(payload),
		Status:      model.OutboxPending,
	}).Error
}

// List 待投递事件：未发送的，以及失败但还能重试的
func (r *OutboxRepository) List(ctx context.Context, batchSize int) ([]model.EventOutbox, error) {
	var list []model.EventOutbox
	if err := r.DB.WithContext(ctx).
		Where("status = ? OR (status = ? AND retry < ?)", model.OutboxPending, model.OutboxFailed, MaxOutboxRetry).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// RetryUpdate outbox记录消息失败重试
func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.EventOutbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
}

// SuccessUpdate outbox成功记录消息更新
func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.EventOutbox{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}
