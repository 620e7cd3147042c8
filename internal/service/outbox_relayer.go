package service

import (
	"context"
	"log"
	"time"

	"Lingo_Community/internal/model"
	"Lingo_Community/internal/pkg"
	"Lingo_Community/internal/repository/sqldb"

	"gorm.io/gorm"
)

type Sender func(ctx context.Context, ob *model.EventOutbox) error

// OutboxRelayer 从 event_outbox 读未投递事件，交给 sender
type OutboxRelayer struct {
	repo      *sqldb.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
}

func NewOutboxRelayer(db *gorm.DB, sender Sender) *OutboxRelayer {
	if sender == nil {
		sender = LogSender
	}
	return &OutboxRelayer{
		repo:      &sqldb.OutboxRepository{DB: db},
		batchSize: 200,
		interval:  time.Second,
		sender:    sender,
	}
}

// Run outbox启动器
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

// DrainOnce 按 id 顺序投递一批，返回成功条数
func (r *OutboxRelayer) DrainOnce(ctx context.Context) int {
	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		log.Printf("outbox query err: %v", err)
		return 0
	}
	sent := 0
	for i := range rows {
		ob := rows[i]
		if err = r.sender(ctx, &ob); err != nil {
			log.Printf("outbox send id=%d type=%s retry=%d err: %v", ob.ID, ob.EventType, ob.Retry, err)
			if err = r.repo.RetryUpdate(ctx, ob.ID); err != nil {
				log.Printf("outbox retry update id=%d err: %v", ob.ID, err)
			}
			continue
		}
		if err = r.repo.SuccessUpdate(ctx, ob.ID); err != nil {
			log.Printf("outbox success update id=%d err: %v", ob.ID, err)
			continue
		}
		sent++
	}
	return sent
}

// LogSender 没配 kafka 时只打日志
func LogSender(_ context.Context, ob *model.EventOutbox) error {
	log.Printf("OUTBOX SEND id=%s type=%s aggregate=%d payload=%s", ob.EventID, ob.EventType, ob.AggregateID, ob.Payload)
	return nil
}

// KafkaSender 以聚合 id 作为 key，同一社区/帖子的事件落在同一分区
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.EventOutbox) error {
		return p.Send(ctx, pkg.MakeKeyFromID(ob.AggregateID), ob.Payload, map[string]string{
			"event_id":   ob.EventID,
			"event_type": ob.EventType,
		})
	}
}
