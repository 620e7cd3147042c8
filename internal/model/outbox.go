package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	OutboxPending = 0
	OutboxSent    = 1
	OutboxFailed  = 2
)

// EventOutbox 领域事件表，与业务写入同一事务
type EventOutbox struct {
	ID          uint64         `gorm:"primaryKey"`
	EventID     string         `gorm:"size:36;not null;uniqueIndex"`
	EventType   string         `gorm:"size:64;not null"`
	AggregateID uint64         `gorm:"not null"`
	Payload     datatypes.JSON `gorm:"not null"`
	Status      int8           `gorm:"not null;default:0;index"`
	Retry       int            `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (EventOutbox) TableName() string { return "event_outbox" }
