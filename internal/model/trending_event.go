package model

import "time"

// TrendingEvent 榜单事件外发盒；与业务写入同事务落库，由 worker 异步消费。
// worker 的轮询间隔即写后可见的收敛上界。
type TrendingEvent struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	EntityKind string `gorm:"type:varchar(8);not null"`  // post, user
	EntityID   string `gorm:"type:varchar(36);not null;index:idx_tevent_entity"`
	Op         string `gorm:"type:varchar(8);not null"`  // bump, remove
	Status     string `gorm:"type:varchar(16);index;not null"` // pending, processing, done
	CreatedAt  time.Time `gorm:"index"`
	ProcessedAt *time.Time
}

func (TrendingEvent) TableName() string { return "trending_events" }

const (
	TrendingKindPost = "post"
	TrendingKindUser = "user"

	TrendingOpBump   = "bump"
	TrendingOpRemove = "remove"

	TrendingEventPending    = "pending"
	TrendingEventProcessing = "processing"
	TrendingEventDone       = "done"
)
