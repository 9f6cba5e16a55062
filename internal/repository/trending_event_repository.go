package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/feed-engine/internal/model"
)

type TrendingEventRepository interface {
	// EnqueueTx 在调用方事务内写入事件
	EnqueueTx(tx *gorm.DB, kind, entityID, op string) error
	Enqueue(ctx context.Context, kind, entityID, op string) error
	// Claim 认领一批 pending 事件并置为 processing
	Claim(ctx context.Context, limit int) ([]*model.TrendingEvent, error)
	MarkDone(ctx context.Context, ids []string) error
	PendingCount(ctx context.Context) (int64, error)
}

type trendingEventRepository struct {
	db *gorm.DB
}

func NewTrendingEventRepository(db *gorm.DB) TrendingEventRepository {
	return &trendingEventRepository{db: db}
}

func (r *trendingEventRepository) EnqueueTx(tx *gorm.DB, kind, entityID, op string) error {
	ev := &model.TrendingEvent{
		ID:         uuid.New().String(),
		EntityKind: kind,
		EntityID:   entityID,
		Op:         op,
		Status:     model.TrendingEventPending,
	}
	return tx.Create(ev).Error
}

func (r *trendingEventRepository) Enqueue(ctx context.Context, kind, entityID, op string) error {
	return r.EnqueueTx(r.db.WithContext(ctx), kind, entityID, op)
}

func (r *trendingEventRepository) Claim(ctx context.Context, limit int) ([]*model.TrendingEvent, error) {
	var batch []*model.TrendingEvent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := `
            SELECT * FROM trending_events
            WHERE status = 'pending'
            ORDER BY created_at
            LIMIT ?`
		// postgres 下用 SKIP LOCKED 避免 worker 互相争抢
		if tx.Dialector.Name() == "postgres" {
			q += " FOR UPDATE SKIP LOCKED"
		}
		if err := tx.Raw(q, limit).Scan(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		ids := make([]string, len(batch))
		for i, ev := range batch {
			ids[i] = ev.ID
		}
		return tx.Model(&model.TrendingEvent{}).
			Where("id IN ?", ids).
			Update("status", model.TrendingEventProcessing).Error
	})
	return batch, err
}

func (r *trendingEventRepository) MarkDone(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.TrendingEvent{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"status": model.TrendingEventDone, "processed_at": now}).Error
}

func (r *trendingEventRepository) PendingCount(ctx context.Context) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.TrendingEvent{}).
		Where("status = ?", model.TrendingEventPending).
		Count(&cnt).Error
	return cnt, err
}
