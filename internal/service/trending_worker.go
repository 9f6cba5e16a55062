package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/feed-engine/internal/model"
	"github.com/d60-Lab/feed-engine/internal/repository"
	"github.com/d60-Lab/feed-engine/pkg/logger"
)

// TrendingWorker 消费事件外发盒并落地到榜单存储。
// 写后可见的收敛上界 = 轮询间隔 + 单批处理耗时；测试可直接调 ProcessOnce。
type TrendingWorker struct {
	eventRepo    repository.TrendingEventRepository
	store        repository.TrendingStore
	workers      int
	claimLimit   int
	pollInterval time.Duration
	metricsCh    chan time.Duration // 事件落库到落地的延迟
}

func NewTrendingWorker(eventRepo repository.TrendingEventRepository, store repository.TrendingStore, workers, claimLimit int, pollInterval time.Duration) *TrendingWorker {
	if workers <= 0 {
		workers = 4
	}
	if claimLimit <= 0 {
		claimLimit = 128
	}
	if pollInterval <= 0 {
		pollInterval = 50 * time.Millisecond
	}
	return &TrendingWorker{
		eventRepo:    eventRepo,
		store:        store,
		workers:      workers,
		claimLimit:   claimLimit,
		pollInterval: pollInterval,
		metricsCh:    make(chan time.Duration, 65536),
	}
}

func (w *TrendingWorker) Metrics() <-chan time.Duration { return w.metricsCh }

// Start 启动若干 worker 轮询消费；返回停止函数。
func (w *TrendingWorker) Start() func(context.Context) error {
	stop := make(chan struct{})
	for i := 0; i < w.workers; i++ {
		go w.loop(stop)
	}
	return func(ctx context.Context) error { close(stop); return nil }
}

func (w *TrendingWorker) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := w.ProcessOnce(context.Background()); err != nil {
				logger.Warn("trending worker pass failed", zap.Error(err))
			}
		}
	}
}

// ProcessOnce 认领一批 pending 事件并逐条落地
func (w *TrendingWorker) ProcessOnce(ctx context.Context) error {
	batch, err := w.eventRepo.Claim(ctx, w.claimLimit)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	done := make([]string, 0, len(batch))
	for _, ev := range batch {
		var aErr error
		switch ev.Op {
		case model.TrendingOpBump:
			aErr = w.store.Bump(ctx, ev.EntityKind, ev.EntityID)
		case model.TrendingOpRemove:
			aErr = w.store.Remove(ctx, ev.EntityKind, ev.EntityID)
		}
		if aErr != nil {
			logger.Warn("trending apply failed",
				zap.String("kind", ev.EntityKind), zap.String("entity", ev.EntityID),
				zap.String("op", ev.Op), zap.Error(aErr))
			continue
		}
		done = append(done, ev.ID)
		if !ev.CreatedAt.IsZero() {
			select {
			case w.metricsCh <- time.Since(ev.CreatedAt):
			default:
			}
		}
	}
	return w.eventRepo.MarkDone(ctx, done)
}

// Drain 反复处理直至没有 pending 事件，测试用零收敛窗口
func (w *TrendingWorker) Drain(ctx context.Context) error {
	for {
		cnt, err := w.eventRepo.PendingCount(ctx)
		if err != nil {
			return err
		}
		if cnt == 0 {
			return nil
		}
		if err := w.ProcessOnce(ctx); err != nil {
			return err
		}
	}
}
