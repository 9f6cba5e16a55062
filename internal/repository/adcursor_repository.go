package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// AdCursorRepository 记录 viewer 对每条广告帖的最近浏览时间，
// 仅用于 LRU 选择；从未浏览过的广告排在任何已浏览广告之前。
type AdCursorRepository interface {
	// Touch 覆盖写入本次浏览时间
	Touch(ctx context.Context, viewerID, adPostID string, at time.Time) error
	// LastViewed 返回 viewer 的广告浏览时间表（adPostID -> 时间）
	LastViewed(ctx context.Context, viewerID string) (map[string]time.Time, error)
	DeleteViewer(ctx context.Context, viewerID string) error
}

type adCursorRepository struct {
	rdb *redis.Client
}

func NewAdCursorRepository(rdb *redis.Client) AdCursorRepository {
	return &adCursorRepository{rdb: rdb}
}

func cursorKey(viewerID string) string { return fmt.Sprintf("adviews:%s", viewerID) }

func (r *adCursorRepository) Touch(ctx context.Context, viewerID, adPostID string, at time.Time) error {
	return r.rdb.HSet(ctx, cursorKey(viewerID), adPostID, at.UnixNano()).Err()
}

func (r *adCursorRepository) LastViewed(ctx context.Context, viewerID string) (map[string]time.Time, error) {
	raw, err := r.rdb.HGetAll(ctx, cursorKey(viewerID)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(raw))
	for id, v := range raw {
		ns, pErr := strconv.ParseInt(v, 10, 64)
		if pErr != nil {
			continue
		}
		out[id] = time.Unix(0, ns)
	}
	return out, nil
}

func (r *adCursorRepository) DeleteViewer(ctx context.Context, viewerID string) error {
	return r.rdb.Del(ctx, cursorKey(viewerID)).Err()
}
