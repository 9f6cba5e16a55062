package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// TrendingEntry 榜单条目
type TrendingEntry struct {
	ID        string
	Score     float64
	UpdatedAt time.Time
}

// TrendingStore 两个独立的衰减分数榜（posts / users），redis ZSET 实现。
// 写入经事件外发盒异步落地，读侧可见性以 worker 轮询间隔为收敛上界。
type TrendingStore interface {
	// Bump 首次出现写入 boost 分，已存在追加 increment 分（单 key 原子）
	Bump(ctx context.Context, kind, entityID string) error
	Remove(ctx context.Context, kind, entityID string) error
	Score(ctx context.Context, kind, entityID string) (float64, bool, error)
	// Range 按分数倒序取 [offset, offset+limit)
	Range(ctx context.Context, kind string, offset, limit int) ([]TrendingEntry, error)
	Size(ctx context.Context, kind string) (int64, error)
}

type trendingStore struct {
	rdb       *redis.Client
	boost     float64
	increment float64
}

func NewTrendingStore(rdb *redis.Client, boost, increment float64) TrendingStore {
	return &trendingStore{rdb: rdb, boost: boost, increment: increment}
}

func zsetKey(kind string) string { return "trending:" + kind }
func atKey(kind string) string   { return "trending:" + kind + ":at" }

// bumpScript: 不存在则 ZADD boost，存在则 ZINCRBY increment，同时记录更新时间
var bumpScript = redis.NewScript(`
local cur = redis.call('ZSCORE', KEYS[1], ARGV[1])
if cur then
    redis.call('ZINCRBY', KEYS[1], ARGV[3], ARGV[1])
else
    redis.call('ZADD', KEYS[1], ARGV[2], ARGV[1])
end
redis.call('HSET', KEYS[2], ARGV[1], ARGV[4])
return 1
`)

func (s *trendingStore) Bump(ctx context.Context, kind, entityID string) error {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	return bumpScript.Run(ctx, s.rdb,
		[]string{zsetKey(kind), atKey(kind)},
		entityID, s.boost, s.increment, now,
	).Err()
}

func (s *trendingStore) Remove(ctx context.Context, kind, entityID string) error {
	pipe := s.rdb.TxPipeline()
	pipe.ZRem(ctx, zsetKey(kind), entityID)
	pipe.HDel(ctx, atKey(kind), entityID)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *trendingStore) Score(ctx context.Context, kind, entityID string) (float64, bool, error) {
	score, err := s.rdb.ZScore(ctx, zsetKey(kind), entityID).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return score, true, nil
}

func (s *trendingStore) Range(ctx context.Context, kind string, offset, limit int) ([]TrendingEntry, error) {
	zs, err := s.rdb.ZRevRangeWithScores(ctx, zsetKey(kind), int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(zs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(zs))
	for i, z := range zs {
		ids[i] = fmt.Sprint(z.Member)
	}
	ats, err := s.rdb.HMGet(ctx, atKey(kind), ids...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]TrendingEntry, len(zs))
	for i, z := range zs {
		e := TrendingEntry{ID: ids[i], Score: z.Score}
		if i < len(ats) && ats[i] != nil {
			if str, ok := ats[i].(string); ok {
				if unix, pErr := strconv.ParseInt(str, 10, 64); pErr == nil {
					e.UpdatedAt = time.Unix(unix, 0)
				}
			}
		}
		out[i] = e
	}
	return out, nil
}

func (s *trendingStore) Size(ctx context.Context, kind string) (int64, error) {
	return s.rdb.ZCard(ctx, zsetKey(kind)).Result()
}
