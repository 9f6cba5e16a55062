package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/d60-Lab/feed-engine/internal/model"
)

// PostSnapshot contains the minimal post fields required by trending pages.
type PostSnapshot struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	PostType      string    `json:"post_type"`
	PostedAt      time.Time `json:"posted_at"`
	IsVerified    bool      `json:"is_verified"`
	ViewedByCount int64     `json:"viewed_by_count"`
}

// PostSnapshotCache serves trending hydration reads through redis with a DB
// fallback. Trending reads tolerate slightly stale snapshots; feed reads go to
// the DB directly and never through this cache.
type PostSnapshotCache struct {
	db    *gorm.DB
	cache *redis.Client
	ttl   time.Duration

	cacheHits    atomic.Int64
	dbBulkLoads  atomic.Int64
}

func NewPostSnapshotCache(db *gorm.DB, cache *redis.Client, ttl time.Duration) *PostSnapshotCache {
	return &PostSnapshotCache{db: db, cache: cache, ttl: ttl}
}

func snapKey(id string) string { return fmt.Sprintf("post:snap:%s", id) }

// Load returns snapshots for ids, preserving input order; ids that resolve to
// no post are skipped.
func (s *PostSnapshotCache) Load(ctx context.Context, ids []string) ([]PostSnapshot, error) {
	if len(ids) == 0 {
		return []PostSnapshot{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = snapKey(id)
	}

	found := make(map[string]PostSnapshot, len(ids))
	if vals, err := s.cache.MGet(ctx, keys...).Result(); err == nil {
		for i, v := range vals {
			if v == nil {
				continue
			}
			if str, ok := v.(string); ok {
				var snap PostSnapshot
				if uErr := json.Unmarshal([]byte(str), &snap); uErr == nil {
					found[ids[i]] = snap
					s.cacheHits.Add(1)
				}
			}
		}
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		s.dbBulkLoads.Add(1)

		var posts []model.Post
		if err := s.db.WithContext(ctx).Where("id IN ?", missing).Find(&posts).Error; err != nil {
			return nil, err
		}
		for _, p := range posts {
			snap := PostSnapshot{
				ID:            p.ID,
				OwnerID:       p.OwnerID,
				PostType:      p.PostType,
				PostedAt:      p.PostedAt,
				IsVerified:    p.IsVerified,
				ViewedByCount: p.ViewedByCount,
			}
			found[p.ID] = snap
			if payload, err := json.Marshal(snap); err == nil {
				_ = s.cache.Set(ctx, snapKey(p.ID), payload, s.ttl).Err()
			}
		}
	}

	result := make([]PostSnapshot, 0, len(ids))
	for _, id := range ids {
		if snap, ok := found[id]; ok {
			result = append(result, snap)
		}
	}
	return result, nil
}

// Invalidate drops cached snapshots, called on archive/delete/restore.
func (s *PostSnapshotCache) Invalidate(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = snapKey(id)
	}
	return s.cache.Del(ctx, keys...).Err()
}

// Counters reports how many loads were served from cache vs the DB.
func (s *PostSnapshotCache) Counters() (cacheHits, dbBulkLoads int64) {
	return s.cacheHits.Load(), s.dbBulkLoads.Load()
}
