package service

import (
	"context"
	"time"

	"github.com/d60-Lab/feed-engine/internal/model"
	"github.com/d60-Lab/feed-engine/internal/repository"
)

// AdInjector 向 feed 注入至多一条广告帖，LRU 选择：
// 从未浏览过的广告优先（按发布时间、ID 稳定排序），
// 其次取游标时间最旧的一条（时间相同按 ID）。
type AdInjector struct {
	postRepo  repository.PostRepository
	adCursors repository.AdCursorRepository
	minItems  int
	slot      int
}

func NewAdInjector(postRepo repository.PostRepository, adCursors repository.AdCursorRepository, minItems, slot int) *AdInjector {
	if minItems <= 0 {
		minItems = 3
	}
	if slot <= 0 {
		slot = 1
	}
	return &AdInjector{postRepo: postRepo, adCursors: adCursors, minItems: minItems, slot: slot}
}

// InjectAd feed 过短、viewer 关闭广告、或 feed 已含广告时原样返回
func (a *AdInjector) InjectAd(ctx context.Context, viewer *model.User, items []*model.Post) ([]*model.Post, error) {
	if viewer.AdsDisabled || len(items) < a.minItems {
		return items, nil
	}
	for _, p := range items {
		if p.IsAd {
			return items, nil
		}
	}

	now := time.Now()
	candidates, err := a.postRepo.ListActiveAds(ctx, viewer.ID, now)
	if err != nil {
		return nil, err
	}
	eligible := candidates[:0]
	for _, ad := range candidates {
		if ad.TrendingEligible(now) {
			eligible = append(eligible, ad)
		}
	}
	if len(eligible) == 0 {
		return items, nil
	}

	cursors, err := a.adCursors.LastViewed(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}

	chosen := pickAd(eligible, cursors)
	if chosen == nil {
		return items, nil
	}

	out := make([]*model.Post, 0, len(items)+1)
	out = append(out, items[:a.slot]...)
	out = append(out, chosen)
	out = append(out, items[a.slot:]...)
	return out, nil
}

// pickAd 候选已按 posted_at, id 稳定排序；未浏览过的第一条即为选中项
func pickAd(candidates []*model.Post, cursors map[string]time.Time) *model.Post {
	var oldest *model.Post
	var oldestAt time.Time
	for _, ad := range candidates {
		at, seen := cursors[ad.ID]
		if !seen {
			return ad
		}
		if oldest == nil || at.Before(oldestAt) || (at.Equal(oldestAt) && ad.ID < oldest.ID) {
			oldest = ad
			oldestAt = at
		}
	}
	return oldest
}
