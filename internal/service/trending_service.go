package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/d60-Lab/feed-engine/internal/cache"
	"github.com/d60-Lab/feed-engine/internal/model"
	"github.com/d60-Lab/feed-engine/internal/repository"
)

// ViewedStatus 过滤取值
const (
	ViewedStatusViewed    = "VIEWED"
	ViewedStatusNotViewed = "NOT_VIEWED"
)

// TrendingPostItem 热帖条目
type TrendingPostItem struct {
	PostID        string    `json:"post_id"`
	OwnerID       string    `json:"owner_id"`
	PostType      string    `json:"post_type"`
	Score         float64   `json:"score"`
	PostedAt      time.Time `json:"posted_at"`
	IsVerified    bool      `json:"is_verified"`
	ViewedByCount int64     `json:"viewed_by_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TrendingUserItem 热用户条目；只暴露 id、分数与调用方自身的关系字段，
// 因此被索引用户是否私密不影响可见性
type TrendingUserItem struct {
	UserID       string    `json:"user_id"`
	Score        float64   `json:"score"`
	FollowStatus string    `json:"follow_status"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TrendingPostsQuery trendingPosts 查询参数
type TrendingPostsQuery struct {
	Limit        int
	NextToken    string
	ViewedStatus string // VIEWED / NOT_VIEWED / 空
	IsVerified   *bool
}

type TrendingPostsPage struct {
	Items     []TrendingPostItem `json:"items"`
	NextToken string             `json:"next_token,omitempty"`
}

// TrendingService 榜单读路径：分数倒序 + 隐私 / 拉黑过滤 + 续页
type TrendingService interface {
	TrendingPosts(ctx context.Context, viewerID string, q TrendingPostsQuery) (*TrendingPostsPage, error)
	TrendingUsers(ctx context.Context, viewerID string, limit int) ([]TrendingUserItem, error)
}

type trendingService struct {
	store      repository.TrendingStore
	snapshots  *cache.PostSnapshotCache
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	blockRepo  repository.BlockRepository
	viewRepo   repository.ViewRepository
}

func NewTrendingService(store repository.TrendingStore, snapshots *cache.PostSnapshotCache, userRepo repository.UserRepository, followRepo repository.FollowRepository, blockRepo repository.BlockRepository, viewRepo repository.ViewRepository) TrendingService {
	return &trendingService{store: store, snapshots: snapshots, userRepo: userRepo, followRepo: followRepo, blockRepo: blockRepo, viewRepo: viewRepo}
}

func (s *trendingService) TrendingPosts(ctx context.Context, viewerID string, q TrendingPostsQuery) (*TrendingPostsPage, error) {
	limit, err := normalizeLimit(q.Limit)
	if err != nil {
		return nil, err
	}
	offset, err := decodeToken(q.NextToken)
	if err != nil {
		return nil, err
	}

	blocked, err := s.blockedSet(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	following, err := s.followingSet(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	total, err := s.store.Size(ctx, model.TrendingKindPost)
	if err != nil {
		return nil, err
	}

	page := &TrendingPostsPage{Items: []TrendingPostItem{}}
	for offset < int(total) && len(page.Items) < limit {
		entries, err := s.store.Range(ctx, model.TrendingKindPost, offset, limit)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			break
		}

		ids := make([]string, len(entries))
		for i, e := range entries {
			ids[i] = e.ID
		}
		snaps, err := s.snapshots.Load(ctx, ids)
		if err != nil {
			return nil, err
		}
		snapByID := make(map[string]cache.PostSnapshot, len(snaps))
		for _, snap := range snaps {
			snapByID[snap.ID] = snap
		}

		var viewed map[string]bool
		if q.ViewedStatus != "" {
			if viewed, err = s.viewRepo.FilterViewed(ctx, viewerID, ids); err != nil {
				return nil, err
			}
		}
		owners, err := s.ownerPrivacy(ctx, snaps)
		if err != nil {
			return nil, err
		}

		// offset 只前进到已检视的条目，过滤掉的不丢页
		examined := 0
		for _, e := range entries {
			if len(page.Items) >= limit {
				break
			}
			examined++
			snap, ok := snapByID[e.ID]
			if !ok {
				continue
			}
			if !s.postVisible(viewerID, snap, owners, blocked, following) {
				continue
			}
			if q.IsVerified != nil && snap.IsVerified != *q.IsVerified {
				continue
			}
			if q.ViewedStatus == ViewedStatusViewed && !viewed[snap.ID] {
				continue
			}
			if q.ViewedStatus == ViewedStatusNotViewed && viewed[snap.ID] {
				continue
			}
			page.Items = append(page.Items, TrendingPostItem{
				PostID:        snap.ID,
				OwnerID:       snap.OwnerID,
				PostType:      snap.PostType,
				Score:         e.Score,
				PostedAt:      snap.PostedAt,
				IsVerified:    snap.IsVerified,
				ViewedByCount: snap.ViewedByCount,
				UpdatedAt:     e.UpdatedAt,
			})
		}
		offset += examined
		if examined < len(entries) {
			break
		}
	}

	if offset < int(total) {
		page.NextToken = encodeToken(offset)
	}
	return page, nil
}

func (s *trendingService) TrendingUsers(ctx context.Context, viewerID string, limit int) ([]TrendingUserItem, error) {
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}
	blocked, err := s.blockedSet(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	total, err := s.store.Size(ctx, model.TrendingKindUser)
	if err != nil {
		return nil, err
	}

	items := []TrendingUserItem{}
	offset := 0
	for offset < int(total) && len(items) < limit {
		entries, err := s.store.Range(ctx, model.TrendingKindUser, offset, limit)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			break
		}
		examined := 0
		for _, e := range entries {
			if len(items) >= limit {
				break
			}
			examined++
			if blocked[e.ID] {
				continue
			}
			edge, err := s.followRepo.Get(ctx, viewerID, e.ID)
			if err != nil {
				return nil, err
			}
			status := model.FollowNotFollowing
			if edge != nil {
				status = edge.Status
			}
			items = append(items, TrendingUserItem{
				UserID:       e.ID,
				Score:        e.Score,
				FollowStatus: status,
				UpdatedAt:    e.UpdatedAt,
			})
		}
		offset += examined
		if examined < len(entries) {
			break
		}
	}
	return items, nil
}

// postVisible 拉黑任一方向不可见；私密作者仅对关注者与本人可见
func (s *trendingService) postVisible(viewerID string, snap cache.PostSnapshot, owners map[string]string, blocked, following map[string]bool) bool {
	if snap.OwnerID == viewerID {
		return true
	}
	if blocked[snap.OwnerID] {
		return false
	}
	if owners[snap.OwnerID] == model.PrivacyPrivate && !following[snap.OwnerID] {
		return false
	}
	return true
}

func (s *trendingService) ownerPrivacy(ctx context.Context, snaps []cache.PostSnapshot) (map[string]string, error) {
	ids := make([]string, 0, len(snaps))
	seen := make(map[string]bool, len(snaps))
	for _, snap := range snaps {
		if !seen[snap.OwnerID] {
			seen[snap.OwnerID] = true
			ids = append(ids, snap.OwnerID)
		}
	}
	users, err := s.userRepo.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(users))
	for _, u := range users {
		out[u.ID] = u.PrivacyStatus
	}
	return out, nil
}

func (s *trendingService) blockedSet(ctx context.Context, viewerID string) (map[string]bool, error) {
	ids, err := s.blockRepo.ListBlockedEitherIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (s *trendingService) followingSet(ctx context.Context, viewerID string) (map[string]bool, error) {
	ids, err := s.followRepo.ListFolloweeIDs(ctx, viewerID, model.FollowFollowing)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func normalizeLimit(limit int) (int, error) {
	if limit == 0 {
		return 20, nil
	}
	if limit < 1 || limit > 100 {
		return 0, ErrBadLimit
	}
	return limit, nil
}

func encodeToken(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("o:%d", offset)))
}

func decodeToken(token string) (int, error) {
	if token == "" {
		return 0, nil
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return 0, ErrBadNextToken
	}
	var offset int
	s := string(raw)
	if len(s) < 3 || s[:2] != "o:" {
		return 0, ErrBadNextToken
	}
	offset, err = strconv.Atoi(s[2:])
	if err != nil || offset < 0 {
		return 0, ErrBadNextToken
	}
	return offset, nil
}
