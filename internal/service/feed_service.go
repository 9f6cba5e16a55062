package service

import (
	"context"
	"time"

	"github.com/d60-Lab/feed-engine/internal/model"
	"github.com/d60-Lab/feed-engine/internal/repository"
)

// FeedService 按阅读时组装 feed：不做任何落库快照，
// 取关 / 拒绝 / 拉黑 / 隐私变更在下一次读取即生效。
type FeedService interface {
	BuildFeed(ctx context.Context, viewerID string, limit int) ([]*model.Post, error)
}

type feedService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	blockRepo  repository.BlockRepository
	postRepo   repository.PostRepository
	injector   *AdInjector
	defaultLim int
}

func NewFeedService(userRepo repository.UserRepository, followRepo repository.FollowRepository, blockRepo repository.BlockRepository, postRepo repository.PostRepository, injector *AdInjector, defaultLimit int) FeedService {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return &feedService{
		userRepo:   userRepo,
		followRepo: followRepo,
		blockRepo:  blockRepo,
		postRepo:   postRepo,
		injector:   injector,
		defaultLim: defaultLimit,
	}
}

// BuildFeed 源集合 = 自己的 COMPLETED 帖 ∪ FOLLOWING 对象的 COMPLETED 帖，
// 排除过期 story 与任一方向拉黑的作者，按发布时间倒序。
func (s *feedService) BuildFeed(ctx context.Context, viewerID string, limit int) ([]*model.Post, error) {
	if limit == 0 {
		limit = s.defaultLim
	}
	if limit < 1 || limit > 100 {
		return nil, ErrBadLimit
	}

	followees, err := s.followRepo.ListFolloweeIDs(ctx, viewerID, model.FollowFollowing)
	if err != nil {
		return nil, err
	}
	blockedIDs, err := s.blockRepo.ListBlockedEitherIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	blocked := make(map[string]bool, len(blockedIDs))
	for _, id := range blockedIDs {
		blocked[id] = true
	}

	owners := make([]string, 0, len(followees)+1)
	owners = append(owners, viewerID)
	for _, id := range followees {
		if !blocked[id] {
			owners = append(owners, id)
		}
	}

	items, err := s.postRepo.ListFeed(ctx, owners, time.Now(), limit)
	if err != nil {
		return nil, err
	}

	viewer, err := s.userRepo.Get(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		return items, nil
	}
	return s.injector.InjectAd(ctx, viewer, items)
}
