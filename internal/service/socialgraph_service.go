package service

import (
	"context"

	"github.com/d60-Lab/feed-engine/internal/model"
	"github.com/d60-Lab/feed-engine/internal/repository"
)

// SocialGraphService 关注 / 拉黑状态机
type SocialGraphService interface {
	Follow(ctx context.Context, followerID, followeeID string) (string, error)
	Unfollow(ctx context.Context, followerID, followeeID string) error
	AcceptFollower(ctx context.Context, followeeID, followerID string) error
	DenyFollower(ctx context.Context, followeeID, followerID string) error
	Block(ctx context.Context, blockerID, blockedID string) error
	Unblock(ctx context.Context, blockerID, blockedID string) error
	// SetPrivacy PRIVATE→PUBLIC 时自动放行所有 REQUESTED/DENIED 入边
	SetPrivacy(ctx context.Context, userID, privacy string) error
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	IsBlockedEither(ctx context.Context, a, b string) (bool, error)
	ListRequests(ctx context.Context, followeeID string) ([]*model.Follow, error)
}

type socialGraphService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	blockRepo  repository.BlockRepository
}

func NewSocialGraphService(userRepo repository.UserRepository, followRepo repository.FollowRepository, blockRepo repository.BlockRepository) SocialGraphService {
	return &socialGraphService{userRepo: userRepo, followRepo: followRepo, blockRepo: blockRepo}
}

// Follow NOT_FOLLOWING → REQUESTED（对方私密）或 FOLLOWING（对方公开）
func (s *socialGraphService) Follow(ctx context.Context, followerID, followeeID string) (string, error) {
	if followerID == followeeID {
		return "", ErrFollowSelf
	}
	followee, err := s.userRepo.Get(ctx, followeeID)
	if err != nil {
		return "", err
	}
	if followee == nil {
		return "", ErrUserNotFound
	}
	if blocked, err := s.blockRepo.ExistsEither(ctx, followerID, followeeID); err != nil {
		return "", err
	} else if blocked {
		return "", ErrBlocked
	}
	edge, err := s.followRepo.Get(ctx, followerID, followeeID)
	if err != nil {
		return "", err
	}
	if edge != nil {
		return "", ErrAlreadyHasStatus
	}

	status := model.FollowFollowing
	if followee.PrivacyStatus == model.PrivacyPrivate {
		status = model.FollowRequested
	}
	if err := s.followRepo.Upsert(ctx, followerID, followeeID, status); err != nil {
		return "", err
	}
	return status, nil
}

// Unfollow FOLLOWING/REQUESTED → 清除边；DENIED 下无事可撤销，报错
func (s *socialGraphService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	edge, err := s.followRepo.Get(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if edge == nil || edge.Status == model.FollowDenied {
		return ErrNotFollowing
	}
	return s.followRepo.Delete(ctx, followerID, followeeID)
}

// AcceptFollower REQUESTED/DENIED → FOLLOWING；重复接受报错
func (s *socialGraphService) AcceptFollower(ctx context.Context, followeeID, followerID string) error {
	edge, err := s.followRepo.Get(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if edge == nil {
		return ErrNotRequested
	}
	if edge.Status == model.FollowFollowing {
		return ErrAlreadyHasStatus
	}
	return s.followRepo.SetStatus(ctx, followerID, followeeID, model.FollowFollowing)
}

// DenyFollower REQUESTED → DENIED；重复拒绝报错
func (s *socialGraphService) DenyFollower(ctx context.Context, followeeID, followerID string) error {
	edge, err := s.followRepo.Get(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if edge == nil {
		return ErrNotRequested
	}
	if edge.Status != model.FollowRequested {
		return ErrAlreadyHasStatus
	}
	return s.followRepo.SetStatus(ctx, followerID, followeeID, model.FollowDenied)
}

func (s *socialGraphService) Block(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == blockedID {
		return ErrBlockSelf
	}
	blocked, err := s.userRepo.Get(ctx, blockedID)
	if err != nil {
		return err
	}
	if blocked == nil {
		return ErrUserNotFound
	}
	if exists, err := s.blockRepo.Exists(ctx, blockerID, blockedID); err != nil {
		return err
	} else if exists {
		return ErrAlreadyBlocked
	}
	// 反方向已有拉黑时同样拒绝
	if exists, err := s.blockRepo.Exists(ctx, blockedID, blockerID); err != nil {
		return err
	} else if exists {
		return ErrBlocked
	}
	created, err := s.blockRepo.Create(ctx, blockerID, blockedID)
	if err != nil {
		return err
	}
	if !created {
		return ErrAlreadyBlocked
	}
	return nil
}

func (s *socialGraphService) Unblock(ctx context.Context, blockerID, blockedID string) error {
	exists, err := s.blockRepo.Exists(ctx, blockerID, blockedID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotBlocked
	}
	return s.blockRepo.Delete(ctx, blockerID, blockedID)
}

func (s *socialGraphService) SetPrivacy(ctx context.Context, userID, privacy string) error {
	if privacy != model.PrivacyPublic && privacy != model.PrivacyPrivate {
		return ErrBadPrivacy
	}
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := s.userRepo.SetPrivacy(ctx, userID, privacy); err != nil {
		return err
	}
	// 转公开时放行全部待定 / 被拒的入边
	if user.PrivacyStatus == model.PrivacyPrivate && privacy == model.PrivacyPublic {
		return s.followRepo.AcceptAllIncoming(ctx, userID)
	}
	return nil
}

// IsFollowing 拉黑任一方向时一律视为未关注
func (s *socialGraphService) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	if blocked, err := s.blockRepo.ExistsEither(ctx, followerID, followeeID); err != nil {
		return false, err
	} else if blocked {
		return false, nil
	}
	edge, err := s.followRepo.Get(ctx, followerID, followeeID)
	if err != nil {
		return false, err
	}
	return edge != nil && edge.Status == model.FollowFollowing, nil
}

func (s *socialGraphService) IsBlockedEither(ctx context.Context, a, b string) (bool, error) {
	return s.blockRepo.ExistsEither(ctx, a, b)
}

func (s *socialGraphService) ListRequests(ctx context.Context, followeeID string) ([]*model.Follow, error) {
	return s.followRepo.ListIncoming(ctx, followeeID, model.FollowRequested)
}
