package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/feed-engine/internal/cache"
	"github.com/d60-Lab/feed-engine/internal/model"
	"github.com/d60-Lab/feed-engine/internal/repository"
	"github.com/d60-Lab/feed-engine/pkg/logger"
)

// AddPostInput 建帖参数
type AddPostInput struct {
	OwnerID   string
	PostType  string
	Payload   string
	IsAd      bool
	AdPayment float64
	// Lifetime 非零表示限时 story
	Lifetime time.Duration
}

// PostService 帖子生命周期：PENDING →（媒体校验）→ COMPLETED ↔ ARCHIVED，
// 任意状态 → DELETING（终态）。COMPLETED 时按内容校验和解析 original 帖。
type PostService interface {
	AddPost(ctx context.Context, in AddPostInput) (*model.Post, error)
	// CompletePost 媒体校验完成后调用；checksum 用于内容去重
	CompletePost(ctx context.Context, postID, checksum string, verified bool) (*model.Post, error)
	// FailPost 媒体管线失败回调，仅 PENDING 可置 ERROR
	FailPost(ctx context.Context, postID string) error
	ArchivePost(ctx context.Context, ownerID, postID string) error
	RestorePost(ctx context.Context, ownerID, postID string) error
	DeletePost(ctx context.Context, ownerID, postID string) error
	ApproveAd(ctx context.Context, postID string) error
	GetPost(ctx context.Context, postID string) (*model.Post, error)
}

type postService struct {
	db        *gorm.DB
	postRepo  repository.PostRepository
	eventRepo repository.TrendingEventRepository
	snapshots *cache.PostSnapshotCache
}

func NewPostService(db *gorm.DB, postRepo repository.PostRepository, eventRepo repository.TrendingEventRepository, snapshots *cache.PostSnapshotCache) PostService {
	return &postService{db: db, postRepo: postRepo, eventRepo: eventRepo, snapshots: snapshots}
}

func (s *postService) AddPost(ctx context.Context, in AddPostInput) (*model.Post, error) {
	now := time.Now()
	p := &model.Post{
		ID:        uuid.New().String(),
		OwnerID:   in.OwnerID,
		PostType:  in.PostType,
		Payload:   in.Payload,
		PostedAt:  now,
		IsAd:      in.IsAd,
		AdPayment: in.AdPayment,
	}
	if in.Lifetime > 0 {
		exp := now.Add(in.Lifetime)
		p.ExpiresAt = &exp
	}
	if in.IsAd {
		p.AdStatus = model.AdPending
	}

	// 纯文本与广告帖无媒体管线，直接 COMPLETED 并解析 original
	if in.PostType == model.PostTypeText || in.IsAd {
		sum := sha256.Sum256([]byte(in.Payload))
		p.ContentChecksum = hex.EncodeToString(sum[:])
		p.Status = model.PostCompleted
		if err := s.resolveOriginal(ctx, p); err != nil {
			return nil, err
		}
	} else {
		p.Status = model.PostPending
	}

	if err := s.postRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *postService) CompletePost(ctx context.Context, postID, checksum string, verified bool) (*model.Post, error) {
	p, err := s.postRepo.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPostNotFound
	}
	if p.Status != model.PostPending {
		return nil, ErrBadPostStatus
	}

	p.ContentChecksum = checksum
	p.IsVerified = verified
	p.Status = model.PostCompleted
	if err := s.resolveOriginal(ctx, p); err != nil {
		return nil, err
	}
	if err := s.postRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *postService) FailPost(ctx context.Context, postID string) error {
	p, err := s.postRepo.Get(ctx, postID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrPostNotFound
	}
	if p.Status != model.PostPending {
		return ErrBadPostStatus
	}
	return s.postRepo.SetStatus(ctx, postID, model.PostError)
}

// resolveOriginal 指向同校验和最早 COMPLETED 的帖子；无重复时指向自身。
// 首次 COMPLETED 后不再改写。
func (s *postService) resolveOriginal(ctx context.Context, p *model.Post) error {
	p.OriginalPostID = p.ID
	if p.ContentChecksum == "" {
		return nil
	}
	orig, err := s.postRepo.FindOriginalByChecksum(ctx, p.ContentChecksum)
	if err != nil {
		return err
	}
	if orig != nil && orig.ID != p.ID {
		p.OriginalPostID = orig.OriginalPostID
		if p.OriginalPostID == "" {
			p.OriginalPostID = orig.ID
		}
	}
	return nil
}

// ArchivePost 下榜立即生效（事件随状态变更同事务落库）；恢复时不回填分数
func (s *postService) ArchivePost(ctx context.Context, ownerID, postID string) error {
	p, err := s.ownedPost(ctx, ownerID, postID)
	if err != nil {
		return err
	}
	if p.Status != model.PostCompleted {
		return ErrBadPostStatus
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Post{}).Where("id = ?", postID).
			Update("status", model.PostArchived).Error; err != nil {
			return err
		}
		return s.eventRepo.EnqueueTx(tx, model.TrendingKindPost, postID, model.TrendingOpRemove)
	})
	if err != nil {
		return err
	}
	if cErr := s.snapshots.Invalidate(ctx, postID); cErr != nil {
		logger.Warn("snapshot invalidate failed", zap.String("post", postID), zap.Error(cErr))
	}
	return nil
}

func (s *postService) RestorePost(ctx context.Context, ownerID, postID string) error {
	p, err := s.ownedPost(ctx, ownerID, postID)
	if err != nil {
		return err
	}
	if p.Status != model.PostArchived {
		return ErrBadPostStatus
	}
	return s.postRepo.SetStatus(ctx, postID, model.PostCompleted)
}

// DeletePost 终态；浏览记录与榜单条目级联清除
func (s *postService) DeletePost(ctx context.Context, ownerID, postID string) error {
	p, err := s.ownedPost(ctx, ownerID, postID)
	if err != nil {
		return err
	}
	if p.Status == model.PostDeleting {
		return ErrBadPostStatus
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Post{}).Where("id = ?", postID).
			Update("status", model.PostDeleting).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&model.View{}).Error; err != nil {
			return err
		}
		return s.eventRepo.EnqueueTx(tx, model.TrendingKindPost, postID, model.TrendingOpRemove)
	})
	if err != nil {
		return err
	}
	if cErr := s.snapshots.Invalidate(ctx, postID); cErr != nil {
		logger.Warn("snapshot invalidate failed", zap.String("post", postID), zap.Error(cErr))
	}
	return nil
}

// ApproveAd 广告审批方（外部协作者）置 ACTIVE 后才进入注入候选
func (s *postService) ApproveAd(ctx context.Context, postID string) error {
	p, err := s.postRepo.Get(ctx, postID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrPostNotFound
	}
	if !p.IsAd {
		return ErrNotAnAd
	}
	return s.postRepo.SetAdStatus(ctx, postID, model.AdActive)
}

// GetPost 读路径上 DELETING 视同不存在
func (s *postService) GetPost(ctx context.Context, postID string) (*model.Post, error) {
	p, err := s.postRepo.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.Status == model.PostDeleting {
		return nil, nil
	}
	return p, nil
}

func (s *postService) ownedPost(ctx context.Context, ownerID, postID string) (*model.Post, error) {
	p, err := s.postRepo.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPostNotFound
	}
	if p.OwnerID != ownerID {
		return nil, ErrNotPostOwner
	}
	return p, nil
}
