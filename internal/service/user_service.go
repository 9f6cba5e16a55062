package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/feed-engine/internal/model"
	"github.com/d60-Lab/feed-engine/internal/repository"
	"github.com/d60-Lab/feed-engine/pkg/logger"
)

var ErrUsernameTaken = errors.New("username already taken")

// UserService 用户生命周期；Reset 级联清除帖子、浏览、关系与榜单条目
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	SetAdsDisabled(ctx context.Context, id string, disabled bool) error
	Reset(ctx context.Context, id string) error
}

type userService struct {
	db        *gorm.DB
	userRepo  repository.UserRepository
	postRepo  repository.PostRepository
	eventRepo repository.TrendingEventRepository
	adCursors repository.AdCursorRepository
}

func NewUserService(db *gorm.DB, userRepo repository.UserRepository, postRepo repository.PostRepository, eventRepo repository.TrendingEventRepository, adCursors repository.AdCursorRepository) UserService {
	return &userService{db: db, userRepo: userRepo, postRepo: postRepo, eventRepo: eventRepo, adCursors: adCursors}
}

func (s *userService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		ID:            uuid.New().String(),
		Username:      username,
		Email:         email,
		Password:      string(hash),
		PrivacyStatus: model.PrivacyPublic,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	return s.userRepo.Get(ctx, id)
}

func (s *userService) SetAdsDisabled(ctx context.Context, id string, disabled bool) error {
	u, err := s.userRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	return s.userRepo.SetAdsDisabled(ctx, id, disabled)
}

// Reset 删除用户并级联：帖子置 DELETING、浏览记录、关注 / 拉黑边、
// 榜单条目（本人 + 名下全部帖子）、广告游标
func (s *userService) Reset(ctx context.Context, id string) error {
	u, err := s.userRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}

	postIDs, err := s.postRepo.ListIDsByOwner(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Post{}).Where("owner_id = ?", id).
			Update("status", model.PostDeleting).Error; err != nil {
			return err
		}
		if err := tx.Where("viewer_id = ?", id).Delete(&model.View{}).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&model.View{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("follower_id = ? OR followee_id = ?", id, id).
			Delete(&model.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("blocker_id = ? OR blocked_id = ?", id, id).
			Delete(&model.Block{}).Error; err != nil {
			return err
		}
		for _, postID := range postIDs {
			if err := s.eventRepo.EnqueueTx(tx, model.TrendingKindPost, postID, model.TrendingOpRemove); err != nil {
				return err
			}
		}
		if err := s.eventRepo.EnqueueTx(tx, model.TrendingKindUser, id, model.TrendingOpRemove); err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.User{}).Error
	})
	if err != nil {
		return err
	}

	if cErr := s.adCursors.DeleteViewer(ctx, id); cErr != nil {
		logger.Warn("ad cursor cleanup failed", zap.String("user", id), zap.Error(cErr))
	}
	return nil
}
