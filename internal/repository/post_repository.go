package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/feed-engine/internal/model"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	Get(ctx context.Context, id string) (*model.Post, error)
	// FindOriginalByChecksum 返回同校验和中最早 COMPLETED 的帖子
	FindOriginalByChecksum(ctx context.Context, checksum string) (*model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	SetStatus(ctx context.Context, id, status string) error
	SetAdStatus(ctx context.Context, id, adStatus string) error
	// ListFeed 返回 owners 名下 COMPLETED 且未过期的帖子，时间倒序
	ListFeed(ctx context.Context, ownerIDs []string, now time.Time, limit int) ([]*model.Post, error)
	// ListActiveAds 返回可注入的广告帖（ACTIVE、COMPLETED、未过期、非 excludeOwner 所有）
	ListActiveAds(ctx context.Context, excludeOwnerID string, now time.Time) ([]*model.Post, error)
	ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) Get(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) FindOriginalByChecksum(ctx context.Context, checksum string) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).
		Where("content_checksum = ? AND status = ?", checksum, model.PostCompleted).
		Order("posted_at ASC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) SetStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).Update("status", status).Error
}

func (r *postRepository) SetAdStatus(ctx context.Context, id, adStatus string) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).Update("ad_status", adStatus).Error
}

func (r *postRepository) ListFeed(ctx context.Context, ownerIDs []string, now time.Time, limit int) ([]*model.Post, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	var res []*model.Post
	err := r.db.WithContext(ctx).
		Where("owner_id IN ? AND status = ?", ownerIDs, model.PostCompleted).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("posted_at DESC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *postRepository) ListActiveAds(ctx context.Context, excludeOwnerID string, now time.Time) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).
		Where("is_ad = ? AND ad_status = ? AND status = ?", true, model.AdActive, model.PostCompleted).
		Where("owner_id <> ?", excludeOwnerID).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("posted_at ASC, id ASC").
		Find(&res).Error
	return res, err
}

func (r *postRepository) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Post{}).
		Select("id").Where("owner_id = ?", ownerID).Scan(&ids).Error
	return ids, err
}
