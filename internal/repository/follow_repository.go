package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/feed-engine/internal/model"
)

type FollowRepository interface {
	Get(ctx context.Context, followerID, followeeID string) (*model.Follow, error)
	Upsert(ctx context.Context, followerID, followeeID, status string) error
	SetStatus(ctx context.Context, followerID, followeeID, status string) error
	Delete(ctx context.Context, followerID, followeeID string) error
	// ListFolloweeIDs 返回 follower 处于指定状态的关注对象
	ListFolloweeIDs(ctx context.Context, followerID, status string) ([]string, error)
	ListIncoming(ctx context.Context, followeeID, status string) ([]*model.Follow, error)
	// AcceptAllIncoming 把指向 followee 的 REQUESTED/DENIED 边全部转为 FOLLOWING
	AcceptAllIncoming(ctx context.Context, followeeID string) error
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Get(ctx context.Context, followerID, followeeID string) (*model.Follow, error) {
	var f model.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *followRepository) Upsert(ctx context.Context, followerID, followeeID, status string) error {
	f := &model.Follow{ID: uuid.New().String(), FollowerID: followerID, FolloweeID: followeeID, Status: status}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "follower_id"}, {Name: "followee_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(f).Error
}

func (r *followRepository) SetStatus(ctx context.Context, followerID, followeeID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Update("status", status).Error
}

func (r *followRepository) Delete(ctx context.Context, followerID, followeeID string) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{}).Error
}

func (r *followRepository) ListFolloweeIDs(ctx context.Context, followerID, status string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Select("followee_id").
		Where("follower_id = ? AND status = ?", followerID, status).
		Scan(&ids).Error
	return ids, err
}

func (r *followRepository) ListIncoming(ctx context.Context, followeeID, status string) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).
		Where("followee_id = ? AND status = ?", followeeID, status).
		Find(&res).Error
	return res, err
}

func (r *followRepository) AcceptAllIncoming(ctx context.Context, followeeID string) error {
	return r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("followee_id = ? AND status IN ?", followeeID, []string{model.FollowRequested, model.FollowDenied}).
		Update("status", model.FollowFollowing).Error
}
