package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/feed-engine/internal/model"
)

type ViewRepository interface {
	// InsertIfAbsent 写入 (viewer, post)，已存在时返回 false（幂等）
	InsertIfAbsent(ctx context.Context, viewerID, postID string) (bool, error)
	Exists(ctx context.Context, viewerID, postID string) (bool, error)
	// FilterViewed 返回 postIDs 中 viewer 已浏览过的子集
	FilterViewed(ctx context.Context, viewerID string, postIDs []string) (map[string]bool, error)
}

type viewRepository struct {
	db *gorm.DB
}

func NewViewRepository(db *gorm.DB) ViewRepository { return &viewRepository{db: db} }

func (r *viewRepository) InsertIfAbsent(ctx context.Context, viewerID, postID string) (bool, error) {
	v := &model.View{ID: uuid.New().String(), ViewerID: viewerID, PostID: postID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(v)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *viewRepository) Exists(ctx context.Context, viewerID, postID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.View{}).
		Where("viewer_id = ? AND post_id = ?", viewerID, postID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *viewRepository) FilterViewed(ctx context.Context, viewerID string, postIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.View{}).
		Select("post_id").
		Where("viewer_id = ? AND post_id IN ?", viewerID, postIDs).
		Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
