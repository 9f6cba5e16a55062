package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/feed-engine/internal/model"
)

type BlockRepository interface {
	Create(ctx context.Context, blockerID, blockedID string) (bool, error)
	Delete(ctx context.Context, blockerID, blockedID string) error
	Exists(ctx context.Context, blockerID, blockedID string) (bool, error)
	// ExistsEither 任一方向存在拉黑即为真
	ExistsEither(ctx context.Context, a, b string) (bool, error)
	// ListBlockedEitherIDs 返回与 userID 任一方向互相拉黑的用户
	ListBlockedEitherIDs(ctx context.Context, userID string) ([]string, error)
}

type blockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) BlockRepository { return &blockRepository{db: db} }

func (r *blockRepository) Create(ctx context.Context, blockerID, blockedID string) (bool, error) {
	b := &model.Block{ID: uuid.New().String(), BlockerID: blockerID, BlockedID: blockedID}
	// 幂等：重复拉黑不报错，但通过 RowsAffected 区分
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(b)
	return res.RowsAffected > 0, res.Error
}

func (r *blockRepository) Delete(ctx context.Context, blockerID, blockedID string) error {
	return r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&model.Block{}).Error
}

func (r *blockRepository) Exists(ctx context.Context, blockerID, blockedID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *blockRepository) ExistsEither(ctx context.Context, a, b string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *blockRepository) ListBlockedEitherIDs(ctx context.Context, userID string) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).Raw(`
        SELECT blocked_id FROM blocks WHERE blocker_id = ?
        UNION
        SELECT blocker_id FROM blocks WHERE blocked_id = ?
    `, userID, userID).Scan(&out).Error
	return out, err
}
