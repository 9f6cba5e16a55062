package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/feed-engine/internal/model"
	"github.com/d60-Lab/feed-engine/internal/repository"
	"github.com/d60-Lab/feed-engine/pkg/logger"
)

const maxReportViewIDs = 100

// ViewService 去重的浏览上报。单次调用允许部分生效：
// 不存在 / 非 COMPLETED / 自己的帖子被静默跳过，不报错。
type ViewService interface {
	ReportViews(ctx context.Context, viewerID string, postIDs []string, dedup bool) error
}

type viewService struct {
	db        *gorm.DB
	postRepo  repository.PostRepository
	eventRepo repository.TrendingEventRepository
	adCursors repository.AdCursorRepository
}

func NewViewService(db *gorm.DB, postRepo repository.PostRepository, eventRepo repository.TrendingEventRepository, adCursors repository.AdCursorRepository) ViewService {
	return &viewService{db: db, postRepo: postRepo, eventRepo: eventRepo, adCursors: adCursors}
}

func (s *viewService) ReportViews(ctx context.Context, viewerID string, postIDs []string, dedup bool) error {
	if len(postIDs) == 0 {
		return ErrNoPostIDs
	}
	if len(postIDs) > maxReportViewIDs {
		return ErrTooManyPostIDs
	}

	for _, postID := range postIDs {
		if err := s.reportOne(ctx, viewerID, postID, dedup); err != nil {
			// 单条失败不阻断整批
			logger.Warn("report view failed",
				zap.String("viewer", viewerID), zap.String("post", postID), zap.Error(err))
		}
	}
	return nil
}

func (s *viewService) reportOne(ctx context.Context, viewerID, postID string, dedup bool) error {
	post, err := s.postRepo.Get(ctx, postID)
	if err != nil {
		return err
	}
	// 跳过不合格目标：不存在、非 COMPLETED、自己的帖子
	if post == nil || post.Status != model.PostCompleted || post.OwnerID == viewerID {
		return nil
	}

	// 归因始终落在 original 帖与其作者名下
	attrPostID := post.ID
	attrOwnerID := post.OwnerID
	if !post.IsOriginal() {
		attrPostID = post.OriginalPostID
		orig, err := s.postRepo.Get(ctx, post.OriginalPostID)
		if err != nil {
			return err
		}
		if orig != nil {
			attrOwnerID = orig.OwnerID
		}
	}

	now := time.Now()
	firstView := false

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := insertView(tx, viewerID, post.ID)
		if err != nil {
			return err
		}
		firstView = inserted

		if inserted {
			if err := bumpViewedBy(tx, post.ID); err != nil {
				return err
			}
			// 重复帖的浏览同时记在 original 帖上
			if !post.IsOriginal() {
				origInserted, err := insertView(tx, viewerID, post.OriginalPostID)
				if err != nil {
					return err
				}
				if origInserted {
					if err := bumpViewedBy(tx, post.OriginalPostID); err != nil {
						return err
					}
				}
			}
			// 过期 story 不再产生榜单事件
			if !post.Expired(now) {
				if err := s.eventRepo.EnqueueTx(tx, model.TrendingKindPost, attrPostID, model.TrendingOpBump); err != nil {
					return err
				}
				if err := s.eventRepo.EnqueueTx(tx, model.TrendingKindUser, attrOwnerID, model.TrendingOpBump); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 广告游标记录本次浏览时间；重复浏览（dedup=false）也会覆盖
	if post.IsAd && post.AdStatus == model.AdActive && (firstView || !dedup) {
		if err := s.adCursors.Touch(ctx, viewerID, post.ID, now); err != nil {
			return err
		}
	}
	return nil
}

func insertView(tx *gorm.DB, viewerID, postID string) (bool, error) {
	v := &model.View{ID: uuid.New().String(), ViewerID: viewerID, PostID: postID}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(v)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func bumpViewedBy(tx *gorm.DB, postID string) error {
	return tx.Model(&model.Post{}).Where("id = ?", postID).
		UpdateColumn("viewed_by_count", gorm.Expr("viewed_by_count + 1")).Error
}
