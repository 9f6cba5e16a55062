package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/feed-engine/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Follow{}, &model.Block{},
		&model.Post{}, &model.View{}, &model.TrendingEvent{},
	))
	return db
}

func TestFollowRepository_UpsertAndAcceptAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "a", "c", model.FollowRequested))
	require.NoError(t, repo.Upsert(ctx, "b", "c", model.FollowDenied))
	require.NoError(t, repo.Upsert(ctx, "d", "c", model.FollowFollowing))

	// 同一对边再次 Upsert 只改状态，不产生第二行
	require.NoError(t, repo.Upsert(ctx, "a", "c", model.FollowDenied))
	edge, err := repo.Get(ctx, "a", "c")
	require.NoError(t, err)
	require.NotNil(t, edge)
	assert.Equal(t, model.FollowDenied, edge.Status)

	var cnt int64
	require.NoError(t, db.Model(&model.Follow{}).Where("follower_id = ? AND followee_id = ?", "a", "c").Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)

	// 放行所有 REQUESTED/DENIED 入边，FOLLOWING 不受影响
	require.NoError(t, repo.AcceptAllIncoming(ctx, "c"))
	for _, follower := range []string{"a", "b", "d"} {
		edge, err := repo.Get(ctx, follower, "c")
		require.NoError(t, err)
		require.NotNil(t, edge)
		assert.Equal(t, model.FollowFollowing, edge.Status)
	}

	ids, err := repo.ListFolloweeIDs(ctx, "a", model.FollowFollowing)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids)
}

func TestFollowRepository_GetMissingReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)

	edge, err := repo.Get(context.Background(), "x", "y")
	require.NoError(t, err)
	assert.Nil(t, edge)
}

func TestBlockRepository_IdempotentCreateAndEitherDirection(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBlockRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, created)

	either, err := repo.ExistsEither(ctx, "b", "a")
	require.NoError(t, err)
	assert.True(t, either)

	_, err = repo.Create(ctx, "c", "a")
	require.NoError(t, err)

	ids, err := repo.ListBlockedEitherIDs(ctx, "a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c"}, ids)
}

func TestViewRepository_InsertIfAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewViewRepository(db)
	ctx := context.Background()

	inserted, err := repo.InsertIfAbsent(ctx, "v1", "p1")
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.InsertIfAbsent(ctx, "v1", "p1")
	require.NoError(t, err)
	assert.False(t, inserted)

	viewed, err := repo.FilterViewed(ctx, "v1", []string{"p1", "p2"})
	require.NoError(t, err)
	assert.True(t, viewed["p1"])
	assert.False(t, viewed["p2"])
}

func TestPostRepository_FindOriginalByChecksum(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	require.NoError(t, db.Create(&model.Post{
		ID: "p-old", OwnerID: "a", PostType: model.PostTypeText,
		Status: model.PostCompleted, ContentChecksum: "sum", PostedAt: base,
	}).Error)
	require.NoError(t, db.Create(&model.Post{
		ID: "p-new", OwnerID: "b", PostType: model.PostTypeText,
		Status: model.PostCompleted, ContentChecksum: "sum", PostedAt: base.Add(time.Minute),
	}).Error)
	// PENDING 不参与去重
	require.NoError(t, db.Create(&model.Post{
		ID: "p-pending", OwnerID: "c", PostType: model.PostTypeImage,
		Status: model.PostPending, ContentChecksum: "sum", PostedAt: base.Add(-time.Minute),
	}).Error)

	orig, err := repo.FindOriginalByChecksum(ctx, "sum")
	require.NoError(t, err)
	require.NotNil(t, orig)
	assert.Equal(t, "p-old", orig.ID)

	orig, err = repo.FindOriginalByChecksum(ctx, "absent")
	require.NoError(t, err)
	assert.Nil(t, orig)
}

func TestPostRepository_ListFeedFiltersAndOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	require.NoError(t, db.Create(&model.Post{ID: "p1", OwnerID: "a", Status: model.PostCompleted, PostedAt: now.Add(-3 * time.Minute)}).Error)
	require.NoError(t, db.Create(&model.Post{ID: "p2", OwnerID: "a", Status: model.PostCompleted, PostedAt: now.Add(-2 * time.Minute)}).Error)
	require.NoError(t, db.Create(&model.Post{ID: "p3", OwnerID: "b", Status: model.PostCompleted, PostedAt: now.Add(-1 * time.Minute)}).Error)
	require.NoError(t, db.Create(&model.Post{ID: "archived", OwnerID: "a", Status: model.PostArchived, PostedAt: now}).Error)
	require.NoError(t, db.Create(&model.Post{ID: "expired", OwnerID: "a", Status: model.PostCompleted, PostedAt: now, ExpiresAt: &past}).Error)
	require.NoError(t, db.Create(&model.Post{ID: "story", OwnerID: "b", Status: model.PostCompleted, PostedAt: now, ExpiresAt: &future}).Error)
	require.NoError(t, db.Create(&model.Post{ID: "stranger", OwnerID: "z", Status: model.PostCompleted, PostedAt: now}).Error)

	items, err := repo.ListFeed(ctx, []string{"a", "b"}, now, 10)
	require.NoError(t, err)
	got := make([]string, len(items))
	for i, p := range items {
		got[i] = p.ID
	}
	assert.Equal(t, []string{"story", "p3", "p2", "p1"}, got)
}

func TestPostRepository_ListActiveAdsOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	now := time.Now()
	base := now.Add(-time.Hour)

	mkAd := func(id, owner, adStatus string, at time.Time) {
		require.NoError(t, db.Create(&model.Post{
			ID: id, OwnerID: owner, Status: model.PostCompleted,
			IsAd: true, AdStatus: adStatus, PostedAt: at,
			OriginalPostID: id,
		}).Error)
	}
	mkAd("ad-b", "adv1", model.AdActive, base.Add(time.Minute))
	mkAd("ad-a", "adv1", model.AdActive, base)
	mkAd("ad-tie", "adv1", model.AdActive, base)
	mkAd("ad-pending", "adv1", model.AdPending, base)
	mkAd("ad-own", "viewer", model.AdActive, base)

	ads, err := repo.ListActiveAds(ctx, "viewer", now)
	require.NoError(t, err)
	got := make([]string, len(ads))
	for i, p := range ads {
		got[i] = p.ID
	}
	// posted_at 升序，同时间按 id 升序
	assert.Equal(t, []string{"ad-a", "ad-tie", "ad-b"}, got)
}

func TestTrendingEventRepository_ClaimAndMarkDone(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTrendingEventRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Enqueue(ctx, model.TrendingKindPost, "p1", model.TrendingOpBump))
	require.NoError(t, repo.Enqueue(ctx, model.TrendingKindUser, "u1", model.TrendingOpBump))

	cnt, err := repo.PendingCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, cnt)

	batch, err := repo.Claim(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	// 认领后不再是 pending，不会被重复消费
	cnt, err = repo.PendingCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, cnt)

	again, err := repo.Claim(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, again)

	ids := []string{batch[0].ID, batch[1].ID}
	require.NoError(t, repo.MarkDone(ctx, ids))

	var done int64
	require.NoError(t, db.Model(&model.TrendingEvent{}).
		Where("status = ?", model.TrendingEventDone).Count(&done).Error)
	assert.EqualValues(t, 2, done)
}
