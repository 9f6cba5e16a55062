package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/feed-engine/internal/model"
)

func TestBuildFeed_ReverseChronoFromFollowing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "reader", model.PrivacyPublic)
	env.seedUser(t, "alice", model.PrivacyPublic)
	env.seedUser(t, "bob", model.PrivacyPublic)
	env.seedUser(t, "stranger", model.PrivacyPublic)

	now := time.Now()
	env.seedPost(t, "a1", "alice", now.Add(-4*time.Minute))
	env.seedPost(t, "b1", "bob", now.Add(-3*time.Minute))
	env.seedPost(t, "mine", "reader", now.Add(-2*time.Minute))
	env.seedPost(t, "a2", "alice", now.Add(-1*time.Minute))
	env.seedPost(t, "other", "stranger", now)

	_, err := env.social.Follow(ctx, "reader", "alice")
	require.NoError(t, err)
	_, err = env.social.Follow(ctx, "reader", "bob")
	require.NoError(t, err)

	items, err := env.feedSvc.BuildFeed(ctx, "reader", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a2", "mine", "b1", "a1"}, postIDs(items))
}

func TestBuildFeed_UnfollowAndBlockTakeEffectImmediately(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "reader", model.PrivacyPublic)
	env.seedUser(t, "alice", model.PrivacyPublic)
	env.seedUser(t, "bob", model.PrivacyPublic)

	now := time.Now()
	env.seedPost(t, "a1", "alice", now.Add(-2*time.Minute))
	env.seedPost(t, "b1", "bob", now.Add(-time.Minute))

	_, err := env.social.Follow(ctx, "reader", "alice")
	require.NoError(t, err)
	_, err = env.social.Follow(ctx, "reader", "bob")
	require.NoError(t, err)

	items, err := env.feedSvc.BuildFeed(ctx, "reader", 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// feed 不做快照，取关下一次读取即消失
	require.NoError(t, env.social.Unfollow(ctx, "reader", "alice"))
	items, err = env.feedSvc.BuildFeed(ctx, "reader", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, postIDs(items))

	// 被作者拉黑同样立即生效（关注边还在）
	require.NoError(t, env.social.Block(ctx, "bob", "reader"))
	items, err = env.feedSvc.BuildFeed(ctx, "reader", 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBuildFeed_RequestedNotVisible(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "reader", model.PrivacyPublic)
	env.seedUser(t, "priv", model.PrivacyPrivate)
	env.seedPost(t, "p1", "priv", time.Now())

	_, err := env.social.Follow(ctx, "reader", "priv")
	require.NoError(t, err)

	// REQUESTED 还不是关注者
	items, err := env.feedSvc.BuildFeed(ctx, "reader", 10)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, env.social.AcceptFollower(ctx, "priv", "reader"))
	items, err = env.feedSvc.BuildFeed(ctx, "reader", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, postIDs(items))
}

func TestBuildFeed_ArchivedAndExpiredExcluded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "reader", model.PrivacyPublic)
	env.seedUser(t, "alice", model.PrivacyPublic)

	now := time.Now()
	env.seedPost(t, "keep", "alice", now.Add(-time.Minute))
	env.seedPost(t, "archive-me", "alice", now)
	past := now.Add(-time.Second)
	require.NoError(t, env.db.Create(&model.Post{
		ID: "dead-story", OwnerID: "alice", PostType: model.PostTypeImage,
		Status: model.PostCompleted, OriginalPostID: "dead-story",
		PostedAt: now, ExpiresAt: &past,
	}).Error)

	_, err := env.social.Follow(ctx, "reader", "alice")
	require.NoError(t, err)
	require.NoError(t, env.postSvc.ArchivePost(ctx, "alice", "archive-me"))

	items, err := env.feedSvc.BuildFeed(ctx, "reader", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, postIDs(items))
}

func TestBuildFeed_AdInjectedAtSlotOne(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "reader", model.PrivacyPublic)
	env.seedUser(t, "alice", model.PrivacyPublic)
	env.seedUser(t, "brand", model.PrivacyPublic)

	now := time.Now()
	env.seedPost(t, "p1", "alice", now.Add(-3*time.Minute))
	env.seedPost(t, "p2", "alice", now.Add(-2*time.Minute))
	env.seedPost(t, "p3", "alice", now.Add(-1*time.Minute))
	env.seedAd(t, "ad1", "brand", now.Add(-time.Hour))

	_, err := env.social.Follow(ctx, "reader", "alice")
	require.NoError(t, err)

	items, err := env.feedSvc.BuildFeed(ctx, "reader", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "ad1", "p2", "p1"}, postIDs(items))
}

func TestBuildFeed_NoAdWhenShortOrDisabledOrPresent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "reader", model.PrivacyPublic)
	env.seedUser(t, "alice", model.PrivacyPublic)
	env.seedUser(t, "brand", model.PrivacyPublic)

	now := time.Now()
	env.seedPost(t, "p1", "alice", now.Add(-2*time.Minute))
	env.seedPost(t, "p2", "alice", now.Add(-1*time.Minute))
	env.seedAd(t, "ad1", "brand", now.Add(-time.Hour))

	_, err := env.social.Follow(ctx, "reader", "alice")
	require.NoError(t, err)

	// 少于 3 条不注入
	items, err := env.feedSvc.BuildFeed(ctx, "reader", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, postIDs(items))

	env.seedPost(t, "p3", "alice", now)

	// 关闭广告的用户不注入
	require.NoError(t, env.userSvc.SetAdsDisabled(ctx, "reader", true))
	items, err = env.feedSvc.BuildFeed(ctx, "reader", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p2", "p1"}, postIDs(items))
	require.NoError(t, env.userSvc.SetAdsDisabled(ctx, "reader", false))

	// 关注了广告主：feed 源里已有广告帖则不再注入第二条
	_, err = env.social.Follow(ctx, "reader", "brand")
	require.NoError(t, err)
	items, err = env.feedSvc.BuildFeed(ctx, "reader", 10)
	require.NoError(t, err)
	adCount := 0
	for _, p := range items {
		if p.IsAd {
			adCount++
		}
	}
	assert.Equal(t, 1, adCount)
}

func TestBuildFeed_AdRotationLRU(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "reader", model.PrivacyPublic)
	env.seedUser(t, "alice", model.PrivacyPublic)
	env.seedUser(t, "brand", model.PrivacyPublic)

	now := time.Now()
	env.seedPost(t, "p1", "alice", now.Add(-3*time.Minute))
	env.seedPost(t, "p2", "alice", now.Add(-2*time.Minute))
	env.seedPost(t, "p3", "alice", now.Add(-1*time.Minute))
	env.seedAd(t, "ad1", "brand", now.Add(-2*time.Hour))
	env.seedAd(t, "ad2", "brand", now.Add(-time.Hour))

	_, err := env.social.Follow(ctx, "reader", "alice")
	require.NoError(t, err)

	// 都未浏览过：取发布最早的 ad1
	items, err := env.feedSvc.BuildFeed(ctx, "reader", 10)
	require.NoError(t, err)
	assert.Equal(t, "ad1", items[1].ID)

	// 浏览 ad1 后，未浏览的 ad2 优先
	require.NoError(t, env.viewSvc.ReportViews(ctx, "reader", []string{"ad1"}, true))
	items, err = env.feedSvc.BuildFeed(ctx, "reader", 10)
	require.NoError(t, err)
	assert.Equal(t, "ad2", items[1].ID)

	// 两条都浏览过：取游标最旧的 ad1
	require.NoError(t, env.viewSvc.ReportViews(ctx, "reader", []string{"ad2"}, true))
	items, err = env.feedSvc.BuildFeed(ctx, "reader", 10)
	require.NoError(t, err)
	assert.Equal(t, "ad1", items[1].ID)

	// dedup=false 重看 ad1 推进游标，轮换回 ad2
	require.NoError(t, env.viewSvc.ReportViews(ctx, "reader", []string{"ad1"}, false))
	items, err = env.feedSvc.BuildFeed(ctx, "reader", 10)
	require.NoError(t, err)
	assert.Equal(t, "ad2", items[1].ID)
}

func TestBuildFeed_LimitValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "reader", model.PrivacyPublic)

	_, err := env.feedSvc.BuildFeed(ctx, "reader", -1)
	assert.ErrorIs(t, err, ErrBadLimit)
	_, err = env.feedSvc.BuildFeed(ctx, "reader", 101)
	assert.ErrorIs(t, err, ErrBadLimit)

	items, err := env.feedSvc.BuildFeed(ctx, "reader", 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}
