package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/feed-engine/internal/model"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.userSvc.Register(ctx, "alice", "alice@example.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, model.PrivacyPublic, u.PrivacyStatus)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret")))

	_, err = env.userSvc.Register(ctx, "alice", "other@example.com", "secret")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestReset_CascadesEverything(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "doomed", model.PrivacyPublic)
	env.seedUser(t, "friend", model.PrivacyPublic)
	env.seedUser(t, "enemy", model.PrivacyPublic)

	now := time.Now()
	env.seedPost(t, "d1", "doomed", now.Add(-time.Minute))
	env.seedPost(t, "f1", "friend", now)

	_, err := env.social.Follow(ctx, "doomed", "friend")
	require.NoError(t, err)
	_, err = env.social.Follow(ctx, "friend", "doomed")
	require.NoError(t, err)
	require.NoError(t, env.social.Block(ctx, "doomed", "enemy"))

	require.NoError(t, env.viewSvc.ReportViews(ctx, "doomed", []string{"f1"}, true))
	require.NoError(t, env.viewSvc.ReportViews(ctx, "friend", []string{"d1"}, true))
	require.NoError(t, env.worker.Drain(ctx))

	_, ok, err := env.store.Score(ctx, model.TrendingKindPost, "d1")
	require.NoError(t, err)
	require.True(t, ok)
	_, ok, err = env.store.Score(ctx, model.TrendingKindUser, "doomed")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, env.userSvc.Reset(ctx, "doomed"))
	require.NoError(t, env.worker.Drain(ctx))

	// 用户消失
	u, err := env.users.Get(ctx, "doomed")
	require.NoError(t, err)
	assert.Nil(t, u)

	// 名下帖子进入 DELETING
	assert.Equal(t, model.PostDeleting, env.postStatus(t, "d1"))

	// 双向浏览记录清除
	exists, err := env.views.Exists(ctx, "doomed", "f1")
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = env.views.Exists(ctx, "friend", "d1")
	require.NoError(t, err)
	assert.False(t, exists)

	// 关注 / 拉黑边双向清除
	edge, err := env.follows.Get(ctx, "friend", "doomed")
	require.NoError(t, err)
	assert.Nil(t, edge)
	either, err := env.blocks.ExistsEither(ctx, "doomed", "enemy")
	require.NoError(t, err)
	assert.False(t, either)

	// 榜单条目（本人 + 名下帖子）清除
	_, ok, err = env.store.Score(ctx, model.TrendingKindPost, "d1")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = env.store.Score(ctx, model.TrendingKindUser, "doomed")
	require.NoError(t, err)
	assert.False(t, ok)

	// friend 的数据不受波及
	assert.Equal(t, model.PostCompleted, env.postStatus(t, "f1"))
	_, ok, err = env.store.Score(ctx, model.TrendingKindUser, "friend")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, env.userSvc.Reset(ctx, "ghost"), ErrUserNotFound)
}

func TestSetAdsDisabled_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	assert.ErrorIs(t, env.userSvc.SetAdsDisabled(context.Background(), "ghost", true), ErrUserNotFound)
}
