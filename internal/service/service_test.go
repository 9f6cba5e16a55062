package service

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/feed-engine/internal/cache"
	"github.com/d60-Lab/feed-engine/internal/model"
	"github.com/d60-Lab/feed-engine/internal/repository"
)

// testEnv 拉起全部依赖：sqlite 内存库 + miniredis，分数参数固定 2.0 / 0.5
type testEnv struct {
	db  *gorm.DB
	rdb *redis.Client

	users     repository.UserRepository
	follows   repository.FollowRepository
	blocks    repository.BlockRepository
	posts     repository.PostRepository
	views     repository.ViewRepository
	events    repository.TrendingEventRepository
	adCursors repository.AdCursorRepository
	store     repository.TrendingStore
	snapshots *cache.PostSnapshotCache

	social   SocialGraphService
	postSvc  PostService
	viewSvc  ViewService
	trendSvc TrendingService
	feedSvc  FeedService
	userSvc  UserService
	worker   *TrendingWorker
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Follow{}, &model.Block{},
		&model.Post{}, &model.View{}, &model.TrendingEvent{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	env := &testEnv{db: db, rdb: rdb}
	env.users = repository.NewUserRepository(db)
	env.follows = repository.NewFollowRepository(db)
	env.blocks = repository.NewBlockRepository(db)
	env.posts = repository.NewPostRepository(db)
	env.views = repository.NewViewRepository(db)
	env.events = repository.NewTrendingEventRepository(db)
	env.adCursors = repository.NewAdCursorRepository(rdb)
	env.store = repository.NewTrendingStore(rdb, 2.0, 0.5)
	env.snapshots = cache.NewPostSnapshotCache(db, rdb, time.Minute)

	env.social = NewSocialGraphService(env.users, env.follows, env.blocks)
	env.postSvc = NewPostService(db, env.posts, env.events, env.snapshots)
	env.viewSvc = NewViewService(db, env.posts, env.events, env.adCursors)
	env.trendSvc = NewTrendingService(env.store, env.snapshots, env.users, env.follows, env.blocks, env.views)
	injector := NewAdInjector(env.posts, env.adCursors, 3, 1)
	env.feedSvc = NewFeedService(env.users, env.follows, env.blocks, env.posts, injector, 20)
	env.userSvc = NewUserService(db, env.users, env.posts, env.events, env.adCursors)
	env.worker = NewTrendingWorker(env.events, env.store, 1, 128, time.Millisecond)
	return env
}

func (e *testEnv) seedUser(t *testing.T, id, privacy string) *model.User {
	u := &model.User{ID: id, Username: id, PrivacyStatus: privacy}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) seedPost(t *testing.T, id, ownerID string, postedAt time.Time) *model.Post {
	p := &model.Post{
		ID: id, OwnerID: ownerID, PostType: model.PostTypeText,
		Status: model.PostCompleted, OriginalPostID: id, PostedAt: postedAt,
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) seedAd(t *testing.T, id, ownerID string, postedAt time.Time) *model.Post {
	p := &model.Post{
		ID: id, OwnerID: ownerID, PostType: model.PostTypeText,
		Status: model.PostCompleted, OriginalPostID: id, PostedAt: postedAt,
		IsAd: true, AdStatus: model.AdActive,
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) postStatus(t *testing.T, id string) string {
	var p model.Post
	require.NoError(t, e.db.Where("id = ?", id).First(&p).Error)
	return p.Status
}

func (e *testEnv) viewedByCount(t *testing.T, id string) int64 {
	var p model.Post
	require.NoError(t, e.db.Where("id = ?", id).First(&p).Error)
	return p.ViewedByCount
}

func postIDs(items []*model.Post) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.ID
	}
	return out
}
