package main

import (
    "context"
    "fmt"
    "math"
    "os"
    "sort"
    "strconv"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/redis/go-redis/v9"

    "github.com/d60-Lab/feed-engine/config"
    "github.com/d60-Lab/feed-engine/internal/model"
    "github.com/d60-Lab/feed-engine/internal/repository"
    "github.com/d60-Lab/feed-engine/internal/service"
    "github.com/d60-Lab/feed-engine/pkg/database"
)

func must[T any](v T, err error) T { if err != nil { panic(err) }; return v }

func pct(vs []time.Duration, p float64) time.Duration {
    if len(vs) == 0 { return 0 }
    xs := append([]time.Duration(nil), vs...)
    sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
    k := int(math.Ceil(p*float64(len(xs)))) - 1
    if k < 0 { k = 0 }
    if k >= len(xs) { k = len(xs)-1 }
    return xs[k]
}

// feedbench: 构造 FOLLOWS 个被关注者、每人 POSTS 条帖子，测量 feed 读取分位延迟
func main() {
    cfg := must(config.Load())
    db := must(database.InitDB(cfg))

    mr := must(miniredis.Run())
    defer mr.Close()
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

    userRepo := repository.NewUserRepository(db)
    followRepo := repository.NewFollowRepository(db)
    blockRepo := repository.NewBlockRepository(db)
    postRepo := repository.NewPostRepository(db)
    adCursors := repository.NewAdCursorRepository(rdb)
    injector := service.NewAdInjector(postRepo, adCursors, cfg.Feed.AdMinItems, cfg.Feed.AdSlot)
    feedSvc := service.NewFeedService(userRepo, followRepo, blockRepo, postRepo, injector, cfg.Feed.DefaultLimit)

    FOLLOWS := 200
    POSTS := 50
    READS := 2000
    if s := os.Getenv("FOLLOWS"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { FOLLOWS = v } }
    if s := os.Getenv("POSTS"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { POSTS = v } }
    if s := os.Getenv("READS"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { READS = v } }

    ctx := context.Background()
    viewer := &model.User{ID: "viewer", Username: "viewer", PrivacyStatus: model.PrivacyPublic}
    must(0, db.Create(viewer).Error)

    now := time.Now()
    for i := 0; i < FOLLOWS; i++ {
        uid := fmt.Sprintf("author%04d", i)
        must(0, db.Create(&model.User{ID: uid, Username: uid, PrivacyStatus: model.PrivacyPublic}).Error)
        must(0, followRepo.Upsert(ctx, viewer.ID, uid, model.FollowFollowing))
        posts := make([]model.Post, POSTS)
        for j := 0; j < POSTS; j++ {
            pid := fmt.Sprintf("%s-p%04d", uid, j)
            posts[j] = model.Post{
                ID: pid, OwnerID: uid, PostType: model.PostTypeText,
                Status: model.PostCompleted, OriginalPostID: pid,
                PostedAt: now.Add(-time.Duration(i*POSTS+j) * time.Second),
            }
        }
        must(0, db.Create(&posts).Error)
    }

    recs := make([]time.Duration, 0, READS)
    t0 := time.Now()
    for i := 0; i < READS; i++ {
        st := time.Now()
        _ = must(feedSvc.BuildFeed(ctx, viewer.ID, 20))
        recs = append(recs, time.Since(st))
    }
    total := time.Since(t0)

    fmt.Printf("FOLLOWS=%d POSTS=%d READS=%d\n", FOLLOWS, POSTS, READS)
    fmt.Printf("Feed read total: %v, per op: %v, p50: %v, p95: %v, p99: %v\n",
        total, total/time.Duration(READS), pct(recs, 0.50), pct(recs, 0.95), pct(recs, 0.99))
}
