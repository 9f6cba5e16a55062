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
    "github.com/d60-Lab/feed-engine/internal/cache"
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

// trendbench: VIEWERS 个用户对 POSTS 条帖子上报浏览，
// 测量事件收敛延迟与榜单读取分位延迟
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
    viewRepo := repository.NewViewRepository(db)
    eventRepo := repository.NewTrendingEventRepository(db)
    adCursors := repository.NewAdCursorRepository(rdb)
    store := repository.NewTrendingStore(rdb, cfg.Trending.EntryBoost, cfg.Trending.ViewIncrement)
    snapshots := cache.NewPostSnapshotCache(db, rdb, cfg.Trending.SnapshotTTL)
    viewSvc := service.NewViewService(db, postRepo, eventRepo, adCursors)
    trendSvc := service.NewTrendingService(store, snapshots, userRepo, followRepo, blockRepo, viewRepo)

    VIEWERS := 500
    POSTS := 200
    READS := 1000
    if s := os.Getenv("VIEWERS"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { VIEWERS = v } }
    if s := os.Getenv("POSTS"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { POSTS = v } }
    if s := os.Getenv("READS"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { READS = v } }

    ctx := context.Background()
    author := &model.User{ID: "author", Username: "author", PrivacyStatus: model.PrivacyPublic}
    must(0, db.Create(author).Error)

    now := time.Now()
    postIDs := make([]string, POSTS)
    for j := 0; j < POSTS; j++ {
        pid := fmt.Sprintf("p%05d", j)
        postIDs[j] = pid
        must(0, db.Create(&model.Post{
            ID: pid, OwnerID: author.ID, PostType: model.PostTypeText,
            Status: model.PostCompleted, OriginalPostID: pid,
            PostedAt: now.Add(-time.Duration(j) * time.Second),
        }).Error)
    }

    worker := service.NewTrendingWorker(eventRepo, store,
        cfg.Trending.Workers, cfg.Trending.ClaimLimit, cfg.Trending.PollInterval)
    stop := worker.Start()

    // 收敛延迟采样
    convRecs := make([]time.Duration, 0, VIEWERS*8)
    doneConv := make(chan struct{})
    go func() {
        for {
            select {
            case d := <-worker.Metrics():
                convRecs = append(convRecs, d)
            case <-doneConv:
                return
            }
        }
    }()

    t0 := time.Now()
    for i := 0; i < VIEWERS; i++ {
        vid := fmt.Sprintf("viewer%05d", i)
        must(0, db.Create(&model.User{ID: vid, Username: vid, PrivacyStatus: model.PrivacyPublic}).Error)
        batch := postIDs[:8]
        _ = viewSvc.ReportViews(ctx, vid, batch, true)
    }
    writeDur := time.Since(t0)

    must(0, worker.Drain(ctx))
    _ = stop(context.Background())
    close(doneConv)

    readRecs := make([]time.Duration, 0, READS)
    t1 := time.Now()
    for i := 0; i < READS; i++ {
        st := time.Now()
        _ = must(trendSvc.TrendingPosts(ctx, "viewer00000", service.TrendingPostsQuery{Limit: 20}))
        readRecs = append(readRecs, time.Since(st))
    }
    readDur := time.Since(t1)

    fmt.Printf("VIEWERS=%d POSTS=%d READS=%d\n", VIEWERS, POSTS, READS)
    fmt.Printf("Report views total: %v, per viewer: %v\n", writeDur, writeDur/time.Duration(VIEWERS))
    if len(convRecs) > 0 {
        fmt.Printf("Convergence: samples=%d, p50=%v, p95=%v, p99=%v\n",
            len(convRecs), pct(convRecs, 0.50), pct(convRecs, 0.95), pct(convRecs, 0.99))
    }
    fmt.Printf("Trending read total: %v, per op: %v, p50: %v, p95: %v, p99: %v\n",
        readDur, readDur/time.Duration(READS), pct(readRecs, 0.50), pct(readRecs, 0.95), pct(readRecs, 0.99))
}
