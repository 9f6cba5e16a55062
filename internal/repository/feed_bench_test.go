package repository

import (
    "context"
    "fmt"
    "math/rand"
    "testing"
    "time"

    "gorm.io/driver/sqlite"
    "gorm.io/gorm"

    "github.com/d60-Lab/feed-engine/internal/model"
)

func setupFeedBenchDB(b *testing.B) *gorm.DB {
    db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
    if err != nil {
        b.Fatalf("open db: %v", err)
    }
    if err := db.AutoMigrate(&model.User{}, &model.Follow{}, &model.Block{}, &model.Post{}, &model.View{}); err != nil {
        b.Fatalf("migrate: %v", err)
    }
    return db
}

func BenchmarkFollowWrite(b *testing.B) {
    db := setupFeedBenchDB(b)
    followRepo := NewFollowRepository(db)
    ctx := context.Background()

    // 预创建部分用户
    users := make([]model.User, 1000)
    for i := range users { users[i] = model.User{ID: fmt.Sprintf("u%04d", i), Username: fmt.Sprintf("u%04d", i), PrivacyStatus: model.PrivacyPublic} }
    if err := db.Create(&users).Error; err != nil { b.Fatalf("seed users: %v", err) }

    rand.Seed(time.Now().UnixNano())
    b.ResetTimer()
    for i := 0; i < b.N; i++ {
        from := users[rand.Intn(len(users))].ID
        to := users[rand.Intn(len(users))].ID
        if from == to { continue }
        _ = followRepo.Upsert(ctx, from, to, model.FollowFollowing)
    }
}

func BenchmarkListFeedAndViews(b *testing.B) {
    db := setupFeedBenchDB(b)
    followRepo := NewFollowRepository(db)
    postRepo := NewPostRepository(db)
    viewRepo := NewViewRepository(db)
    ctx := context.Background()

    // 构造：u0 关注 N 个作者，每个作者 10 条帖子
    const N = 500
    _ = db.Create(&model.User{ID: "u0", Username: "u0", PrivacyStatus: model.PrivacyPublic}).Error
    owners := make([]string, 0, N+1)
    owners = append(owners, "u0")
    now := time.Now()
    for i := 1; i <= N; i++ {
        uid := fmt.Sprintf("u%v", i)
        _ = db.Create(&model.User{ID: uid, Username: uid, PrivacyStatus: model.PrivacyPublic}).Error
        _ = followRepo.Upsert(ctx, "u0", uid, model.FollowFollowing)
        owners = append(owners, uid)
        for j := 0; j < 10; j++ {
            pid := fmt.Sprintf("p%v-%v", i, j)
            _ = db.Create(&model.Post{ID: pid, OwnerID: uid, Status: model.PostCompleted, PostedAt: now.Add(-time.Duration(i*10+j) * time.Second)}).Error
        }
        _, _ = viewRepo.InsertIfAbsent(ctx, "u0", fmt.Sprintf("p%v-0", i))
    }

    b.ResetTimer()
    b.Run("ListFeed", func(b *testing.B) {
        for i := 0; i < b.N; i++ {
            _, _ = postRepo.ListFeed(ctx, owners, now, 50)
        }
    })

    b.Run("FilterViewed", func(b *testing.B) {
        ids := []string{"p1-0", "p1-1", "p2-0", "p2-1", "p3-0"}
        for i := 0; i < b.N; i++ {
            _, _ = viewRepo.FilterViewed(ctx, "u0", ids)
        }
    })
}
