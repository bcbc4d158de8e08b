package main

import (
    "context"
    "fmt"
    "math"
    "os"
    "sort"
    "strconv"
    "time"

    "github.com/google/uuid"

    "github.com/d60-Lab/groupfeed/config"
    "github.com/d60-Lab/groupfeed/internal/auth"
    "github.com/d60-Lab/groupfeed/internal/cache"
    "github.com/d60-Lab/groupfeed/internal/model"
    "github.com/d60-Lab/groupfeed/internal/notify"
    "github.com/d60-Lab/groupfeed/internal/repository"
    "github.com/d60-Lab/groupfeed/internal/service"
    "github.com/d60-Lab/groupfeed/pkg/database"
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

func avg(vs []time.Duration) time.Duration {
    if len(vs) == 0 { return 0 }
    var sum time.Duration
    for _, v := range vs { sum += v }
    return sum / time.Duration(len(vs))
}

// delayedPush 模拟推送服务往返
type delayedPush struct{ d time.Duration }

func (p delayedPush) Send(ctx context.Context, _ model.PushSubscription, _ []byte) error {
    select {
    case <-time.After(p.d):
        return nil
    case <-ctx.Done():
        return ctx.Err()
    }
}

func main() {
    cfg := must(config.Load())
    db := must(database.InitDB(cfg))
    if err := database.Migrate(db); err != nil { panic(err) }

    // params
    N := 500         // group members
    POSTS := 50      // posts to publish
    PUSH_MS := 10    // simulated push latency
    if s := os.Getenv("N"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { N = v } }
    if s := os.Getenv("POSTS"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { POSTS = v } }
    if s := os.Getenv("PUSH_MS"); s != "" { if v, e := strconv.Atoi(s); e == nil && v >= 0 { PUSH_MS = v } }

    ctx := context.Background()
    users := repository.NewUserRepository(db)
    groups := repository.NewGroupRepository(db)
    access := repository.NewGroupAccessRepository(db)

    // seed one author and N members in a fresh group
    tag := uuid.NewString()[:8]
    g := &model.Group{Name: "feedbench " + tag, Slug: "feedbench-" + tag}
    if err := groups.Create(ctx, g); err != nil { panic(err) }
    author := &model.User{Username: "author_" + tag, Role: model.RoleMember}
    if err := users.Create(ctx, author); err != nil { panic(err) }
    if err := access.Create(ctx, author.ID, g.ID); err != nil { panic(err) }
    for i := 0; i < N; i++ {
        u := &model.User{Username: fmt.Sprintf("m_%s_%d", tag, i), Role: model.RoleMember}
        if err := users.Create(ctx, u); err != nil { panic(err) }
        sub := model.PushSubscription{Endpoint: "https://push.invalid/" + u.ID, Keys: model.PushKeys{P256dh: "k", Auth: "a"}}
        if _, err := users.AddPushSubscription(ctx, u.ID, sub); err != nil { panic(err) }
        if err := access.Create(ctx, u.ID, g.ID); err != nil { panic(err) }
    }

    queue := notify.NewQueue(cfg.Notify.QueueSize)
    stop := queue.Start(cfg.Notify.Workers)
    defer stop(context.Background())

    dispatcher := notify.NewDispatcher(users, access, delayedPush{d: time.Duration(PUSH_MS) * time.Millisecond}, notify.LogMailer{}, notify.Options{})
    resolver := service.NewAccessResolver(groups, access, users, cache.Nop{})
    content := service.NewContentService(resolver, repository.NewPostRepository(db), repository.NewCommentRepository(db),
        repository.NewLikeRepository(db), repository.NewResponseRepository(db),
        service.ContentOptions{DefaultPageSize: cfg.Feed.DefaultPageSize, MaxPageSize: cfg.Feed.MaxPageSize})
    feed := service.NewFeedService(content, resolver, users, groups, dispatcher, queue, service.FeedOptions{})

    who := auth.Identity{ID: author.ID, Username: author.Username, Role: author.Role}

    // publish POSTS
    pubDurations := make([]time.Duration, 0, POSTS)
    for i := 0; i < POSTS; i++ {
        text := fmt.Sprintf("hello %d", i)
        st := time.Now()
        if _, err := feed.CreatePost(ctx, who, service.CreatePostInput{GroupID: &g.ID, Content: &text}); err != nil { panic(err) }
        pubDurations = append(pubDurations, time.Since(st))
    }

    // collect landing metrics: each text post queues a broadcast and a mention scan
    want := 2 * POSTS
    land := make([]time.Duration, 0, want)
    timeout := time.After(2 * time.Minute)
    for len(land) < want {
        select {
        case d := <-queue.Metrics():
            land = append(land, d)
        case <-timeout:
            fmt.Printf("timeout while waiting for fan-out metrics: got=%d want=%d\n", len(land), want)
            goto PRINT
        }
    }

PRINT:
    fmt.Printf("N=%d POSTS=%d WORKERS=%d PUSH_MS=%d\n", N, POSTS, cfg.Notify.Workers, PUSH_MS)
    fmt.Printf("CreatePost latency: avg=%v p95=%v p99=%v\n", avg(pubDurations), pct(pubDurations, 0.95), pct(pubDurations, 0.99))
    fmt.Printf("Notification landing (enqueue->done): samples=%d avg=%v p95=%v p99=%v\n", len(land), avg(land), pct(land, 0.95), pct(land, 0.99))

    // first page read for the author
    st := time.Now()
    page, err := feed.FeedPage(ctx, who, &g.ID, 0, 0)
    if err != nil { panic(err) }
    fmt.Printf("Feed page read (limit=default): %v, posts=%d has_more=%v\n", time.Since(st), len(page.Posts), page.HasMore)
}
